package request

import (
	"net/http"
	"strings"
)

// Header names containing any of these substrings (lowercased) carry
// credentials and are masked before persisting to history.
var sensitiveMarkers = []string{"authorization", "x-api-key", "api-key", "token", "bearer"}

// MaskHeaders returns a copy of the headers with credential values redacted,
// for the request history log. The live outgoing request always carries the
// original values.
func MaskHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		masked := make([]string, len(values))
		for i, v := range values {
			if sensitiveHeader(name) {
				masked[i] = maskValue(v)
			} else {
				masked[i] = v
			}
		}
		out[name] = masked
	}
	return out
}

func sensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// maskValue keeps the first and last four characters of the secret with the
// middle replaced by "****"; short secrets are redacted entirely. A leading
// Bearer/Basic scheme stays readable so the history shows how the request
// was authenticated.
func maskValue(v string) string {
	scheme := ""
	secret := v
	if i := strings.IndexByte(v, ' '); i > 0 {
		switch strings.ToLower(v[:i]) {
		case "bearer", "basic":
			scheme, secret = v[:i+1], v[i+1:]
		}
	}
	if len(secret) > 8 {
		return scheme + secret[:4] + "****" + secret[len(secret)-4:]
	}
	return scheme + "****"
}
