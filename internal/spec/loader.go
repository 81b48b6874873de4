package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	invyaml "github.com/invopop/yaml"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	FetchFailed     ErrorCode = "FetchFailed"
	ParseError      ErrorCode = "ParseError"
	SpecInvalid     ErrorCode = "SpecInvalid"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs controls whether file:// refs are allowed for external
	// references. Default false, but automatically allowed when the root
	// input is a local file to enable typical multi-file specs.
	AllowFileRefs bool
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout:   10 * time.Second,
		MaxRetries:    3,
		BackoffBase:   200 * time.Millisecond,
		AllowFileRefs: false,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option    { return func(s *Settings) { s.AllowFileRefs = allow } }

// Load reads, validates, dereferences, and returns a Document. Swagger v2.0
// input is converted to v3 via kin-openapi openapi2conv before building.
//
// input may be a filesystem path or an http/https URL. file:// URLs are
// blocked by default (use WithAllowFileRefs(true) when loading from local
// files and you want to permit file-based external refs).
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	// Classify input as URL or file path.
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked by default", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}

		// Fetch head bytes to detect version reliably.
		raw, fetchErr := fetchWithRetry(ctx, input, settings)
		if fetchErr != nil {
			return nil, &SpecError{Code: FetchFailed, Message: fmt.Sprintf("fetch %s: %v", input, fetchErr), Location: input, Cause: fetchErr}
		}

		version, derr := inspectShape(raw)
		if derr != nil {
			return nil, locate(derr, input)
		}

		switch version {
		case 3:
			// Use the kin loader directly for proper base URL support on
			// external refs.
			loader := newLoader(settings, false /*rootIsFile*/)
			doc, err := loader.LoadFromURI(u)
			if err != nil {
				return nil, mapValidateOrParseErr(err, input)
			}
			return finalize(ctx, doc, input)
		case 2:
			return loadV2(ctx, raw, input)
		default:
			return nil, &SpecError{Code: SpecInvalid, Message: "spec: unknown or unsupported OpenAPI/Swagger version", Location: input}
		}
	}

	// Treat as local filesystem path.
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}

	raw, rerr := os.ReadFile(abs)
	if rerr != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, rerr), Location: abs, Cause: rerr}
	}

	version, derr := inspectShape(raw)
	if derr != nil {
		return nil, locate(derr, abs)
	}

	switch version {
	case 3:
		loader := newLoader(settings, true /*rootIsFile*/)
		doc, err := loader.LoadFromFile(abs)
		if err != nil {
			return nil, mapValidateOrParseErr(err, abs)
		}
		return finalize(ctx, doc, abs)
	case 2:
		return loadV2(ctx, raw, abs)
	default:
		return nil, &SpecError{Code: SpecInvalid, Message: "spec: unknown or unsupported OpenAPI/Swagger version", Location: abs}
	}
}

// LoadFromData parses a document from raw bytes, e.g. pasted text. Both YAML
// and JSON are accepted. External refs are not resolvable from pasted text
// and fail the load.
func LoadFromData(ctx context.Context, data []byte, opts ...Option) (*Document, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	version, derr := inspectShape(data)
	if derr != nil {
		return nil, derr
	}

	switch version {
	case 3:
		loader := newLoader(settings, false)
		doc, err := loader.LoadFromData(data)
		if err != nil {
			return nil, mapValidateOrParseErr(err, "")
		}
		return finalize(ctx, doc, "")
	case 2:
		return loadV2(ctx, data, "")
	default:
		return nil, &SpecError{Code: SpecInvalid, Message: "spec: unknown or unsupported OpenAPI/Swagger version"}
	}
}

func loadV2(ctx context.Context, raw []byte, location string) (*Document, error) {
	// Preprocess incompatible v2 constructs to improve conversion success.
	if fixed, changed, _ := preprocessV2ForCompatibility(raw); changed {
		raw = fixed
	}
	v3doc, err := convertV2ToV3(raw)
	if err != nil {
		return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
	}
	return finalize(ctx, v3doc, location)
}

// finalize validates the kin document and builds the immutable model. Any
// surviving $ref would break the model's inlining invariant, so validation
// failures are not tolerated here.
func finalize(ctx context.Context, doc *openapi3.T, location string) (*Document, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, mapValidateOrParseErr(err, location)
	}
	model := Build(doc)
	if model.Paths == nil {
		return nil, &SpecError{Code: SpecInvalid, Message: "spec: document has no paths", Location: location}
	}
	return model, nil
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	// Allow file refs only when configured or when loading from a local file root.
	allowFile := settings.AllowFileRefs || rootIsFile
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(path)
		case "http", "https":
			req, err := http.NewRequest("GET", uri.String(), nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

// inspectShape checks the minimal document shape on raw bytes: a version
// marker and a paths object must both be present. Returns 3 for OpenAPI v3
// and 2 for Swagger v2.
func inspectShape(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), Cause: err}
	}
	version := 0
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			version = 3
		}
	}
	if version == 0 {
		if v, ok := root["swagger"]; ok {
			if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
				version = 2
			}
		}
	}
	if version == 0 {
		return 0, &SpecError{Code: SpecInvalid, Message: "spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')"}
	}
	if _, ok := root["paths"]; !ok {
		return 0, &SpecError{Code: SpecInvalid, Message: "spec: document has no paths"}
	}
	return version, nil
}

// locate fills the Location field on SpecError values produced by inspectShape.
func locate(err error, location string) error {
	var se *SpecError
	if errors.As(err, &se) && se.Location == "" {
		se.Location = location
	}
	return err
}

// Fetch retrieves the raw bytes of a spec URL using the loader's retry
// policy. Callers that cache spec bodies use this to fill the cache and
// parse via LoadFromData.
func Fetch(ctx context.Context, rawURL string, opts ...Option) ([]byte, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	raw, err := fetchWithRetry(ctx, rawURL, settings)
	if err != nil {
		return nil, &SpecError{Code: FetchFailed, Message: fmt.Sprintf("fetch %s: %v", rawURL, err), Location: rawURL, Cause: err}
	}
	return raw, nil
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	// kin-openapi's ref types implement only UnmarshalJSON, so YAML must be
	// converted to JSON before decoding into openapi2.T.
	jsonData, err := invyaml.YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(jsonData, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json, application/x-yaml, text/yaml")
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return io.ReadAll(resp.Body)
		}
		if err != nil {
			lastErr = err
		} else {
			defer resp.Body.Close()
			if resp.StatusCode >= 500 || resp.StatusCode == 429 {
				lastErr = fmt.Errorf("transient http error %d", resp.StatusCode)
			} else {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}
		}
		// Backoff before next attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

func mapValidateOrParseErr(err error, location string) error {
	// Try to extract JSON Pointer where available.
	pointer := extractJSONPointer(err)
	code := SpecInvalid
	// Heuristics: some loader errors are parse errors.
	if strings.Contains(strings.ToLower(err.Error()), "parse") || strings.Contains(strings.ToLower(err.Error()), "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Unwrap MultiError and take the first for brevity.
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	// Fallback: parse from the error message if a pointer literal appears.
	msg := err.Error()
	if m := jsonPtrRe.FindString(msg); m != "" {
		return m
	}
	return ""
}
