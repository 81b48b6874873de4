package e2e

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/zebapy/openapi-fetcher/internal/cli"
)

// minimal OpenAPI v3 spec with a tagged, parameterized endpoint
const sampleSpec = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: E2E Sample\n" +
	"  version: '1.0.0'\n" +
	"servers:\n" +
	"  - url: https://api.example.com\n" +
	"paths:\n" +
	"  /items/{id}:\n" +
	"    get:\n" +
	"      summary: Fetch an item\n" +
	"      tags: [items]\n" +
	"      parameters:\n" +
	"        - name: id\n" +
	"          in: path\n" +
	"          required: true\n" +
	"          schema:\n" +
	"            type: string\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"  /items:\n" +
	"    post:\n" +
	"      summary: Create an item\n" +
	"      requestBody:\n" +
	"        required: true\n" +
	"        content:\n" +
	"          application/json:\n" +
	"            schema:\n" +
	"              type: object\n" +
	"              properties:\n" +
	"                name:\n" +
	"                  type: string\n" +
	"                  example: widget\n" +
	"      responses:\n" +
	"        '201':\n" +
	"          description: created\n"

func writeTempSpec(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "spec.yaml")
	if err := os.WriteFile(p, []byte(sampleSpec), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return p
}

func runCLI(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := runCLIErr(dataDir, args...)
	if err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
	return out
}

func runCLIErr(dataDir string, args ...string) (string, error) {
	root := cli.NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append(args, "--data-dir", dataDir))
	err := root.Execute()
	return buf.String(), err
}

func TestE2E_SpecsAddListRemove(t *testing.T) {
	t.Parallel()
	specPath := writeTempSpec(t)
	dataDir := t.TempDir()

	out := runCLI(t, dataDir, "specs", "add", specPath, "--name", "sample")
	if !strings.Contains(out, "added sample") {
		t.Fatalf("add output: %q", out)
	}

	out = runCLI(t, dataDir, "specs", "list")
	if !strings.Contains(out, "sample") || !strings.Contains(out, "E2E Sample") {
		t.Fatalf("list output: %q", out)
	}

	runCLI(t, dataDir, "specs", "remove", "sample")
	out = runCLI(t, dataDir, "specs", "list")
	if !strings.Contains(out, "no specs registered") {
		t.Fatalf("list after remove: %q", out)
	}
}

func TestE2E_SpecsAdd_FailureStoresNothing(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("not: a spec\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := runCLIErr(dataDir, "specs", "add", bad, "--name", "broken"); err == nil {
		t.Fatalf("expected add to fail")
	}
	out := runCLI(t, dataDir, "specs", "list")
	if !strings.Contains(out, "no specs registered") {
		t.Fatalf("failed add must not register: %q", out)
	}
}

func TestE2E_EndpointsAndShow(t *testing.T) {
	t.Parallel()
	specPath := writeTempSpec(t)
	dataDir := t.TempDir()
	runCLI(t, dataDir, "specs", "add", specPath, "--name", "sample")

	out := runCLI(t, dataDir, "endpoints", "sample")
	if !strings.Contains(out, "GET") || !strings.Contains(out, "/items/{id}") {
		t.Fatalf("endpoints output: %q", out)
	}
	if !strings.Contains(out, "items") || !strings.Contains(out, "Untagged") {
		t.Fatalf("expected tag groups in output: %q", out)
	}

	out = runCLI(t, dataDir, "show", "sample", "POST", "/items")
	if !strings.Contains(out, "name") || !strings.Contains(out, "string") {
		t.Fatalf("show output: %q", out)
	}
}

func TestE2E_CurlGeneration(t *testing.T) {
	t.Parallel()
	specPath := writeTempSpec(t)
	dataDir := t.TempDir()
	runCLI(t, dataDir, "specs", "add", specPath, "--name", "sample")

	out := runCLI(t, dataDir, "curl", "sample", "GET", "/items/{id}", "-p", "id=42", "--compact")
	if strings.TrimSpace(out) != `curl "https://api.example.com/items/42"` {
		t.Fatalf("compact curl: %q", out)
	}

	out = runCLI(t, dataDir, "curl", "sample", "POST", "/items", "--example-body", "--token", "tok")
	if !strings.Contains(out, `-H "Authorization: Bearer tok"`) {
		t.Fatalf("missing auth header: %q", out)
	}
	if !strings.Contains(out, `"name": "widget"`) {
		t.Fatalf("missing example body: %q", out)
	}
	if !strings.Contains(out, "\\\n  ") {
		t.Fatalf("expected multi-line form: %q", out)
	}
}

func TestE2E_CallAndHistory(t *testing.T) {
	t.Parallel()
	specPath := writeTempSpec(t)
	dataDir := t.TempDir()
	runCLI(t, dataDir, "specs", "add", specPath, "--name", "sample")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items/7" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"7"}`))
	}))
	defer srv.Close()

	out := runCLI(t, dataDir, "call", "sample", "GET", "/items/{id}",
		"-p", "id=7", "--base-url", srv.URL, "--token", "secrettoken99")
	if !strings.Contains(out, "HTTP 200") {
		t.Fatalf("call output: %q", out)
	}
	if !strings.Contains(out, `"id": "7"`) {
		t.Fatalf("expected pretty-printed body: %q", out)
	}

	// History records the call with the credential masked.
	out = runCLI(t, dataDir, "history")
	if !strings.Contains(out, "GET") || !strings.Contains(out, "/items/7") || !strings.Contains(out, "200") {
		t.Fatalf("history output: %q", out)
	}
	raw, err := os.ReadFile(filepath.Join(dataDir, "history.json"))
	if err != nil {
		t.Fatalf("read history file: %v", err)
	}
	if strings.Contains(string(raw), "secrettoken99") {
		t.Fatalf("history must not contain the raw credential: %s", raw)
	}
	if !strings.Contains(string(raw), "Bearer secr****en99") {
		t.Fatalf("expected masked credential in history: %s", raw)
	}

	runCLI(t, dataDir, "history", "clear")
	out = runCLI(t, dataDir, "history")
	if !strings.Contains(out, "no requests recorded") {
		t.Fatalf("history after clear: %q", out)
	}
}

func TestE2E_CallRefusesUnresolvedParams(t *testing.T) {
	t.Parallel()
	specPath := writeTempSpec(t)
	dataDir := t.TempDir()
	runCLI(t, dataDir, "specs", "add", specPath, "--name", "sample")

	_, err := runCLIErr(dataDir, "call", "sample", "GET", "/items/{id}")
	if err == nil {
		t.Fatalf("expected error for missing path parameter")
	}
	if !strings.Contains(err.Error(), "id") {
		t.Fatalf("error should name the missing parameter: %v", err)
	}
}

func TestE2E_TokensLifecycle(t *testing.T) {
	t.Parallel()
	specPath := writeTempSpec(t)
	dataDir := t.TempDir()
	runCLI(t, dataDir, "specs", "add", specPath, "--name", "sample")

	runCLI(t, dataDir, "tokens", "set", "prod", "--value", "tok123456", "--auth-type", "bearer")

	out := runCLI(t, dataDir, "tokens", "list")
	if !strings.Contains(out, "prod") {
		t.Fatalf("tokens list: %q", out)
	}
	if strings.Contains(out, "tok123456") {
		t.Fatalf("tokens list must not print values: %q", out)
	}

	out = runCLI(t, dataDir, "curl", "sample", "GET", "/items/{id}", "-p", "id=1", "--token-id", "prod", "--compact")
	if !strings.Contains(out, "Bearer tok123456") {
		t.Fatalf("stored token not applied: %q", out)
	}

	runCLI(t, dataDir, "tokens", "remove", "prod")
	if _, err := runCLIErr(dataDir, "curl", "sample", "GET", "/items/{id}", "-p", "id=1", "--token-id", "prod"); err == nil {
		t.Fatalf("expected error for removed token")
	}
}
