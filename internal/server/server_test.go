package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/deploygraph/pkg/errors"
	"github.com/matzehuels/deploygraph/pkg/graph"
	"github.com/matzehuels/deploygraph/pkg/observability"
	"github.com/matzehuels/deploygraph/pkg/workspace"
)

type fixture struct {
	srv  *httptest.Server
	dir  string
	main string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	main := filepath.Join(dir, "main.tf")
	src := `
resource "aws_network_interface" "nic" {}

resource "aws_instance" "vm" {
  network_interface_id = aws_network_interface.nic.id
}
`
	if err := os.WriteFile(main, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := log.NewWithOptions(io.Discard, log.Options{})
	reg := prometheus.NewRegistry()
	NewMetrics(reg).Install()
	t.Cleanup(observability.Reset)

	ws := workspace.New(workspace.Options{Logger: logger})
	srv := httptest.NewServer(New(ws, Options{Logger: logger, Gatherer: reg}).Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, dir: dir, main: main}
}

func (f *fixture) post(t *testing.T, route, body string, header ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+route, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func docBody(uri string) string {
	b, _ := json.Marshal(map[string]any{"textDocument": map[string]string{"uri": uri}})
	return string(b)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestDeploymentGraphLifecycle(t *testing.T) {
	f := newFixture(t)
	body := docBody(f.main)

	resp := f.post(t, "/textDocument/deploymentGraph", body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(readAll(t, resp)) != "null" {
		t.Fatalf("graph before open: %d", resp.StatusCode)
	}

	resp = f.post(t, "/textDocument/didOpen", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("didOpen status = %d: %s", resp.StatusCode, readAll(t, resp))
	}
	var opened openResult
	if err := json.NewDecoder(resp.Body).Decode(&opened); err != nil {
		t.Fatal(err)
	}
	if opened.Documents != 1 || opened.Errors != 0 || opened.ID == "" {
		t.Errorf("didOpen result = %+v", opened)
	}

	resp = f.post(t, "/textDocument/deploymentGraph", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deploymentGraph status = %d", resp.StatusCode)
	}
	etag := resp.Header.Get("ETag")
	g, err := graph.ReadJSON(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	want := graph.Edge{SourceID: "aws_instance.vm", TargetID: "aws_network_interface.nic"}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 || g.Edges[0] != want {
		t.Errorf("graph = %+v", g)
	}
	if fp, _ := graph.Fingerprint(g); etag != `"`+fp+`"` {
		t.Errorf("ETag = %s, want fingerprint %s", etag, fp)
	}

	resp = f.post(t, "/textDocument/deploymentGraph", body, "If-None-Match", etag)
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional request status = %d, want 304", resp.StatusCode)
	}

	resp = f.post(t, "/textDocument/didClose", body)
	var closed closeResult
	if err := json.NewDecoder(resp.Body).Decode(&closed); err != nil || !closed.Closed {
		t.Errorf("didClose = %+v, %v", closed, err)
	}

	resp = f.post(t, "/textDocument/deploymentGraph", body)
	if got := strings.TrimSpace(readAll(t, resp)); got != "null" {
		t.Errorf("graph after close = %s", got)
	}
}

func TestErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		route  string
		body   string
		status int
		code   string
	}{
		{"MalformedBody", "/textDocument/didOpen", "{", http.StatusBadRequest, "INVALID_INPUT"},
		{"MissingURI", "/textDocument/deploymentGraph", `{}`, http.StatusBadRequest, "INVALID_URI"},
		{"BadScheme", "/textDocument/didOpen", docBody("https://example.com/main.tf"), http.StatusBadRequest, "INVALID_URI"},
		{"MissingFile", "/textDocument/didOpen", docBody(filepath.Join(f.dir, "absent.tf")), http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.post(t, tt.route, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var e errorBody
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatal(err)
			}
			if string(e.Code) != tt.code || e.Message == "" {
				t.Errorf("error = %+v, want code %s", e, tt.code)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	if body := readAll(t, resp); !strings.Contains(body, `"version":"dev"`) {
		t.Errorf("healthz body = %s", body)
	}

	f.post(t, "/textDocument/didOpen", docBody(f.main))
	f.post(t, "/textDocument/deploymentGraph", docBody(f.main))

	resp, err = http.Get(f.srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	text := readAll(t, resp)
	for _, want := range []string{
		`deploygraph_builds_total{result="ok"} 1`,
		`deploygraph_batches_total 1`,
		`deploygraph_compiles_total{result="ok"} 1`,
		`deploygraph_http_requests_total{code="200",method="POST",route="/textDocument/deploymentGraph"} 1`,
		`deploygraph_http_requests_total{code="200",method="GET",route="/healthz"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"INVALID_FORMAT", http.StatusBadRequest},
		{"NOT_FOUND", http.StatusNotFound},
		{"UNSUPPORTED", http.StatusNotImplemented},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(errors.Code(tt.code)); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
