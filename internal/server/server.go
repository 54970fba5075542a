// Package server exposes a workspace over HTTP.
//
// Routes:
//
//	POST /textDocument/didOpen          compile a document and keep it open
//	POST /textDocument/didClose         forget a document
//	POST /textDocument/deploymentGraph  build the graph of an open document
//	GET  /healthz                       liveness and build information
//	GET  /metrics                       Prometheus metrics
//
// Document requests carry {"textDocument": {"uri": "..."}}. A graph request
// for a document that is not open answers 200 with a JSON null; clients
// retry after opening it. Errors are {"code": "...", "message": "..."}.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/deploygraph/pkg/buildinfo"
	"github.com/matzehuels/deploygraph/pkg/errors"
	"github.com/matzehuels/deploygraph/pkg/graph"
	"github.com/matzehuels/deploygraph/pkg/observability"
	"github.com/matzehuels/deploygraph/pkg/workspace"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// Options configures a Server.
type Options struct {
	// Logger defaults to log.Default().
	Logger *log.Logger
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server serves deployment graphs of the documents open in a workspace.
type Server struct {
	ws     *workspace.Manager
	logger *log.Logger
	router chi.Router
}

// New returns a Server backed by ws.
func New(ws *workspace.Manager, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{ws: ws, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.Route("/textDocument", func(r chi.Router) {
		r.Post("/didOpen", s.handleDidOpen)
		r.Post("/didClose", s.handleDidClose)
		r.Post("/deploymentGraph", s.handleDeploymentGraph)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler of s.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "build", buildinfo.Get())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// textDocumentParams is the body of every document request.
type textDocumentParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
}

type openResult struct {
	URI       string `json:"uri"`
	ID        string `json:"id"`
	Documents int    `json:"documents"`
	Errors    int    `json:"errors"`
}

type closeResult struct {
	Closed bool `json:"closed"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleDidOpen(w http.ResponseWriter, r *http.Request) {
	uri, err := decodeURI(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	comp, err := s.ws.Open(r.Context(), uri)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, openResult{
		URI:       uri,
		ID:        comp.ID.String(),
		Documents: len(comp.Files()),
		Errors:    comp.ErrorCount(),
	})
}

func (s *Server) handleDidClose(w http.ResponseWriter, r *http.Request) {
	uri, err := decodeURI(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closeResult{Closed: s.ws.Close(uri)})
}

func (s *Server) handleDeploymentGraph(w http.ResponseWriter, r *http.Request) {
	uri, err := decodeURI(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := s.ws.DeploymentGraph(r.Context(), uri)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if g == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	fp, err := graph.Fingerprint(g)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "fingerprint graph"))
		return
	}
	etag := `"` + fp + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := graph.WriteJSON(g, w); err != nil {
		s.logger.Error("write graph", "uri", uri, "err", err)
	}
}

func decodeURI(r *http.Request) (string, error) {
	var params textDocumentParams
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(&params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body")
	}
	uri := params.TextDocument.URI
	if err := errors.ValidateDocumentURI(uri); err != nil {
		return "", err
	}
	return uri, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidURI, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// observe reports every response to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d.Round(time.Microsecond))
	})
}
