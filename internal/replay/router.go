package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"codearch/internal/analysis"
	"codearch/internal/exhibit"
)

type Router struct {
	source Source
	logger *slog.Logger
}

// NewRouter serves the analysis wire contract from source: POST /api/analyze,
// GET /api/health and POST /api/cleanup.
func NewRouter(source Source, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{source: source, logger: logger}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(r.logRequests)

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", r.handleHealth)
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/cleanup", r.handleCleanup)
	})
	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var se *StatusError
		if errors.As(err, &se) {
			writeJSON(w, se.Code, map[string]string{"error": se.Message})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("Analysis failed: %v", err)})
	}
}

// POST /api/analyze
// Body: {"repo_path": "..."} or {"repo_url": "..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		RepoPath string `json:"repo_path"`
		RepoURL  string `json:"repo_url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &StatusError{Code: http.StatusBadRequest, Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	if body.RepoPath == "" && body.RepoURL == "" {
		return &StatusError{Code: http.StatusBadRequest, Message: "Either repo_path or repo_url is required"}
	}

	target := analysis.Target{Path: body.RepoPath, IsLocal: true}
	if body.RepoURL != "" {
		target = analysis.Target{Path: body.RepoURL}
	}

	result, err := r.source.Lookup(req.Context(), target)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, withMetadata(result, target.Path))
	return nil
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analysis.HealthStatus{
		Status:  "healthy",
		Message: "Code Archaeology Explorer replay server is running",
	})
}

func (r *Router) handleCleanup(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Temporary repositories cleaned up"})
}

func (r *Router) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)

		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, req)

		r.logger.Info("replay_request",
			"request_id", reqID,
			"method", req.Method,
			"path", req.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start).String(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// withMetadata fills in the metadata block the live service attaches.
func withMetadata(result *analysis.Result, repoPath string) *analysis.Result {
	out := *result
	if out.Artifacts == nil {
		out.Artifacts = make(map[exhibit.Key][]analysis.Item)
	}
	if out.Stories == nil {
		out.Stories = make(map[string]string)
	}
	if out.Metadata == nil {
		total := 0
		for _, items := range out.Artifacts {
			total += len(items)
		}
		out.Metadata = &analysis.Metadata{RepoPath: repoPath, TotalArtifacts: total}
	}
	return &out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs the router on listen until ctx is done.
func Serve(ctx context.Context, logger *slog.Logger, listen string, source Source) error {
	if logger == nil {
		logger = slog.Default()
	}
	listen = strings.TrimSpace(listen)
	if listen == "" {
		return errors.New("empty replay listen address")
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", listen, err)
	}

	srv := &http.Server{
		Handler:           NewRouter(source, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()

	logger.Info("replay_server_start", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
