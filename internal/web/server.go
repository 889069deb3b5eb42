// Package web serves a small local UI over the capture store.
package web

import (
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/shotcap/internal/config"
	"github.com/hpungsan/shotcap/internal/errors"
	"github.com/hpungsan/shotcap/internal/ops"
	"github.com/hpungsan/shotcap/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// maxUploadBytes bounds a POST /captures body.
const maxUploadBytes = 20 << 20

// Deps are the collaborators the web UI needs.
type Deps struct {
	Store     store.Store
	Extractor ops.TextExtractor // may be nil
	Config    *config.Config
	Logger    *zap.Logger
	Version   string

	// UploadDir receives screenshots posted through the form.
	// Default: an "uploads" directory next to the store.
	UploadDir string
}

// NewHandler builds the routed, header-wrapped handler.
func NewHandler(d Deps) (http.Handler, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	renderer, err := NewRenderer(templateSub, d.Version, d.Logger)
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		st:        d.Store,
		ex:        d.Extractor,
		cfg:       d.Config,
		logger:    d.Logger,
		renderer:  renderer,
		uploadDir: d.UploadDir,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/captures", http.StatusFound)
	})
	mux.HandleFunc("GET /captures", h.HandleList)
	mux.HandleFunc("POST /captures", h.HandleIngest)
	mux.HandleFunc("GET /captures/download", h.HandleDownload)
	mux.HandleFunc("POST /captures/clear", h.HandleClear)
	mux.HandleFunc("GET /captures/{n}", h.HandleDetail)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	// State-changing routes must not be reachable from other sites' forms
	csrf := http.NewCrossOriginProtection()
	csrf.SetDenyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.Logger.Warn("cross-origin request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("origin", r.Header.Get("Origin")),
		)
		renderer.renderError(w, r, &errors.CaptureError{
			Code:    errors.ErrInvalidRequest,
			Status:  http.StatusForbidden,
			Message: "cross-origin request rejected",
		})
	}))

	return securityHeaders(csrf.Handler(mux)), nil
}

// NewServer creates the HTTP server for the web UI.
func NewServer(d Deps, bind string, port int) (*http.Server, error) {
	handler, err := NewHandler(d)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("web UI running", zap.String("url", "http://"+srv.Addr))
	if strings.HasPrefix(srv.Addr, "0.0.0.0:") || strings.HasPrefix(srv.Addr, "[::]:") || strings.HasPrefix(srv.Addr, ":") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down web UI")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
