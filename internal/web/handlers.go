package web

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/config"
	"github.com/hpungsan/shotcap/internal/errors"
	"github.com/hpungsan/shotcap/internal/ops"
	"github.com/hpungsan/shotcap/internal/store"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	st        store.Store
	ex        ops.TextExtractor
	cfg       *config.Config
	logger    *zap.Logger
	renderer  *Renderer
	uploadDir string
}

// HandleList handles GET /captures, optionally filtered by ?kind=.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	result, err := ops.List(r.Context(), h.st, ops.ListInput{Kind: kind})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, http.StatusOK, "list", ListPageData{
		PageData: h.renderer.page("Captures", result.Store),
		Items:    result.Items,
		Kind:     kind,
		Kinds:    capture.Kinds,
	})
}

// HandleDetail handles GET /captures/{n}, where n is the 1-based list position.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("capture number must be a positive integer"))
		return
	}

	result, err := ops.List(r.Context(), h.st, ops.ListInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if n > len(result.Items) {
		h.renderer.renderError(w, r, &errors.CaptureError{
			Code:    errors.ErrInvalidRequest,
			Status:  http.StatusNotFound,
			Message: fmt.Sprintf("capture %d not found (store has %d)", n, len(result.Items)),
		})
		return
	}
	item := result.Items[n-1]

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, item)
		return
	}

	h.renderer.renderPage(w, http.StatusOK, "detail", DetailPageData{
		PageData:     h.renderer.page(item.Title, result.Store),
		Index:        n,
		Item:         item,
		RenderedBody: renderMarkdown(item.Body),
	})
}

// HandleIngest handles POST /captures: a multipart form with an optional
// "screenshot" file, a "source" name used when no file is sent, and "text".
func (h *Handlers) HandleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && err != http.ErrNotMultipart {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	screenshot := strings.TrimSpace(r.FormValue("source"))
	uploadDir := ""
	file, header, err := r.FormFile("screenshot")
	switch {
	case err == nil:
		defer file.Close()
		screenshot, err = h.saveUpload(file, header.Filename)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		uploadDir = filepath.Dir(screenshot)
	case err != http.ErrMissingFile && err != http.ErrNotMultipart:
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid screenshot upload"))
		return
	}

	result, err := ops.Ingest(r.Context(), h.st, h.ex, h.cfg, ops.IngestInput{
		Screenshot:   screenshot,
		FallbackText: r.FormValue("text"),
	})
	if err != nil {
		// No capture points at the upload, so drop it
		if uploadDir != "" {
			if rmErr := os.RemoveAll(uploadDir); rmErr != nil {
				h.logger.Warn("failed to remove upload", zap.String("dir", uploadDir), zap.Error(rmErr))
			}
		}
		h.renderer.renderError(w, r, err)
		return
	}

	h.logger.Info("capture ingested",
		zap.String("source", result.Item.Source),
		zap.String("kind", string(result.Item.Kind)),
	)

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, result)
		return
	}
	http.Redirect(w, r, "/captures", http.StatusSeeOther)
}

// HandleClear handles POST /captures/clear. The form must carry confirm=true.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result, err := ops.Clear(r.Context(), h.st)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/captures", http.StatusSeeOther)
}

// HandleDownload handles GET /captures/download: the items as a JSON attachment
// in the store file format.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(r.Context(), h.st, ops.ListInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data, err := ops.EncodeItems(result.Items, ops.FormatJSON, time.Now())
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="captures.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// saveUpload stores an uploaded screenshot as <upload dir>/<ulid>/<base name> and
// returns its path. Keeping the client's base name lets the file-name fallback work.
func (h *Handlers) saveUpload(src io.Reader, filename string) (string, error) {
	root := h.uploadDir
	if root == "" {
		root = filepath.Join(filepath.Dir(h.st.Location()), "uploads")
	}
	dir := filepath.Join(root, ulid.Make().String())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.NewInternal(fmt.Errorf("create upload dir: %w", err))
	}

	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(filename, "\\", "/")))
	if base == "/" || base == "." {
		base = "screenshot"
	}
	path := filepath.Join(dir, base)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("create upload: %w", err))
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.RemoveAll(dir)
		return "", errors.NewInvalidRequest("screenshot upload failed or is too large")
	}
	if err := dst.Close(); err != nil {
		return "", errors.NewInternal(err)
	}
	return path, nil
}
