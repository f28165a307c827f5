package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/peisong-zhang/Human-AI-comparison/experiment"
	"github.com/peisong-zhang/Human-AI-comparison/middleware"
)

type ImagesHandler struct {
	loader *experiment.Loader
}

func NewImagesHandler(loader *experiment.Loader) *ImagesHandler {
	return &ImagesHandler{loader: loader}
}

// ServeImage handles GET /images/subsets/{subset_id}/{mode_id}/{path...}
// Serves one file from the resolved image directory. Requests that escape
// the directory are rejected before the filesystem is touched.
func (h *ImagesHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	subsetID := r.PathValue("subset_id")
	modeID := r.PathValue("mode_id")
	relPath := r.PathValue("path")
	if subsetID == "" || modeID == "" || relPath == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "subset, mode and path are required")
		return
	}

	expCfg, err := h.loader.Load()
	if err != nil {
		slog.Error("failed to load experiment config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Experiment config unavailable")
		return
	}

	dir, err := expCfg.ImageDir(subsetID, modeID, middleware.RequestLanguage(r), h.loader.ProjectRoot())
	if err != nil {
		if errors.Is(err, experiment.ErrNoImageDir) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Unknown mode for subset")
		} else {
			middleware.ErrorResponse(w, http.StatusNotFound, "Unknown subset")
		}
		return
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		slog.Error("failed to resolve image dir", "error", err, "dir", dir)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to resolve image directory")
		return
	}
	full := filepath.Join(absDir, filepath.FromSlash(relPath))
	if full != absDir && !strings.HasPrefix(full, absDir+string(filepath.Separator)) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		middleware.ErrorResponse(w, http.StatusNotFound, "Image not found")
		return
	}

	http.ServeFile(w, r, full)
}
