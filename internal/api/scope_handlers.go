package api

import (
	"io"
	"net/http"

	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// Scope photos beyond this size are rejected before reading the body.
const maxScopeImageBytes = 10 << 20

// IdentifyScope accepts a multipart scope photo and returns the
// recognized model with its turret settings
func (h *Handler) IdentifyScope(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxScopeImageBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxScopeImageBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	if len(imageData) == 0 {
		WriteError(w, http.StatusBadRequest, "empty image")
		return
	}

	info, err := h.scopeService.Identify(r.Context(), imageData, header.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error("Scope identification failed", logger.Error(err))
		WriteError(w, http.StatusBadGateway, "scope identification failed")
		return
	}

	WriteJSON(w, http.StatusOK, info)
}

// ListScopes returns the built-in scope catalog
func (h *Handler) ListScopes(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.scopeService.CatalogEntries())
}
