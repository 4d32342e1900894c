package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vgogokhia/StrelokAI/internal/profiles"
	"github.com/vgogokhia/StrelokAI/internal/storage/sqlite"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// ListRifleProfiles returns all rifle profiles of the caller
func (h *Handler) ListRifleProfiles(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	records, err := h.profileService.ListRifles(username)
	if err != nil {
		h.logger.Error("Failed to list rifle profiles", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	if records == nil {
		records = []*sqlite.RifleProfileRecord{}
	}
	WriteJSON(w, http.StatusOK, records)
}

// SaveRifleProfile creates or updates a rifle profile by name
func (h *Handler) SaveRifleProfile(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())

	var record sqlite.RifleProfileRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.profileService.SaveRifle(username, &record); err != nil {
		if errors.Is(err, profiles.ErrInvalidProfile) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to save rifle profile", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	WriteJSON(w, http.StatusCreated, record)
}

// GetRifleProfile returns one rifle profile by name
func (h *Handler) GetRifleProfile(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	name := chi.URLParam(r, "name")

	record, err := h.profileService.GetRifle(username, name)
	if err != nil {
		if errors.Is(err, sqlite.ErrProfileNotFound) {
			WriteError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("Failed to get rifle profile", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

// DeleteRifleProfile removes a rifle profile by name
func (h *Handler) DeleteRifleProfile(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	name := chi.URLParam(r, "name")

	if err := h.profileService.DeleteRifle(username, name); err != nil {
		if errors.Is(err, sqlite.ErrProfileNotFound) {
			WriteError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("Failed to delete rifle profile", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListCartridgeProfiles returns all cartridge profiles of the caller
func (h *Handler) ListCartridgeProfiles(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	records, err := h.profileService.ListCartridges(username)
	if err != nil {
		h.logger.Error("Failed to list cartridge profiles", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	if records == nil {
		records = []*sqlite.CartridgeProfileRecord{}
	}
	WriteJSON(w, http.StatusOK, records)
}

// SaveCartridgeProfile creates or updates a cartridge profile by name
func (h *Handler) SaveCartridgeProfile(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())

	var record sqlite.CartridgeProfileRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.profileService.SaveCartridge(username, &record); err != nil {
		if errors.Is(err, profiles.ErrInvalidProfile) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to save cartridge profile", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	WriteJSON(w, http.StatusCreated, record)
}

// GetCartridgeProfile returns one cartridge profile by name
func (h *Handler) GetCartridgeProfile(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	name := chi.URLParam(r, "name")

	record, err := h.profileService.GetCartridge(username, name)
	if err != nil {
		if errors.Is(err, sqlite.ErrProfileNotFound) {
			WriteError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("Failed to get cartridge profile", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

// DeleteCartridgeProfile removes a cartridge profile by name
func (h *Handler) DeleteCartridgeProfile(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	name := chi.URLParam(r, "name")

	if err := h.profileService.DeleteCartridge(username, name); err != nil {
		if errors.Is(err, sqlite.ErrProfileNotFound) {
			WriteError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("Failed to delete cartridge profile", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
