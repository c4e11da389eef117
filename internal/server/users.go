package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"todo-planner/internal/model"
	"todo-planner/internal/remind"
)

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := s.userRepo.Upsert(r.Context(), strings.TrimSpace(req.Email), req.FirstName, req.LastName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "register user failed")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// handleSaveTimezone refreshes the user's preference record; the client
// calls it on every session start.
func (s *Server) handleSaveTimezone(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		TimeZone string `json:"timeZone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// An unknown zone would silently fall back to UTC at sweep time, and
	// "Local" would resolve to whatever zone the server runs in; reject
	// both here, while the user can still see the error.
	if req.TimeZone == "Local" || remind.Zone(req.TimeZone).String() != req.TimeZone {
		respondError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	if err := s.metaRepo.SaveTimezone(r.Context(), user.ID, req.TimeZone); err != nil {
		respondError(w, http.StatusInternalServerError, "save timezone failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleSavePushToken is the web branch of the client scheduler: it
// stores the browser's push token for the reminder sweep to target.
func (s *Server) handleSavePushToken(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := s.metaRepo.SavePushToken(r.Context(), user.ID, req.Token); err != nil {
		respondError(w, http.StatusInternalServerError, "save push token failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	categories, err := s.categorySvc.List(r.Context(), user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list categories failed")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := s.categorySvc.Create(r.Context(), user, req.Name, req.Color)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := s.categorySvc.Delete(r.Context(), user, uint(id)); err != nil {
		respondError(w, http.StatusInternalServerError, "delete category failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
