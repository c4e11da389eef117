package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"todo-planner/internal/model"
	"todo-planner/internal/service"
)

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Due         string `json:"due"`
	RemindAt    *int64 `json:"remindAt,omitempty"`
	GcalID      string `json:"gcalId,omitempty"`
}

type taskResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Due          string     `json:"due"`
	CreatedMs    int64      `json:"createdMs"`
	Done         bool       `json:"done"`
	ReminderSent bool       `json:"reminderSent"`
	Notified     bool       `json:"notified"`
	RemindAt     *int64     `json:"remindAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	GcalID       string     `json:"gcalId,omitempty"`
}

func toTaskResponse(t model.Task) taskResponse {
	return taskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Category:     t.Category,
		Due:          t.Due,
		CreatedMs:    t.CreatedMs,
		Done:         t.Done,
		ReminderSent: t.ReminderSent,
		Notified:     t.Notified,
		RemindAt:     t.RemindAt,
		CompletedAt:  t.CompletedAt,
		GcalID:       t.GcalID,
	}
}

// userFromPath resolves the {uid} route param to a stored user.
func (s *Server) userFromPath(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	uid, err := strconv.ParseUint(chi.URLParam(r, "uid"), 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return nil, false
	}
	user, err := s.userRepo.FindByID(r.Context(), uint(uid))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "load user failed")
		return nil, false
	}
	return user, true
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	tasks, total, err := s.taskSvc.ListTasks(r.Context(), user, service.TaskFilter{
		Search:   q.Get("search"),
		Filter:   q.Get("filter"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list tasks failed")
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	respondJSON(w, http.StatusOK, map[string]any{"tasks": out, "total": total})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.taskSvc.CreateTask(r.Context(), user, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Due:         req.Due,
		RemindAt:    req.RemindAt,
		GcalID:      req.GcalID,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, toTaskResponse(*task))
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.taskSvc.EditTask(r.Context(), user, chi.URLParam(r, "id"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Due:         req.Due,
		RemindAt:    req.RemindAt,
		GcalID:      req.GcalID,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toTaskResponse(*task))
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	task, err := s.taskSvc.ToggleDone(r.Context(), user, chi.URLParam(r, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "toggle task failed")
		return
	}
	respondJSON(w, http.StatusOK, toTaskResponse(*task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	if err := s.taskSvc.DeleteTask(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "delete task failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	stats, err := s.statsSvc.ForUser(r.Context(), user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "compute stats failed")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
