package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// checkBearer validates the pre-shared sweep secret. It runs before any
// store access; a mismatch leaves no partial state behind.
func checkBearer(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return token == secret
}

func (s *Server) handleOverdueSweep(w http.ResponseWriter, r *http.Request) {
	if !checkBearer(r, s.cfg.OverdueSecret) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sent, err := s.overdueSvc.Sweep(r.Context())
	if err != nil {
		s.log.Error("overdue sweep failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "overdue sweep failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"sent":    sent,
	})
}

func (s *Server) handleReminderSweep(w http.ResponseWriter, r *http.Request) {
	if !checkBearer(r, s.cfg.ReminderSecret) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sent, err := s.reminderSvc.Sweep(r.Context())
	if err != nil {
		s.log.Error("reminder sweep failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "reminder sweep failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"sent":    sent,
		"message": fmt.Sprintf("reminders sent at %s", time.Now().UTC().Format(time.RFC3339)),
	})
}
