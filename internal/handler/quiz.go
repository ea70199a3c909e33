package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/model"
)

func (h *Handler) handleQuizResults(w http.ResponseWriter, r *http.Request) {
	var req model.QuizResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrInvalidJSON"))
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrEmailRequired"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrEmailInvalid"))
		return
	}

	d, err := h.notifier.SendQuizResults(r.Context(), req)
	if err != nil {
		slog.Error("quiz results email failed", "delivery", d.ID, "error", err)
		writeError(w, http.StatusInternalServerError, i18n.T(r.Context(), "ErrEmailFailed"))
		return
	}

	slog.Info("quiz results sent", "delivery", d.ID, "email_id", d.ProviderID)
	writeJSON(w, http.StatusOK, model.QuizResultResponse{
		Success: true,
		Message: i18n.T(r.Context(), "EmailSent"),
		EmailID: d.ProviderID,
	})
}
