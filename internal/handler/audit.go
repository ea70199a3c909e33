package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/report"
)

// handleReport renders the printable audit report. Any failure, malformed
// payloads included, yields a generic 500 and no partial document.
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	body, err := h.buildReport(w, r)
	if err != nil {
		slog.Error("report generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, i18n.T(r.Context(), "ErrReportFailed"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("write report", "error", err)
	}
}

func (h *Handler) buildReport(w http.ResponseWriter, r *http.Request) (body []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	var req model.ReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, fmt.Errorf("decode report request: %w", err)
	}
	res := report.FromRequest(h.engine, req)
	slog.Info("rendering report",
		"plan", res.Plan,
		"global_score", res.GlobalScore,
		"recomputed", h.engine.Bank().Knows(req.Answers),
		"has_profile", req.Profile != nil,
	)
	return report.Render(r.Context(), res, report.OptionsFromRequest(req))
}
