package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/edumanage/edumanage-core/internal/domain/attendance"
	"github.com/edumanage/edumanage-core/internal/domain/settings"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/export"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "EduManage API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":     "/health",
			"settings":   "/api/v1/settings",
			"attendance": "/api/v1/attendance/percentage",
			"export":     "/api/v1/attendance/export",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": status.Message,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetSettings handles GET /api/v1/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Settings.Get(r.Context()))
}

// handlePutSettings handles PUT /api/v1/settings. The body is the full
// settings object; a successful save is broadcast to in-process listeners.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var v settings.Institution
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Settings payload is too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	saved, err := s.deps.Settings.Put(r.Context(), v)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// PercentageResponse is the body of GET /api/v1/attendance/percentage.
// Percentage is null when there are no records.
type PercentageResponse struct {
	Group      string   `json:"group"`
	Student    string   `json:"student"`
	Percentage *float64 `json:"percentage"`
	HasData    bool     `json:"hasData"`
}

// handleAttendancePercentage handles GET /api/v1/attendance/percentage?group=&student=
func (s *Server) handleAttendancePercentage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	group := strings.TrimSpace(q.Get("group"))
	student := strings.TrimSpace(q.Get("student"))
	if group == "" || student == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "group and student are required")
		return
	}

	resp := PercentageResponse{Group: group, Student: student}
	if pct, ok := s.deps.Attendance.Percentage(r.Context(), shared.GroupRef(group), shared.StudentRef(student)); ok {
		resp.Percentage = &pct
		resp.HasData = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAttendanceExport handles GET /api/v1/attendance/export?group=&format=csv|xlsx
func (s *Server) handleAttendanceExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	group := shared.GroupRef(strings.TrimSpace(q.Get("group")))
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "csv"
	}

	records := s.deps.Attendance.All(r.Context())
	if group != "" {
		filtered := records[:0:0]
		for _, rec := range records {
			if rec.Group.EqualFold(group) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	lang := s.deps.Settings.Get(r.Context()).Language

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+exportName(group)+`.csv"`)
		if err := export.WriteCSV(w, export.AttendanceRows(records, lang), lang, 0); err != nil {
			s.logger.ErrorContext(r.Context(), "csv export failed", "error", err)
		}
	case "xlsx":
		s.writeWorkbook(w, r, records, lang, group)
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "format must be csv or xlsx")
	}
}

func (s *Server) writeWorkbook(w http.ResponseWriter, r *http.Request, records []attendance.Record, lang string, group shared.GroupRef) {
	f, err := export.AttendanceWorkbook(records, lang)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "xlsx export failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "export_failed", "Could not build workbook")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportName(group)+`.xlsx"`)
	if err := export.WriteXLSX(w, f); err != nil {
		s.logger.ErrorContext(r.Context(), "xlsx export failed", "error", err)
	}
}

func exportName(group shared.GroupRef) string {
	if group == "" {
		return "presences"
	}
	return "presences_" + strings.ToLower(strings.ReplaceAll(group.String(), " ", "_"))
}

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// SignRequest is the body of POST /api/v1/documents/{id}/sign.
type SignRequest struct {
	Signed bool   `json:"signed"`
	Signer string `json:"signer,omitempty"`
}

// handleSignDocument handles POST /api/v1/documents/{id}/sign
func (s *Server) handleSignDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req SignRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	rec, err := s.deps.Documents.Sign(r.Context(), id, req.Signed, req.Signer)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// the PDF itself is fetched separately
	rec.DataURL = ""
	writeJSON(w, http.StatusOK, rec)
}
