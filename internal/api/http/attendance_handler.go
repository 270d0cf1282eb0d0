package http

import (
	"net/http"

	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/service"
)

type AttendanceHandler struct {
	attendanceService service.AttendanceService
}

func NewAttendanceHandler(as service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in service.CheckInInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.UserAgent = r.UserAgent()

	att, err := h.attendanceService.CheckIn(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, att)
}

func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	att, err := h.attendanceService.CheckOut(r.Context(), actor, eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

type attendanceReport struct {
	Records []domain.Attendance       `json:"records"`
	Summary *domain.AttendanceSummary `json:"summary"`
}

func (h *AttendanceHandler) EventReport(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	records, summary, err := h.attendanceService.ListByEvent(r.Context(), actor, eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attendanceReport{Records: records, Summary: summary})
}

func (h *AttendanceHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.attendanceService.MyAttendance(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
