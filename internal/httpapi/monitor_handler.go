package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fallvision-alarm/internal/cache"
	"fallvision-alarm/internal/models"
	"fallvision-alarm/internal/service"

	"go.uber.org/zap"
)

// MonitorHandler exposes the monitoring engine over JSON.
type MonitorHandler struct {
	service *service.MonitorService
	logger  *zap.Logger
}

func NewMonitorHandler(svc *service.MonitorService, logger *zap.Logger) *MonitorHandler {
	return &MonitorHandler{
		service: svc,
		logger:  logger,
	}
}

// Check runs a full monitoring evaluation.
func (h *MonitorHandler) Check(w http.ResponseWriter, req *http.Request) {
	var body service.CheckRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	result, err := h.service.Check(req.Context(), body)
	if err != nil {
		h.logger.Warn("Monitoring check rejected", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

type sosRequest struct {
	PatientID   string              `json:"patient_id"`
	GuardianIDs []string            `json:"guardian_ids"`
	Location    *models.SOSLocation `json:"location,omitempty"`
	Vitals      map[string]float64  `json:"vitals,omitempty"`
}

// SendSOS triggers an emergency SOS alert.
func (h *MonitorHandler) SendSOS(w http.ResponseWriter, req *http.Request) {
	var body sosRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	receipt, err := h.service.SendSOS(req.Context(), body.PatientID, body.GuardianIDs, body.Location, body.Vitals)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(receipt))
}

type acknowledgeRequest struct {
	NotificationID string `json:"notification_id"`
	AcknowledgedBy string `json:"acknowledged_by"`
}

// Acknowledge marks an alert acknowledged.
func (h *MonitorHandler) Acknowledge(w http.ResponseWriter, req *http.Request) {
	var body acknowledgeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if body.NotificationID == "" || body.AcknowledgedBy == "" {
		writeJSON(w, http.StatusBadRequest, Fail("notification_id and acknowledged_by are required"))
		return
	}

	if !h.service.Acknowledge(body.NotificationID, body.AcknowledgedBy) {
		writeJSON(w, http.StatusNotFound, Fail("alert not found"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"acknowledged": true}))
}

// Unacknowledged lists pending threshold alerts for a patient.
func (h *MonitorHandler) Unacknowledged(w http.ResponseWriter, req *http.Request) {
	patientID := req.URL.Query().Get("patient")
	if patientID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("patient is required"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.service.Unacknowledged(patientID)))
}

// Summary returns the trailing-window alert summary for a patient.
func (h *MonitorHandler) Summary(w http.ResponseWriter, req *http.Request) {
	patientID := req.URL.Query().Get("patient")
	if patientID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("patient is required"))
		return
	}

	hours := 24
	if v := req.URL.Query().Get("hours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, Fail("hours must be a positive integer"))
			return
		}
		hours = parsed
	}
	writeJSON(w, http.StatusOK, Ok(h.service.Summary(patientID, hours)))
}

type dailySummaryRequest struct {
	PatientID   string   `json:"patient_id"`
	GuardianIDs []string `json:"guardian_ids"`
}

// SendDailySummary sends the daily report to guardians.
func (h *MonitorHandler) SendDailySummary(w http.ResponseWriter, req *http.Request) {
	var body dailySummaryRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	receipt, err := h.service.SendDailySummary(req.Context(), body.PatientID, body.GuardianIDs)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(receipt))
}

// Status returns the cached latest monitoring result for a patient.
func (h *MonitorHandler) Status(w http.ResponseWriter, req *http.Request) {
	patientID := req.URL.Query().Get("patient")
	if patientID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("patient is required"))
		return
	}

	result, err := h.service.LatestStatus(req.Context(), patientID)
	if err != nil {
		if errors.Is(err, cache.ErrNoStatus) {
			writeJSON(w, http.StatusNotFound, Fail("no recent status for patient"))
			return
		}
		h.logger.Error("Failed to read status cache", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to read status"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}
