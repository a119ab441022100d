package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"points-service/internal/auditlog"
	"points-service/internal/domain"
	"points-service/internal/ingest"
)

const (
	queryNum      = "num"
	queryLimit    = "limit"
	queryLevel    = "level"
	queryEndpoint = "endpoint"
	queryStart    = "start"
	queryEnd      = "end"

	uploadFieldName    = "file"
	maxUploadBytes     = 10 << 20
	timestampOutLayout = time.RFC3339Nano
)

// Service describes the application behaviour the REST API depends on.
type Service interface {
	List(ctx context.Context) ([]domain.Point, error)
	Create(ctx context.Context, input domain.PointInput) (domain.Point, error)
	CreateBatch(ctx context.Context, inputs []domain.PointInput) (int, error)
	GetByID(ctx context.Context, homeID int64) (domain.Point, error)
	GetByNum(ctx context.Context, homeNum int64) (domain.Point, error)
	Update(ctx context.Context, homeID int64, patch domain.PointPatch) (domain.Point, error)
	DeleteAll(ctx context.Context) (int64, error)
	FindParadox(ctx context.Context) (domain.Paradox, error)
	QueryLogs(ctx context.Context, filter auditlog.Filter) ([]auditlog.Entry, error)
}

// handler contains the HTTP handlers and shared dependencies for the REST API.
type handler struct {
	service Service
}

func registerRoutes(router chi.Router, h *handler) {
	router.Get("/health", h.handleHealth)
	router.Route("/points", func(r chi.Router) {
		r.Get("/", h.handleListPoints)
		r.Post("/", h.handleCreatePoint)
		r.Delete("/", h.handleDeleteAll)
		r.Post("/import", h.handleImportPoints)
		r.Get("/{homeID}", h.handleGetPoint)
		r.Patch("/{homeID}", h.handleUpdatePoint)
	})
	router.Get("/paradox", h.handleParadox)
	router.Get("/logs", h.handleGetLogs)
}

type pointResponse struct {
	HomeID     int64   `json:"home_id"`
	HomeNum    int64   `json:"home_num"`
	Volts      float64 `json:"volts"`
	Ampers     float64 `json:"ampers"`
	Power      float64 `json:"power"`
	Resistance float64 `json:"resistance"`
}

type createPointRequest struct {
	HomeNum    int64   `json:"home_num"`
	Volts      float64 `json:"volts"`
	Ampers     float64 `json:"ampers"`
	Power      float64 `json:"power"`
	Resistance float64 `json:"resistance"`
}

type updatePointRequest struct {
	HomeNum    *int64   `json:"home_num"`
	Volts      *float64 `json:"volts"`
	Ampers     *float64 `json:"ampers"`
	Power      *float64 `json:"power"`
	Resistance *float64 `json:"resistance"`
}

type paradoxResponse struct {
	HomeID int64   `json:"home_id"`
	Delta  float64 `json:"delta"`
}

type deleteResponse struct {
	PointsDeleted int64 `json:"points_deleted"`
}

type importResponse struct {
	PointsCreated int `json:"points_created"`
}

type logEntry struct {
	Timestamp    string  `json:"timestamp"`
	Level        string  `json:"level"`
	Service      string  `json:"service"`
	Endpoint     string  `json:"endpoint"`
	Method       string  `json:"method"`
	StatusCode   int32   `json:"status_code"`
	ClientIP     string  `json:"client_ip,omitempty"`
	UserAgent    string  `json:"user_agent,omitempty"`
	DurationMs   float64 `json:"request_duration_ms"`
	RequestBody  string  `json:"request_body,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Params       string  `json:"params,omitempty"`
}

type logsResponse struct {
	Logs []logEntry `json:"logs"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"health": "ok"})
}

func (h *handler) handleListPoints(w http.ResponseWriter, r *http.Request) {
	if numParam := r.URL.Query().Get(queryNum); numParam != "" {
		num, err := strconv.ParseInt(numParam, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid num parameter")
			return
		}

		point, err := h.service.GetByNum(r.Context(), num)
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, toPointResponse(point))
		return
	}

	points, err := h.service.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	response := make([]pointResponse, 0, len(points))
	for _, point := range points {
		response = append(response, toPointResponse(point))
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleCreatePoint(w http.ResponseWriter, r *http.Request) {
	var request createPointRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.HomeNum < 1 {
		h.writeError(w, http.StatusBadRequest, "home_num must be positive")
		return
	}

	point, err := h.service.Create(r.Context(), domain.PointInput{
		HomeNum:    request.HomeNum,
		Volts:      request.Volts,
		Ampers:     request.Ampers,
		Power:      request.Power,
		Resistance: request.Resistance,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toPointResponse(point))
}

func (h *handler) handleGetPoint(w http.ResponseWriter, r *http.Request) {
	homeID, err := strconv.ParseInt(chi.URLParam(r, "homeID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid home id")
		return
	}

	point, err := h.service.GetByID(r.Context(), homeID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toPointResponse(point))
}

func (h *handler) handleUpdatePoint(w http.ResponseWriter, r *http.Request) {
	homeID, err := strconv.ParseInt(chi.URLParam(r, "homeID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid home id")
		return
	}

	var request updatePointRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	point, err := h.service.Update(r.Context(), homeID, domain.PointPatch{
		HomeNum:    request.HomeNum,
		Volts:      request.Volts,
		Ampers:     request.Ampers,
		Power:      request.Power,
		Resistance: request.Resistance,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toPointResponse(point))
}

func (h *handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.DeleteAll(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, deleteResponse{PointsDeleted: deleted})
}

func (h *handler) handleImportPoints(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile(uploadFieldName)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	inputs, err := ingest.PointsFromXLSX(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateBatch(r.Context(), inputs)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, importResponse{PointsCreated: created})
}

func (h *handler) handleParadox(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.FindParadox(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, paradoxResponse{HomeID: result.HomeID, Delta: result.Delta})
}

func (h *handler) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	filter := auditlog.Filter{
		Level:    params.Get(queryLevel),
		Endpoint: params.Get(queryEndpoint),
	}

	if limitParam := params.Get(queryLimit); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			h.writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		filter.Limit = limit
	}

	if startParam := params.Get(queryStart); startParam != "" {
		start, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid start timestamp")
			return
		}
		filter.Start = start
	}

	if endParam := params.Get(queryEnd); endParam != "" {
		end, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid end timestamp")
			return
		}
		filter.End = end
	}

	entries, err := h.service.QueryLogs(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	response := logsResponse{Logs: make([]logEntry, 0, len(entries))}
	for _, entry := range entries {
		response.Logs = append(response.Logs, logEntry{
			Timestamp:    entry.Timestamp.UTC().Format(timestampOutLayout),
			Level:        entry.Level,
			Service:      entry.Service,
			Endpoint:     entry.Endpoint,
			Method:       entry.Method,
			StatusCode:   entry.StatusCode,
			ClientIP:     entry.ClientIP,
			UserAgent:    entry.UserAgent,
			DurationMs:   entry.DurationMs,
			RequestBody:  entry.RequestBody,
			ErrorMessage: entry.ErrorMessage,
			Params:       entry.Params,
		})
	}

	h.writeJSON(w, http.StatusOK, response)
}

func toPointResponse(point domain.Point) pointResponse {
	return pointResponse{
		HomeID:     point.HomeID,
		HomeNum:    point.HomeNum,
		Volts:      point.Volts,
		Ampers:     point.Ampers,
		Power:      point.Power,
		Resistance: point.Resistance,
	}
}

func (h *handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "point not found")
	case errors.Is(err, domain.ErrInsufficientData):
		h.writeError(w, http.StatusUnprocessableEntity, "insufficient data: at least 3 points required")
	default:
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message, Code: status})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
