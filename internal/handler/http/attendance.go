package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
	ExportUnmatched(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	importService attendance.ImportService
	defaultMode   attendance.ImportMode
	keepalive     time.Duration
}

func NewAttendanceHandler(importService attendance.ImportService, defaultMode attendance.ImportMode) AttendanceHandler {
	return &attendanceHandlerImpl{
		importService: importService,
		defaultMode:   defaultMode,
		keepalive:     30 * time.Second,
	}
}

// Preview implements AttendanceHandler.
func (h *attendanceHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	req, cleanup, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.importService.Preview(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Import implements AttendanceHandler.
func (h *attendanceHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	req, cleanup, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.importService.Import(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("Imported %d attendance records", result.Stats.Matched), result)
}

// ExportUnmatched implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportUnmatched(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}

	req, cleanup, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	var buf bytes.Buffer
	n, err := h.importService.ExportUnmatched(r.Context(), req, &buf, format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = xlsxContentType
	}
	w.Header().Set("X-Unmatched-Rows", strconv.Itoa(n))
	response.Attachment(w, "unmatched."+format, contentType, buf.Bytes())
}

// ListRecords implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := attendance.RecordFilter{}

	if matricule := query.Get("matricule"); matricule != "" {
		filter.Matricule = &matricule
	}

	// Date range filters
	if startDate := query.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := query.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}

	// Pagination
	if p := query.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			filter.Page = pageNum
		}
	}
	if l := query.Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			filter.Limit = limitNum
		}
	}

	results, err := h.importService.ListRecords(ctx, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.Records, &response.Meta{
		Page:       results.Page,
		Limit:      results.Limit,
		TotalItems: results.TotalCount,
		TotalPages: results.TotalPages,
	})
}

// Events streams completed imports as server-sent events.
func (h *attendanceHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.importService.Subscribe(r.Context())
	defer cleanup()

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.Error("Failed to encode import event", "batch_id", event.BatchID, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// parseUpload reads the multipart "file" field. On failure the response is already written.
func (h *attendanceHandlerImpl) parseUpload(w http.ResponseWriter, r *http.Request) (attendance.ImportRequest, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, attendance.MaxImportSize+(1<<20))
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.HandleError(w, attendance.ErrFileTooLarge)
			return attendance.ImportRequest{}, nil, false
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return attendance.ImportRequest{}, nil, false
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, "Time-clock export file is required", nil)
			return attendance.ImportRequest{}, nil, false
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return attendance.ImportRequest{}, nil, false
	}

	mode := attendance.ImportMode(r.FormValue("mode"))
	if mode == "" {
		mode = attendance.ImportMode(r.URL.Query().Get("mode"))
	}
	if mode == "" {
		mode = h.defaultMode
	}

	req := attendance.ImportRequest{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Mode:     mode,
		File:     file,
	}
	cleanup := func() {
		file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	return req, cleanup, true
}
