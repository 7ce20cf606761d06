package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/tabular"
	"github.com/google/uuid"
)

type ImportServiceImpl struct {
	attendance.RecordRepository
	employee.EmployeeRepository
	holiday.HolidayRepository
	archive  storage.ArchiveStore
	events   *sse.Hub
	importer *Importer
	now      func() time.Time
}

const importsTopic = "imports"

// Preview implements attendance.ImportService.
func (s *ImportServiceImpl) Preview(ctx context.Context, req attendance.ImportRequest) (attendance.ImportResult, error) {
	result, _, err := s.run(ctx, &req)
	return result, err
}

// Import implements attendance.ImportService.
func (s *ImportServiceImpl) Import(ctx context.Context, req attendance.ImportRequest) (attendance.ImportResult, error) {
	result, content, err := s.run(ctx, &req)
	if err != nil {
		return result, err
	}

	if s.archive != nil {
		key := fmt.Sprintf("imports/%s/%s", result.BatchID, filepath.Base(req.Filename))
		if _, err := s.archive.Put(ctx, key, bytes.NewReader(content)); err != nil {
			slog.Warn("Failed to archive time-clock export", "batch_id", result.BatchID, "file", req.Filename, "error", err)
		}
	}

	switch req.Mode {
	case attendance.ModeMerge:
		err = s.RecordRepository.Upsert(ctx, result.ProcessedRecords)
	default:
		err = s.RecordRepository.ReplaceAll(ctx, result.ProcessedRecords)
	}
	if err != nil {
		return attendance.ImportResult{}, fmt.Errorf("failed to persist attendance records: %w", err)
	}

	slog.Info("Imported time-clock export",
		"batch_id", result.BatchID,
		"file", req.Filename,
		"mode", req.Mode,
		"layout", result.Layout,
		"rows", result.Stats.Total,
		"records", result.Stats.Matched,
		"unmatched", result.Stats.Unmatched,
	)

	if s.events != nil {
		delivered := s.events.Publish(sse.Event{
			Topic: importsTopic,
			Event: attendance.EventImportCompleted,
			Data: attendance.ImportEvent{
				Event:     attendance.EventImportCompleted,
				BatchID:   result.BatchID,
				Filename:  req.Filename,
				Mode:      req.Mode,
				Stats:     result.Stats,
				Timestamp: s.now().UTC(),
			},
		})
		slog.Debug("Published import event",
			"batch_id", result.BatchID,
			"subscribers", s.events.SubscriberCount(importsTopic),
			"delivered", delivered)
	}
	return result, nil
}

// ExportUnmatched implements attendance.ImportService.
func (s *ImportServiceImpl) ExportUnmatched(ctx context.Context, req attendance.ImportRequest, w io.Writer, format string) (int, error) {
	var outFormat tabular.Format
	switch format {
	case "", string(tabular.FormatCSV):
		outFormat = tabular.FormatCSV
	case string(tabular.FormatXLSX):
		outFormat = tabular.FormatXLSX
	default:
		return 0, attendance.ErrUnsupportedFile
	}

	result, _, err := s.run(ctx, &req)
	if err != nil {
		return 0, err
	}

	rows := result.UnmatchedImportedRows()
	if len(rows) == 0 {
		return 0, attendance.ErrNothingToExport
	}

	if err := tabular.Write(w, outFormat, "Unmatched", BuildCorrectedExport(rows)); err != nil {
		return 0, fmt.Errorf("failed to write unmatched rows: %w", err)
	}
	return len(rows), nil
}

// ListRecords implements attendance.ImportService.
func (s *ImportServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordResponse{}, err
	}

	records, total, err := s.RecordRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListRecordResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	if records == nil {
		records = []attendance.Record{}
	}
	return attendance.ListRecordResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Records:    records,
	}, nil
}

// Subscribe implements attendance.ImportService. Without a hub the channel closes when ctx ends.
func (s *ImportServiceImpl) Subscribe(ctx context.Context) (<-chan attendance.ImportEvent, func()) {
	out := make(chan attendance.ImportEvent, 10)
	if s.events == nil {
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out, func() {}
	}

	ch, cleanup := s.events.Subscribe(importsTopic)
	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if ev, ok := event.Data.(attendance.ImportEvent); ok {
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// run reads the upload and reconciles it against the current directory and calendar.
// The raw content is returned for archiving.
func (s *ImportServiceImpl) run(ctx context.Context, req *attendance.ImportRequest) (attendance.ImportResult, []byte, error) {
	if err := req.Validate(); err != nil {
		return attendance.ImportResult{}, nil, err
	}

	content, err := io.ReadAll(io.LimitReader(req.File, attendance.MaxImportSize+1))
	if err != nil {
		return attendance.ImportResult{}, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(content) > attendance.MaxImportSize {
		return attendance.ImportResult{}, nil, attendance.ErrFileTooLarge
	}

	sheet, err := tabular.Read(bytes.NewReader(content), req.Filename)
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupportedFormat) {
			return attendance.ImportResult{}, nil, attendance.ErrUnsupportedFile
		}
		return attendance.ImportResult{}, nil, fmt.Errorf("failed to read %s: %w", req.Filename, err)
	}

	employees, err := s.EmployeeRepository.ListDirectory(ctx)
	if err != nil {
		return attendance.ImportResult{}, nil, fmt.Errorf("failed to load employee directory: %w", err)
	}
	holidays, err := s.HolidayRepository.List(ctx)
	if err != nil {
		return attendance.ImportResult{}, nil, fmt.Errorf("failed to load holiday calendar: %w", err)
	}

	directory := employee.NewDirectory(employees)
	if directory.Len() == 0 {
		slog.Warn("Employee directory is empty, every row will be unmatched", "file", req.Filename)
	}

	result, err := s.importer.Import(sheet, directory, holiday.NewCalendar(holidays))
	if err != nil {
		return result, nil, err
	}

	result.BatchID = uuid.NewString()
	createdAt := s.now().UTC()
	for i := range result.ProcessedRecords {
		result.ProcessedRecords[i].BatchID = result.BatchID
		result.ProcessedRecords[i].CreatedAt = createdAt
	}
	return result, content, nil
}

func NewImportService(
	recordRepo attendance.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	holidayRepo holiday.HolidayRepository,
	archive storage.ArchiveStore,
	events *sse.Hub,
	importer *Importer,
) attendance.ImportService {
	if importer == nil {
		importer = NewImporter(ImporterOptions{})
	}
	return &ImportServiceImpl{
		RecordRepository:   recordRepo,
		EmployeeRepository: employeeRepo,
		HolidayRepository:  holidayRepo,
		archive:            archive,
		events:             events,
		importer:           importer,
		now:                time.Now,
	}
}
