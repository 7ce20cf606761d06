package attendance

import (
	"context"
	"io"
)

// ImportService turns time-clock exports into attendance records
type ImportService interface {
	// Preview parses and reconciles an export without persisting anything
	Preview(ctx context.Context, req ImportRequest) (ImportResult, error)

	// Import parses, reconciles and persists the processed records
	Import(ctx context.Context, req ImportRequest) (ImportResult, error)

	// ExportUnmatched parses an export and writes its unmatched rows as a corrected file
	ExportUnmatched(ctx context.Context, req ImportRequest, w io.Writer, format string) (int, error)

	// ListRecords retrieves persisted records
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordResponse, error)

	// Subscribe streams an ImportEvent for every persisted import until ctx ends or
	// the cleanup function is called
	Subscribe(ctx context.Context) (<-chan ImportEvent, func())
}
