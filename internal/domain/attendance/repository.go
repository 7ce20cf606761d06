package attendance

import "context"

// RecordRepository persists processed attendance records.
type RecordRepository interface {
	// ReplaceAll deletes every stored record and inserts records in one transaction
	ReplaceAll(ctx context.Context, records []Record) error

	// Upsert inserts records, replacing stored records that share an ID
	Upsert(ctx context.Context, records []Record) error

	// List retrieves records with filters and pagination
	List(ctx context.Context, filter RecordFilter) ([]Record, int64, error)
}
