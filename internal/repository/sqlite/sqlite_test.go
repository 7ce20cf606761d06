package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func record(matricule, date string, status attendance.Status, hours float64) attendance.Record {
	in, out := "08:00", "17:00"
	return attendance.Record{
		ID:        attendance.RecordID(matricule, date),
		BatchID:   "batch-1",
		Matricule: matricule,
		Name:      "Awa Diallo",
		Date:      date,
		FirstIn:   &in,
		LastOut:   &out,
		Hours:     hours,
		Status:    status,
		Credit:    attendance.CreditFull,
		CreatedAt: time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC),
	}
}

func TestRecordRepository_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository(newTestDB(t))

	// Arrange
	require.NoError(t, repo.ReplaceAll(ctx, []attendance.Record{
		record("E1", "2025-01-06", attendance.StatusLate, 8.75),
		record("E2", "2025-01-06", attendance.StatusPresent, 9),
	}))

	// Act
	absent := record("E3", "2025-01-07", attendance.StatusAbsent, 0)
	absent.FirstIn, absent.LastOut = nil, nil
	absent.Credit = attendance.CreditNone
	require.NoError(t, repo.ReplaceAll(ctx, []attendance.Record{absent}))

	// Assert
	records, total, err := repo.List(ctx, attendance.RecordFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, absent, records[0])
}

func TestRecordRepository_ReplaceAll_Empty(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository(newTestDB(t))

	require.NoError(t, repo.ReplaceAll(ctx, []attendance.Record{record("E1", "2025-01-06", attendance.StatusLate, 8.75)}))
	require.NoError(t, repo.ReplaceAll(ctx, nil))

	_, total, err := repo.List(ctx, attendance.RecordFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRecordRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository(newTestDB(t))

	require.NoError(t, repo.ReplaceAll(ctx, []attendance.Record{
		record("E1", "2025-01-06", attendance.StatusLate, 8.75),
		record("E2", "2025-01-06", attendance.StatusPresent, 9),
	}))

	updated := record("E1", "2025-01-06", attendance.StatusPresent, 9.5)
	updated.BatchID = "batch-2"
	require.NoError(t, repo.Upsert(ctx, []attendance.Record{
		updated,
		record("E1", "2025-01-07", attendance.StatusPresent, 8),
	}))

	records, total, err := repo.List(ctx, attendance.RecordFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, updated, records[0])
	assert.Equal(t, "batch-1", records[1].BatchID)
}

func TestRecordRepository_List_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository(newTestDB(t))

	require.NoError(t, repo.ReplaceAll(ctx, []attendance.Record{
		record("E1", "2025-01-06", attendance.StatusLate, 8.75),
		record("E1", "2025-01-07", attendance.StatusPresent, 8),
		record("E2", "2025-01-07", attendance.StatusAbsent, 0),
		record("E2", "2025-01-09", attendance.StatusPresent, 8),
	}))

	tests := []struct {
		name   string
		filter attendance.RecordFilter
		want   []string
		total  int64
	}{
		{
			name:   "matricule",
			filter: attendance.RecordFilter{Matricule: ptr("E2"), Page: 1, Limit: 10},
			want:   []string{"E2|2025-01-07", "E2|2025-01-09"},
			total:  2,
		},
		{
			name:   "date range",
			filter: attendance.RecordFilter{StartDate: ptr("2025-01-07"), EndDate: ptr("2025-01-08"), Page: 1, Limit: 10},
			want:   []string{"E1|2025-01-07", "E2|2025-01-07"},
			total:  2,
		},
		{
			name:   "status",
			filter: attendance.RecordFilter{Status: ptr("Present"), Page: 1, Limit: 10},
			want:   []string{"E1|2025-01-07", "E2|2025-01-09"},
			total:  2,
		},
		{
			name:   "second page",
			filter: attendance.RecordFilter{Page: 2, Limit: 3},
			want:   []string{"E2|2025-01-09"},
			total:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			var ids []string
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestEmployeeRepository_ListDirectory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO employees (matricule, name, department, works_saturday, active) VALUES
		('E2', 'Jean Kouassi', 'Logistics', 1, 1),
		('E1', 'Awa Diallo', 'Ops', 0, 1),
		('E3', 'Former Staff', 'Ops', 0, 0)`)
	require.NoError(t, err)

	employees, err := NewEmployeeRepository(db).ListDirectory(ctx)

	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "E1", employees[0].Matricule)
	assert.False(t, employees[0].WorksSaturday)
	assert.Equal(t, "E2", employees[1].Matricule)
	assert.True(t, employees[1].WorksSaturday)
}

func TestHolidayRepository_SaveKeepsExistingLabel(t *testing.T) {
	ctx := context.Background()
	repo := NewHolidayRepository(newTestDB(t))

	require.NoError(t, repo.Save(ctx, []holiday.Holiday{
		{Date: "2025-05-01", Label: "Fête du Travail"},
		{Date: "2025-01-01", Label: "Jour de l'An"},
	}))
	require.NoError(t, repo.Save(ctx, []holiday.Holiday{{Date: "2025-05-01", Label: "Labour Day"}}))

	holidays, err := repo.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, []holiday.Holiday{
		{Date: "2025-01-01", Label: "Jour de l'An"},
		{Date: "2025-05-01", Label: "Fête du Travail"},
	}, holidays)
}

func ptr(s string) *string { return &s }
