package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-timeclock/internal/config"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-timeclock/internal/fixtures"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-timeclock/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-timeclock/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/hris-timeclock/internal/service/attendance"
)

// App holds the wired services shared by the API server and the CLI.
type App struct {
	Config        *config.Config
	ImportService attendance.ImportService
	JWTService    jwt.Service
	Events        *sse.Hub

	closers []func()
}

type stores struct {
	records   attendance.RecordRepository
	employees employee.EmployeeRepository
	holidays  holiday.HolidayRepository
	close     func()
}

// New opens the configured store, applies the schema, seeds the default holidays and
// wires the import service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	rules, err := Rules(cfg.Import)
	if err != nil {
		return nil, err
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, closers: []func(){st.close}}

	if err := st.holidays.Save(ctx, fixtures.DefaultHolidays(fixtures.DefaultHolidayYears...)); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed holidays: %w", err)
	}

	archive, err := storage.NewLocalStore(cfg.Storage.BasePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize archive storage: %w", err)
	}

	importer := attendanceService.NewImporter(attendanceService.ImporterOptions{
		Rules:    &rules,
		Date1904: cfg.Import.Date1904,
	})

	a.Events = sse.NewHub()
	a.ImportService = attendanceService.NewImportService(st.records, st.employees, st.holidays, archive, a.Events, importer)
	a.JWTService = jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	return a, nil
}

// Close releases the database handles in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Rules derives the attendance rules from the import settings.
func Rules(cfg config.ImportConfig) (attendanceService.Rules, error) {
	rules := attendanceService.DefaultRules()
	if cfg.ScheduledStart != "" {
		rules.ScheduledStart = cfg.ScheduledStart
	}
	rules.LateGraceMinutes = cfg.LateGraceMinutes
	if cfg.FullDayHours > 0 {
		rules.FullDayHours = cfg.FullDayHours
	}
	if err := rules.Validate(); err != nil {
		return attendanceService.Rules{}, fmt.Errorf("invalid attendance rules: %w", err)
	}
	return rules, nil
}

func openStores(ctx context.Context, c *config.Config) (stores, error) {
	cfg := c.Database
	switch cfg.Driver {
	case "sqlite":
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return stores{}, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			db.Close()
			return stores{}, err
		}
		slog.Info("Using SQLite store", "path", cfg.SQLitePath)
		return stores{
			records:   sqlite.NewRecordRepository(db),
			employees: sqlite.NewEmployeeRepository(db),
			holidays:  sqlite.NewHolidayRepository(db),
			close:     func() { db.Close() },
		}, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, c.DatabaseURL(), database.PoolOptions{MaxConns: int32(cfg.MaxConns)})
		if err != nil {
			return stores{}, err
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return stores{}, err
		}
		slog.Info("Using PostgreSQL store", "host", cfg.Host, "database", cfg.Name)
		return stores{
			records:   postgresql.NewRecordRepository(db),
			employees: postgresql.NewEmployeeRepository(db),
			holidays:  postgresql.NewHolidayRepository(db),
			close:     db.Close,
		}, nil
	}
}
