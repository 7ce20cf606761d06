package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
)

const (
	processedDir = "processed"
	failedDir    = "failed"
)

var inboxExtensions = []string{".xlsx", ".xlsm", ".xltx", ".csv", ".tsv", ".txt"}

// InboxJobs imports time-clock exports dropped into a directory. Each file is moved to
// processed/ once imported, or to failed/ with an .error.txt note beside it.
type InboxJobs struct {
	importService attendance.ImportService
	dir           string
	mode          attendance.ImportMode
	now           func() time.Time
}

func NewInboxJobs(importService attendance.ImportService, dir string, mode attendance.ImportMode) (*InboxJobs, error) {
	for _, sub := range []string{"", processedDir, failedDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create inbox directory: %w", err)
		}
	}
	return &InboxJobs{
		importService: importService,
		dir:           dir,
		mode:          mode,
		now:           time.Now,
	}, nil
}

func (j *InboxJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("import_inbox", interval, j.ScanInbox)
}

// ScanInbox imports every pending export in name order and returns the joined
// per-file failures. A file whose import is cancelled stays in the inbox.
func (j *InboxJobs) ScanInbox(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return fmt.Errorf("failed to read inbox: %w", err)
	}

	var errs []error
	imported := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		name := entry.Name()
		if !entry.Type().IsRegular() || !isInboxFile(name) {
			continue
		}

		result, err := j.importFile(ctx, name)
		if errors.Is(err, context.Canceled) {
			// left in place for the next scan
			slog.Info("Inbox scan interrupted", "file", name)
			break
		}
		if err != nil {
			slog.Error("Inbox import failed", "file", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			if moveErr := j.moveFailed(name, err); moveErr != nil {
				errs = append(errs, moveErr)
			}
			continue
		}

		imported++
		slog.Info("Inbox file imported",
			"file", name,
			"batch_id", result.BatchID,
			"matched", result.Stats.Matched,
			"unmatched", result.Stats.Unmatched)
		if err := j.move(name, processedDir); err != nil {
			errs = append(errs, err)
		}
	}

	if imported > 0 {
		slog.Info("Inbox scan finished", "imported", imported, "failed", len(errs))
	}
	return errors.Join(errs...)
}

func (j *InboxJobs) importFile(ctx context.Context, name string) (attendance.ImportResult, error) {
	path := filepath.Join(j.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return attendance.ImportResult{}, fmt.Errorf("failed to open inbox file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return attendance.ImportResult{}, fmt.Errorf("failed to stat inbox file: %w", err)
	}

	return j.importService.Import(ctx, attendance.ImportRequest{
		Filename: name,
		Size:     info.Size(),
		Mode:     j.mode,
		File:     f,
	})
}

func (j *InboxJobs) moveFailed(name string, cause error) error {
	target, err := j.moveTo(name, failedDir)
	if err != nil {
		return err
	}
	note := target + ".error.txt"
	if err := os.WriteFile(note, []byte(cause.Error()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write error note: %w", err)
	}
	return nil
}

func (j *InboxJobs) move(name, sub string) error {
	_, err := j.moveTo(name, sub)
	return err
}

// moveTo prefixes the moved file with a UTC timestamp.
func (j *InboxJobs) moveTo(name, sub string) (string, error) {
	target := filepath.Join(j.dir, sub, j.now().UTC().Format("20060102T150405")+"_"+name)
	if err := os.Rename(filepath.Join(j.dir, name), target); err != nil {
		return "", fmt.Errorf("failed to move %s to %s: %w", name, sub, err)
	}
	return target, nil
}

func isInboxFile(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	return slices.Contains(inboxExtensions, strings.ToLower(filepath.Ext(name)))
}
