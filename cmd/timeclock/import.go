package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/validator"
	"github.com/spf13/cobra"
)

type importOptions struct {
	commit       bool
	mode         string
	unmatchedOut string
	asJSON       bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Reconcile a time-clock export (dry-run unless --commit)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.commit, "commit", false, "Persist the processed records (default is dry-run)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Persistence mode: overwrite or merge (default from IMPORT_MODE)")
	cmd.Flags().StringVar(&opts.unmatchedOut, "unmatched-out", "", "Write unmatched rows as a corrected export (.csv or .xlsx)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full import result as JSON")
	return cmd
}

func runImport(cmd *cobra.Command, path string, opts importOptions) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	mode := attendance.ImportMode(opts.mode)
	if mode == "" {
		mode = attendance.ImportMode(a.Config.Import.Mode)
	}

	req, err := fileRequest(path, mode)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var result attendance.ImportResult
	if opts.commit {
		result, err = a.ImportService.Import(ctx, req)
	} else {
		result, err = a.ImportService.Preview(ctx, req)
	}
	if err != nil {
		return classify(err)
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		printResult(out, result, opts.commit, mode)
	}

	if opts.unmatchedOut == "" {
		return nil
	}
	req, err = fileRequest(path, mode)
	if err != nil {
		return err
	}
	n, err := writeUnmatched(cmd, a.ImportService, req, opts.unmatchedOut)
	if err != nil {
		return err
	}
	if !opts.asJSON {
		reportUnmatched(out, n, opts.unmatchedOut)
	}
	return nil
}

func newUnmatchedCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "unmatched FILE",
		Short: "Write the unmatched rows of an export as a corrected file for re-import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := fileRequest(args[0], "")
			if err != nil {
				return err
			}
			n, err := writeUnmatched(cmd, a.ImportService, req, out)
			if err != nil {
				return err
			}
			reportUnmatched(cmd.OutOrStdout(), n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output path (.csv or .xlsx)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func reportUnmatched(w io.Writer, n int, path string) {
	if n == 0 {
		fmt.Fprintf(w, "every row matched, nothing to export (%s not written)\n", path)
		return
	}
	fmt.Fprintf(w, "%d unmatched row(s) written to %s\n", n, path)
}

// writeUnmatched writes nothing when every row matched.
func writeUnmatched(cmd *cobra.Command, svc attendance.ImportService, req attendance.ImportRequest, out string) (int, error) {
	format := "csv"
	if strings.EqualFold(filepath.Ext(out), ".xlsx") {
		format = "xlsx"
	}

	var buf bytes.Buffer
	n, err := svc.ExportUnmatched(cmd.Context(), req, &buf, format)
	if errors.Is(err, attendance.ErrNothingToExport) {
		return 0, nil
	}
	if err != nil {
		return 0, classify(err)
	}

	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return n, nil
}

func fileRequest(path string, mode attendance.ImportMode) (attendance.ImportRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return attendance.ImportRequest{}, withCode(exitUsage, fmt.Errorf("failed to read %s: %w", path, err))
	}
	return attendance.ImportRequest{
		Filename: filepath.Base(path),
		Size:     int64(len(content)),
		Mode:     mode,
		File:     bytes.NewReader(content),
	}, nil
}

func classify(err error) error {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return withCode(exitUsage, err)
	case errors.Is(err, attendance.ErrEmptyFile),
		errors.Is(err, attendance.ErrRequiredHeadersMissing):
		return withCode(exitPrecondition, err)
	case errors.Is(err, attendance.ErrUnsupportedFile),
		errors.Is(err, attendance.ErrFileTooLarge),
		errors.Is(err, attendance.ErrInvalidMode):
		return withCode(exitUsage, err)
	}
	return err
}
