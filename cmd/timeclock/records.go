package main

import (
	"fmt"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/spf13/cobra"
)

func newRecordsCmd() *cobra.Command {
	var (
		matricule, startDate, endDate, status string
		page, limit                           int
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List persisted attendance records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			filter := attendance.RecordFilter{Page: page, Limit: limit}
			if matricule != "" {
				filter.Matricule = &matricule
			}
			if startDate != "" {
				filter.StartDate = &startDate
			}
			if endDate != "" {
				filter.EndDate = &endDate
			}
			if status != "" {
				filter.Status = &status
			}

			resp, err := a.ImportService.ListRecords(cmd.Context(), filter)
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			printRecords(out, resp.Records)
			fmt.Fprintf(out, "\nPage %d of %d (%d records)\n", resp.Page, resp.TotalPages, resp.TotalCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&matricule, "matricule", "", "Only records of this employee")
	cmd.Flags().StringVar(&startDate, "start", "", "First date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Last date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "Present, Late, Absent or Holiday")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 50, "Records per page")
	return cmd
}
