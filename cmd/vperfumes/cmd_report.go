package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vperfumes/tracker/app/report"
	"github.com/vperfumes/tracker/config"
	"github.com/vperfumes/tracker/pkg/storage"
	"github.com/vperfumes/tracker/pkg/workerpool"
)

var (
	reportDate   string
	reportFrom   string
	reportTo     string
	reportFormat string
	reportDisk   string
)

// vperfumes report: export one day's orders, or a date range with --from and
// --to, to PDF or XLSX.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export daily order reports (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		storage.Connect()
		gen := report.NewGenerator(c)

		if reportFrom == "" && reportTo == "" {
			location, err := gen.Generate(cmd.Context(), reportDate, reportFormat, reportDisk)
			if err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", location)
			return nil
		}

		dates, err := dateRange(reportFrom, reportTo)
		if err != nil {
			return err
		}

		// A few reports at a time; each one is a fetch plus a file build.
		pool := workerpool.New(4)
		defer pool.Shutdown()

		var (
			mu       sync.Mutex
			failures []error
			wg       sync.WaitGroup
		)
		for _, date := range dates {
			date := date
			wg.Add(1)
			if err := pool.SubmitWait(func() {
				defer wg.Done()
				location, genErr := gen.Generate(cmd.Context(), date, reportFormat, reportDisk)
				mu.Lock()
				defer mu.Unlock()
				if genErr != nil {
					failures = append(failures, fmt.Errorf("%s: %w", date, genErr))
					return
				}
				fmt.Printf("Report written to %s\n", location)
			}); err != nil {
				wg.Done()
				return err
			}
		}
		wg.Wait()

		if len(failures) > 0 {
			for _, f := range failures {
				fmt.Println(f)
			}
			return fmt.Errorf("%d of %d reports failed", len(failures), len(dates))
		}
		return nil
	},
}

// dateRange expands an inclusive [from, to] pair of YYYY-MM-DD dates.
func dateRange(from, to string) ([]string, error) {
	const layout = "2006-01-02"
	start, err := time.Parse(layout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid --from date %q", from)
	}
	end, err := time.Parse(layout, to)
	if err != nil {
		return nil, fmt.Errorf("invalid --to date %q", to)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("--to is before --from")
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(layout))
	}
	return dates, nil
}

func init() {
	reportCmd.Flags().StringVarP(&reportDate, "date", "d", "", "report date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "first date of a range (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "last date of a range (YYYY-MM-DD)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", report.FormatPDF, "output format: pdf or xlsx")
	reportCmd.Flags().StringVar(&reportDisk, "disk", config.StorageDefault(), "storage disk: local or s3")
}
