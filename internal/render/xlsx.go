package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/alteredgenome/kumareport/internal/report"
)

// Sheet names in the XLSX export
const (
	summarySheet = "Summary"
	detailsSheet = "Downtime Log"
)

// writeXLSX produces a workbook with a per-window summary sheet and a
// downtime log sheet, most recent incidents first.
func writeXLSX(name string, reports []MonitorReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	header := []interface{}{
		"Monitor Name", "Period", "Downtime Incidents",
		"Avg. Downtime (s)", "Avg. Ping (ms)", "Max. Ping (ms)", "Downtime %",
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, r := range reports {
		for _, w := range report.Windows {
			s := r.Summary[w]
			cells := []interface{}{
				r.MonitorName,
				string(w),
				s.Count,
				s.AvgDuration.Seconds(),
				pingValue(s.AvgPing),
				pingValue(s.MaxPing),
				s.Percentage,
			}
			if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return err
			}
			row++
		}
	}

	if _, err := f.NewSheet(detailsSheet); err != nil {
		return err
	}
	detailHeader := []interface{}{"Monitor Name", "Outage Start", "Duration (s)", "Ongoing"}
	if err := f.SetSheetRow(detailsSheet, "A1", &detailHeader); err != nil {
		return err
	}

	row = 2
	for _, r := range reports {
		for i := len(r.Incidents) - 1; i >= 0; i-- {
			inc := r.Incidents[i]
			cells := []interface{}{
				r.MonitorName,
				inc.Start.Format(timeLayout),
				inc.Duration.Seconds(),
				inc.Ongoing,
			}
			if err := f.SetSheetRow(detailsSheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return err
			}
			row++
		}
	}

	return f.SaveAs(name)
}

// pingValue leaves the cell empty for missing samples instead of
// writing a fake zero.
func pingValue(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
