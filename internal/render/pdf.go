package render

import (
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/alteredgenome/kumareport/internal/report"
)

// writePDF produces the paginated report: a header page section, then
// per monitor a summary table and a downtime event log, one monitor
// per page.
func writePDF(name string, meta Meta, reports []MonitorReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdfHeader(pdf, meta)

	for i, r := range reports {
		pdfSummary(pdf, r)
		pdfDetails(pdf, r.Incidents)
		if i < len(reports)-1 {
			pdf.AddPage()
		}
	}

	return pdf.OutputFileAndClose(name)
}

func pdfHeader(pdf *fpdf.Fpdf, meta Meta) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(10, 15)
	pdf.CellFormat(0, 10, "Historical Status Monitor Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(10, 25)
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", meta.GeneratedAt.Format("01/02/2006 @ 15:04:05")), "", 1, "L", false, 0, "")
	pdf.SetXY(10, 30)
	pdf.CellFormat(0, 8, fmt.Sprintf("Prepared by: %s", meta.Username), "", 1, "L", false, 0, "")

	pdf.SetXY(10, 40)
	pdf.MultiCell(0, 5, fmt.Sprintf("Included Monitors: %s", strings.Join(meta.Monitors, ", ")), "", "L", false)
	pdf.Ln(10)
}

func pdfSummary(pdf *fpdf.Fpdf, r MonitorReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 10, fmt.Sprintf("Summary for: %s", r.MonitorName), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(30, 8, "Period", "1", 0, "", false, 0, "")
	pdf.CellFormat(35, 8, "Downtime Incidents", "1", 0, "", false, 0, "")
	pdf.CellFormat(35, 8, "Avg. Downtime", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Avg. Ping", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Max. Ping", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Downtime %", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, w := range report.Windows {
		s := r.Summary[w]
		pdf.CellFormat(30, 8, string(w), "1", 0, "", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%d", s.Count), "1", 0, "", false, 0, "")
		pdf.CellFormat(35, 8, report.FormatDuration(s.AvgDuration), "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, pingLabel(s.AvgPing), "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, pingLabel(s.MaxPing), "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f%%", s.Percentage), "1", 1, "", false, 0, "")
	}

	pdf.Ln(10)
}

func pdfDetails(pdf *fpdf.Fpdf, incidents []report.Incident) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 10, "Downtime Event Log (Most Recent First)", "", 1, "L", false, 0, "")

	if len(incidents) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, "No downtime incidents recorded in the analyzed period.", "", 1, "L", false, 0, "")
		return
	}

	for i := len(incidents) - 1; i >= 0; i-- {
		inc := incidents[i]
		duration := report.FormatDuration(inc.Duration)
		if inc.Ongoing {
			duration += " (Ongoing)"
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 8, "Outage Start:", "", 0, "", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, inc.Start.Format(timeLayout), "", 1, "", false, 0, "")

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 8, "Duration:", "", 0, "", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, duration, "", 1, "", false, 0, "")
		pdf.Ln(4)
	}
}
