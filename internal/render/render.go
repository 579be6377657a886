package render

import (
	"fmt"
	"time"

	"github.com/alteredgenome/kumareport/internal/report"
)

// MonitorReport bundles one monitor's analysis results for rendering.
type MonitorReport struct {
	MonitorName string
	Summary     map[report.Window]report.Summary
	Incidents   []report.Incident
}

// Meta describes the report run itself, shown in document headers.
type Meta struct {
	Username    string
	Timezone    string
	GeneratedAt time.Time
	Monitors    []string
}

// timeLayout is how incident timestamps appear in documents.
const timeLayout = "2006-01-02 15:04:05 MST"

// Write renders the reports in the requested format and returns the
// generated file name.
func Write(format string, meta Meta, reports []MonitorReport) (string, error) {
	name := meta.GeneratedAt.Format("kumareport_01_02_06_15_04_05") + "." + format

	var err error
	switch format {
	case "pdf":
		err = writePDF(name, meta, reports)
	case "csv":
		err = writeCSV(name, reports)
	case "xlsx":
		err = writeXLSX(name, reports)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// pingLabel renders a nullable ping value for tabular output.
func pingLabel(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d ms", int(*p))
}
