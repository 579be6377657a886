package render

import (
	"encoding/csv"
	"os"
	"strconv"
)

// writeCSV emits one row per incident, most recent first, across all
// monitors. Summaries are not part of the CSV export.
func writeCSV(name string, reports []MonitorReport) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Write([]string{"Monitor Name", "Outage Start", "Duration (seconds)", "Ongoing"})

	for _, r := range reports {
		for i := len(r.Incidents) - 1; i >= 0; i-- {
			inc := r.Incidents[i]
			w.Write([]string{
				r.MonitorName,
				inc.Start.Format(timeLayout),
				strconv.FormatFloat(inc.Duration.Seconds(), 'f', -1, 64),
				strconv.FormatBool(inc.Ongoing),
			})
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
