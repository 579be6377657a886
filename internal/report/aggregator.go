package report

import "time"

// Summarize computes downtime and latency statistics over the Daily,
// Weekly and Monthly trailing windows ending at now. An incident
// belongs to a window when its start falls inside it; its full
// duration is then counted, with no clipping at the window boundary,
// so the percentage can legitimately exceed 100. now is taken once by
// the caller so all three windows see the same instant.
func Summarize(a Analysis, now time.Time) map[Window]Summary {
	summary := make(map[Window]Summary, len(Windows))

	for _, w := range Windows {
		periodStart := now.Add(-w.Length())

		var (
			count int
			total time.Duration
		)
		for _, inc := range a.Incidents {
			if inc.Start.Before(periodStart) {
				continue
			}
			count++
			total += inc.Duration
		}

		var avg time.Duration
		if count > 0 {
			avg = total / time.Duration(count)
		}
		percentage := total.Seconds() / w.Length().Seconds() * 100

		var (
			avgPing, maxPing *float64
			sum, high        float64
			samples          int
		)
		for _, p := range a.Pings {
			if p.Time.Before(periodStart) {
				continue
			}
			sum += p.Ping
			if samples == 0 || p.Ping > high {
				high = p.Ping
			}
			samples++
		}
		if samples > 0 {
			mean := sum / float64(samples)
			avgPing, maxPing = &mean, &high
		}

		summary[w] = Summary{
			Count:         count,
			TotalDuration: total,
			AvgDuration:   avg,
			Percentage:    percentage,
			AvgPing:       avgPing,
			MaxPing:       maxPing,
		}
	}

	return summary
}
