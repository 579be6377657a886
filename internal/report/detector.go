package report

import (
	"log"
	"sort"
	"time"

	"github.com/alteredgenome/kumareport/internal/models"
)

// runState is the detector's scan state: either the monitor is up, or
// a down run is open and carries its opening instant.
type runState int

const (
	stateUp runState = iota
	stateDown
)

// Location resolves a timezone identifier, falling back to UTC when it
// is empty or unknown. Resolution never fails the run.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Warning: unknown timezone %q, defaulting to UTC", name)
		return time.UTC
	}
	return loc
}

// normalizedBeat is a heartbeat whose wire timestamp has been resolved
// and localized.
type normalizedBeat struct {
	at   time.Time
	down bool
	ping *float64
}

// Detect normalizes a batch of raw heartbeats into the target timezone
// and scans it once for downtime incidents and ping samples. Beats
// with unparseable timestamps are dropped. Input order is not trusted;
// beats are sorted before the scan. now closes a down run that is
// still open at the end of the batch, so passing the same batch and
// now always yields the same result.
func Detect(beats []models.Heartbeat, timezone string, now time.Time) Analysis {
	loc := Location(timezone)

	norm := make([]normalizedBeat, 0, len(beats))
	for _, b := range beats {
		at, ok := b.Time.In(loc)
		if !ok {
			continue
		}
		norm = append(norm, normalizedBeat{at: at, down: b.Down(), ping: b.Ping})
	}

	sort.SliceStable(norm, func(i, j int) bool { return norm[i].at.Before(norm[j].at) })

	var (
		incidents []Incident
		pings     []PingSample
		state     = stateUp
		openedAt  time.Time
	)
	for _, b := range norm {
		if b.ping != nil {
			pings = append(pings, PingSample{Time: b.at, Ping: *b.ping})
		}

		switch state {
		case stateUp:
			if b.down {
				state = stateDown
				openedAt = b.at
			}
		case stateDown:
			if !b.down {
				incidents = append(incidents, Incident{
					Start:    openedAt,
					Duration: b.at.Sub(openedAt),
				})
				state = stateUp
			}
		}
	}

	// A run still open at the end of the batch closes against now
	if state == stateDown {
		incidents = append(incidents, Incident{
			Start:    openedAt,
			Duration: now.In(loc).Sub(openedAt),
			Ongoing:  true,
		})
	}

	return Analysis{Incidents: incidents, Pings: pings}
}
