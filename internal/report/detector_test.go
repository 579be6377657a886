package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/alteredgenome/kumareport/internal/models"
)

var t0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// beat builds a heartbeat at t0 plus the given offset.
func beat(offset time.Duration, status int) models.Heartbeat {
	return models.Heartbeat{
		Time:   models.BeatTimeFromString(t0.Add(offset).Format("2006-01-02 15:04:05")),
		Status: status,
	}
}

func pingBeat(offset time.Duration, status int, ping float64) models.Heartbeat {
	hb := beat(offset, status)
	hb.Ping = &ping
	return hb
}

func checkInvariants(t *testing.T, incidents []Incident) {
	t.Helper()
	for i := 1; i < len(incidents); i++ {
		prev, cur := incidents[i-1], incidents[i]
		if cur.Start.Before(prev.Start) {
			t.Errorf("incidents out of order: %v before %v", cur.Start, prev.Start)
		}
		if prev.Start.Add(prev.Duration).After(cur.Start) {
			t.Errorf("incidents overlap: %v+%v past %v", prev.Start, prev.Duration, cur.Start)
		}
	}
	ongoing := 0
	for i, inc := range incidents {
		if inc.Duration < 0 {
			t.Errorf("incident %d has negative duration %v", i, inc.Duration)
		}
		if inc.Ongoing {
			ongoing++
			if i != len(incidents)-1 {
				t.Errorf("ongoing incident at index %d is not last", i)
			}
		}
	}
	if ongoing > 1 {
		t.Errorf("%d ongoing incidents, want at most 1", ongoing)
	}
}

// --------------- Detect ---------------

func TestDetect_Empty(t *testing.T) {
	a := Detect(nil, "UTC", t0)
	if len(a.Incidents) != 0 {
		t.Errorf("incidents = %v, want none", a.Incidents)
	}
	if len(a.Pings) != 0 {
		t.Errorf("pings = %v, want none", a.Pings)
	}
}

func TestDetect_DownUpDownUp(t *testing.T) {
	beats := []models.Heartbeat{
		beat(0, models.StatusDown),
		beat(1*time.Minute, models.StatusUp),
		beat(2*time.Minute, models.StatusDown),
		beat(3*time.Minute, models.StatusUp),
	}
	a := Detect(beats, "UTC", t0.Add(time.Hour))
	checkInvariants(t, a.Incidents)

	if len(a.Incidents) != 2 {
		t.Fatalf("got %d incidents, want 2", len(a.Incidents))
	}
	first, second := a.Incidents[0], a.Incidents[1]
	if !first.Start.Equal(t0) || first.Duration != time.Minute || first.Ongoing {
		t.Errorf("first incident = %+v", first)
	}
	if !second.Start.Equal(t0.Add(2*time.Minute)) || second.Duration != time.Minute || second.Ongoing {
		t.Errorf("second incident = %+v", second)
	}
}

func TestDetect_TrailingDownIsOngoing(t *testing.T) {
	now := t0.Add(30 * time.Minute)
	a := Detect([]models.Heartbeat{beat(0, models.StatusDown)}, "UTC", now)
	checkInvariants(t, a.Incidents)

	if len(a.Incidents) != 1 {
		t.Fatalf("got %d incidents, want 1", len(a.Incidents))
	}
	inc := a.Incidents[0]
	if !inc.Ongoing {
		t.Error("trailing down run should be ongoing")
	}
	if !inc.Start.Equal(t0) {
		t.Errorf("start = %v, want %v", inc.Start, t0)
	}
	if inc.Duration != 30*time.Minute {
		t.Errorf("duration = %v, want 30m", inc.Duration)
	}
}

func TestDetect_AllDown_SingleIncident(t *testing.T) {
	beats := []models.Heartbeat{
		beat(0, models.StatusDown),
		beat(time.Minute, models.StatusDown),
		beat(2*time.Minute, models.StatusDown),
	}
	a := Detect(beats, "UTC", t0.Add(10*time.Minute))
	checkInvariants(t, a.Incidents)

	if len(a.Incidents) != 1 {
		t.Fatalf("got %d incidents, want 1", len(a.Incidents))
	}
	if !a.Incidents[0].Start.Equal(t0) || !a.Incidents[0].Ongoing {
		t.Errorf("incident = %+v", a.Incidents[0])
	}
}

func TestDetect_AllUp_NoIncidents(t *testing.T) {
	beats := []models.Heartbeat{
		beat(0, models.StatusUp),
		beat(time.Minute, models.StatusPending),
		beat(2*time.Minute, models.StatusMaintenance),
	}
	a := Detect(beats, "UTC", t0.Add(time.Hour))
	if len(a.Incidents) != 0 {
		t.Errorf("non-down statuses produced incidents: %v", a.Incidents)
	}
}

func TestDetect_InputOrderNotTrusted(t *testing.T) {
	ordered := []models.Heartbeat{
		beat(0, models.StatusDown),
		beat(1*time.Minute, models.StatusUp),
		beat(2*time.Minute, models.StatusDown),
		beat(3*time.Minute, models.StatusUp),
	}
	shuffled := []models.Heartbeat{ordered[2], ordered[0], ordered[3], ordered[1]}

	now := t0.Add(time.Hour)
	if !reflect.DeepEqual(Detect(ordered, "UTC", now), Detect(shuffled, "UTC", now)) {
		t.Error("detection should be independent of input order")
	}
}

func TestDetect_UnparseableBeatDropped(t *testing.T) {
	bad := models.Heartbeat{Time: models.BeatTimeFromString("garbage"), Status: models.StatusDown}
	badPing := 99.0
	bad.Ping = &badPing

	beats := []models.Heartbeat{
		beat(0, models.StatusUp),
		bad,
		beat(time.Minute, models.StatusUp),
	}
	a := Detect(beats, "UTC", t0.Add(time.Hour))

	if len(a.Incidents) != 0 {
		t.Errorf("dropped beat produced incidents: %v", a.Incidents)
	}
	if len(a.Pings) != 0 {
		t.Errorf("dropped beat contributed ping samples: %v", a.Pings)
	}
}

func TestDetect_EpochTimestamps(t *testing.T) {
	beats := []models.Heartbeat{
		{Time: models.BeatTimeFromEpoch(float64(t0.Unix())), Status: models.StatusDown},
		{Time: models.BeatTimeFromEpoch(float64(t0.Add(time.Minute).Unix())), Status: models.StatusUp},
	}
	a := Detect(beats, "UTC", t0.Add(time.Hour))
	if len(a.Incidents) != 1 || a.Incidents[0].Duration != time.Minute {
		t.Errorf("incidents = %+v, want one of 1m", a.Incidents)
	}
}

func TestDetect_PingsIndependentOfStatus(t *testing.T) {
	beats := []models.Heartbeat{
		pingBeat(0, models.StatusUp, 10),
		pingBeat(time.Minute, models.StatusDown, 20),
		beat(2*time.Minute, models.StatusUp), // no ping, no sample
		pingBeat(3*time.Minute, models.StatusUp, 30),
	}
	a := Detect(beats, "UTC", t0.Add(time.Hour))

	if len(a.Pings) != 3 {
		t.Fatalf("got %d ping samples, want 3", len(a.Pings))
	}
	want := []float64{10, 20, 30}
	for i, p := range a.Pings {
		if p.Ping != want[i] {
			t.Errorf("ping[%d] = %v, want %v", i, p.Ping, want[i])
		}
		if i > 0 && a.Pings[i].Time.Before(a.Pings[i-1].Time) {
			t.Error("ping samples out of chronological order")
		}
	}
}

func TestDetect_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	beats := []models.Heartbeat{
		beat(0, models.StatusDown),
		beat(time.Minute, models.StatusUp),
	}
	now := t0.Add(time.Hour)
	got := Detect(beats, "Not/AZone", now)
	want := Detect(beats, "UTC", now)
	if !reflect.DeepEqual(got, want) {
		t.Error("unknown timezone should behave exactly like UTC")
	}
}

func TestDetect_TimezoneLocalizesButKeepsInstants(t *testing.T) {
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	beats := []models.Heartbeat{
		beat(0, models.StatusDown),
		beat(time.Minute, models.StatusUp),
	}
	a := Detect(beats, "America/New_York", t0.Add(time.Hour))

	if len(a.Incidents) != 1 {
		t.Fatalf("got %d incidents, want 1", len(a.Incidents))
	}
	inc := a.Incidents[0]
	if inc.Start.Location().String() != "America/New_York" {
		t.Errorf("start location = %v", inc.Start.Location())
	}
	if !inc.Start.Equal(t0) {
		t.Error("localization must not shift the incident instant")
	}
	if inc.Duration != time.Minute {
		t.Errorf("duration = %v, want 1m", inc.Duration)
	}
}

func TestDetect_Idempotent(t *testing.T) {
	beats := []models.Heartbeat{
		pingBeat(0, models.StatusUp, 12),
		beat(time.Minute, models.StatusDown),
		beat(2*time.Minute, models.StatusUp),
		beat(3*time.Minute, models.StatusDown),
	}
	now := t0.Add(time.Hour)

	first := Detect(beats, "UTC", now)
	second := Detect(beats, "UTC", now)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated detection with fixed input and now should be identical")
	}
	if !reflect.DeepEqual(Summarize(first, now), Summarize(second, now)) {
		t.Error("repeated summaries should be identical")
	}
}
