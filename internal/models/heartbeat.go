package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Heartbeat status values as used by Uptime Kuma
const (
	StatusDown        = 0
	StatusUp          = 1
	StatusPending     = 2
	StatusMaintenance = 3
)

// Heartbeat represents a single check result as returned by the
// Uptime Kuma API. The timestamp encoding is not uniform across
// server versions, so Time is kept in its wire form until it is
// resolved into a concrete instant.
type Heartbeat struct {
	Time      BeatTime `json:"time"`
	Status    int      `json:"status"` // 0=down, anything else counts as up
	Ping      *float64 `json:"ping"`   // milliseconds, nil when the check produced no measurement
	Msg       string   `json:"msg"`
	Important bool     `json:"important"`
}

// Down reports whether this heartbeat recorded the monitor as down.
func (h Heartbeat) Down() bool {
	return h.Status == StatusDown
}

// beatTimeLayout is the local-naive timestamp format used by older
// Uptime Kuma servers. The value is always UTC on the wire.
const beatTimeLayout = "2006-01-02 15:04:05"

type beatTimeKind int

const (
	beatTimeInvalid beatTimeKind = iota
	beatTimeString
	beatTimeEpoch
)

// BeatTime is a heartbeat timestamp as it appears on the wire: either
// a "YYYY-MM-DD HH:MM:SS[.fraction]" string interpreted as UTC, or a
// numeric UTC epoch seconds value. Resolve it once with In; the union
// is not meant to travel past the normalization boundary.
type BeatTime struct {
	kind  beatTimeKind
	str   string
	epoch float64
}

// BeatTimeFromString builds a BeatTime from the string wire form.
func BeatTimeFromString(s string) BeatTime {
	return BeatTime{kind: beatTimeString, str: s}
}

// BeatTimeFromEpoch builds a BeatTime from UTC epoch seconds.
func BeatTimeFromEpoch(sec float64) BeatTime {
	return BeatTime{kind: beatTimeEpoch, epoch: sec}
}

// UnmarshalJSON accepts either encoding. A value of any other JSON
// type marks the BeatTime invalid instead of failing the batch; the
// owning heartbeat is dropped during normalization.
func (bt *BeatTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*bt = BeatTimeFromString(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*bt = BeatTimeFromEpoch(f)
		return nil
	}

	*bt = BeatTime{}
	return nil
}

// In resolves the wire value into an instant localized to loc. The
// second return is false when the value cannot be parsed.
func (bt BeatTime) In(loc *time.Location) (time.Time, bool) {
	switch bt.kind {
	case beatTimeString:
		s := bt.str
		// Fractional seconds are discarded
		if i := strings.IndexByte(s, '.'); i >= 0 {
			s = s[:i]
		}
		t, err := time.ParseInLocation(beatTimeLayout, s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t.In(loc), true

	case beatTimeEpoch:
		sec, frac := math.Modf(bt.epoch)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).In(loc), true
	}

	return time.Time{}, false
}
