// Package dataset holds the transaction records every panel renders, the
// calendar-day key used to join them across panels, and the precomputed
// day/city/state indices the coordinator reads.
package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/teranos/crossview/errors"
)

const isoDay = "2006-01-02"

// DayKey is a calendar day: unix milliseconds of UTC midnight.
type DayKey int64

// DayOf truncates t to its UTC calendar day
func DayOf(t time.Time) DayKey {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return DayKey(midnight.UnixMilli())
}

// Time returns UTC midnight of the day
func (d DayKey) Time() time.Time {
	return time.UnixMilli(int64(d)).UTC()
}

// ISO formats the day as YYYY-MM-DD
func (d DayKey) ISO() string {
	return d.Time().Format(isoDay)
}

func (d DayKey) String() string {
	return d.ISO()
}

// ParseDay accepts YYYY-MM-DD, an RFC 3339 timestamp, or integer unix
// milliseconds, and returns the containing day
func ParseDay(s string) (DayKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty date")
	}
	if t, err := time.Parse(isoDay, s); err == nil {
		return DayOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DayOf(t), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return DayOf(time.UnixMilli(ms)), nil
	}
	return 0, errors.Newf("unrecognized date %q", s)
}

// Record is one transaction row. City/Location and State/StateName are
// alternative column names from different exports; readers go through
// CityName and StateValue.
type Record struct {
	ID         int64     `json:"id,omitempty"`
	City       string    `json:"city,omitempty"`
	Location   string    `json:"location,omitempty"`
	State      string    `json:"state,omitempty"`
	StateName  string    `json:"state_name,omitempty"`
	Occupation string    `json:"occupation,omitempty"`
	Merchant   string    `json:"merchant,omitempty"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
}

// CityName returns City, falling back to Location
func (r Record) CityName() string {
	if r.City != "" {
		return r.City
	}
	return r.Location
}

// StateValue returns State, falling back to StateName
func (r Record) StateValue() string {
	if r.State != "" {
		return r.State
	}
	return r.StateName
}

// Day returns the record's calendar day
func (r Record) Day() DayKey {
	return DayOf(r.Date)
}

// Key is a comparable form of every field of a Record. Two records are
// structurally equal iff their keys are equal.
type Key struct {
	ID         int64
	City       string
	Location   string
	State      string
	StateName  string
	Occupation string
	Merchant   string
	Amount     float64
	DateNanos  int64
}

// Key returns the record's structural identity
func (r Record) Key() Key {
	return Key{
		ID:         r.ID,
		City:       r.City,
		Location:   r.Location,
		State:      r.State,
		StateName:  r.StateName,
		Occupation: r.Occupation,
		Merchant:   r.Merchant,
		Amount:     r.Amount,
		DateNanos:  r.Date.UnixNano(),
	}
}
