// Package filterq is the ordered filter queue a node-queue panel keeps.
// Entries are unique by (type, value) and compose with OR: a record is shown
// when it matches any entry, and an empty queue shows everything.
package filterq

import (
	"strings"
	"time"

	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/errors"
)

// Type is the record attribute a descriptor matches on
type Type string

const (
	TypeCity       Type = "city"
	TypeState      Type = "state"
	TypeOccupation Type = "occupation"
	TypeMerchant   Type = "merchant"
	TypeDate       Type = "date"
)

// ParseType validates a wire value
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeCity, TypeState, TypeOccupation, TypeMerchant, TypeDate:
		return t, nil
	}
	return "", errors.Wrapf(errors.ErrInvalidRequest, "unknown filter type %q", s)
}

// Descriptor is one queued filter
type Descriptor struct {
	Type      Type      `json:"type"`
	Value     string    `json:"value"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewDescriptor builds a descriptor with a default label
func NewDescriptor(t Type, value string) Descriptor {
	return Descriptor{Type: t, Value: value, Label: defaultLabel(t, value)}
}

func defaultLabel(t Type, value string) string {
	if t == "" {
		return value
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:]) + ": " + value
}

// identity is what makes two descriptors the same queue entry
type identity struct {
	t Type
	v string
}

func (d Descriptor) identity() identity {
	return identity{t: d.Type, v: d.Value}
}

// Predicate selects records
type Predicate func(dataset.Record) bool

// MatchAll accepts every record
func MatchAll(dataset.Record) bool { return true }

func matchNone(dataset.Record) bool { return false }

// exact returns the case-sensitive matcher for d
func (d Descriptor) exact() Predicate {
	v := d.Value
	switch d.Type {
	case TypeCity:
		return func(r dataset.Record) bool { return r.City == v || r.Location == v }
	case TypeState:
		return func(r dataset.Record) bool { return r.State == v || r.StateName == v }
	case TypeOccupation:
		return func(r dataset.Record) bool { return r.Occupation == v }
	case TypeMerchant:
		return func(r dataset.Record) bool { return r.Merchant == v }
	case TypeDate:
		day, err := dataset.ParseDay(v)
		if err != nil {
			log().Debugw("Date filter value does not parse", "value", v, "error", err)
			return matchNone
		}
		return func(r dataset.Record) bool { return r.Day() == day }
	}
	return matchNone
}

// folded returns the case-insensitive, whitespace-trimmed city matcher.
// Only free-text city names get one.
func (d Descriptor) folded() (Predicate, bool) {
	if d.Type != TypeCity {
		return nil, false
	}
	want := strings.TrimSpace(d.Value)
	return func(r dataset.Record) bool {
		return strings.EqualFold(strings.TrimSpace(r.City), want) ||
			strings.EqualFold(strings.TrimSpace(r.Location), want)
	}, true
}

// resolve picks the exact matcher, or the folded one when the exact matcher
// selects none of records
func (d Descriptor) resolve(records []dataset.Record) Predicate {
	exact := d.exact()
	if records == nil {
		return exact
	}
	for _, r := range records {
		if exact(r) {
			return exact
		}
	}
	if folded, ok := d.folded(); ok {
		return folded
	}
	return exact
}

// or unions predicates
func or(preds []Predicate) Predicate {
	if len(preds) == 0 {
		return MatchAll
	}
	return func(r dataset.Record) bool {
		for _, p := range preds {
			if p(r) {
				return true
			}
		}
		return false
	}
}

// Filter returns the records pred accepts, dropping structural duplicates
// and keeping first-seen order
func Filter(records []dataset.Record, pred Predicate) []dataset.Record {
	if pred == nil {
		pred = MatchAll
	}
	seen := make(map[dataset.Key]struct{}, len(records))
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if !pred(r) {
			continue
		}
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
