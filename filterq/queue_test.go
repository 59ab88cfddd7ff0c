package filterq

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/errors"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.Add(9 * time.Hour)
}

func records() []dataset.Record {
	return []dataset.Record{
		{ID: 1, City: "Springfield", State: "IL", Occupation: "Teacher", Merchant: "Acme", Date: at("2023-11-14")},
		{ID: 2, Location: "Columbus", StateName: "OH", Occupation: "Nurse", Merchant: "Bolt", Date: at("2023-11-14")},
		{ID: 3, City: "Springfield", State: "IL", Occupation: "Teacher", Merchant: "Acme", Date: at("2023-11-15")},
		{ID: 4, City: "Reno", State: "NV", Occupation: "Dealer", Merchant: "Casino", Date: at("2023-11-16")},
		{ID: 5, City: " new york ", State: "NY", Occupation: "Broker", Merchant: "Deli", Date: at("2023-11-16")},
		{ID: 1, City: "Springfield", State: "IL", Occupation: "Teacher", Merchant: "Acme", Date: at("2023-11-14")},
	}
}

func TestUpsertIdempotent(t *testing.T) {
	q := New()

	assert.True(t, q.Upsert(NewDescriptor(TypeCity, "Reno")))
	assert.False(t, q.Upsert(NewDescriptor(TypeCity, "Reno")))
	assert.Equal(t, 1, q.Len())

	// same value, different type is a distinct entry
	assert.True(t, q.Upsert(NewDescriptor(TypeState, "Reno")))
	assert.Equal(t, 2, q.Len())

	items := q.Items()
	assert.Equal(t, "City: Reno", items[0].Label)
	assert.False(t, items[0].CreatedAt.IsZero())
}

func TestUpsertKeepsLabelAndTimestamp(t *testing.T) {
	q := New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	q.Upsert(Descriptor{Type: TypeMerchant, Value: "Acme", Label: "Acme Inc", CreatedAt: created})

	item := q.Items()[0]
	assert.Equal(t, "Acme Inc", item.Label)
	assert.Equal(t, created, item.CreatedAt)
}

func TestRemoveAt(t *testing.T) {
	q := New()
	q.Upsert(NewDescriptor(TypeCity, "A"))
	q.Upsert(NewDescriptor(TypeCity, "B"))
	q.Upsert(NewDescriptor(TypeCity, "C"))

	assert.False(t, q.RemoveAt(-1))
	assert.False(t, q.RemoveAt(3))
	assert.Equal(t, 3, q.Len())

	assert.True(t, q.RemoveAt(1))
	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Value)
	assert.Equal(t, "C", items[1].Value)
}

func TestItemsReturnsCopy(t *testing.T) {
	q := New()
	q.Upsert(NewDescriptor(TypeCity, "A"))
	items := q.Items()
	items[0].Value = "mutated"
	assert.Equal(t, "A", q.Items()[0].Value)
}

func TestComposeOrSemantics(t *testing.T) {
	all := records()

	tests := []struct {
		name    string
		entries []Descriptor
		wantIDs []int64
	}{
		{"empty shows all", nil, []int64{1, 2, 3, 4, 5}},
		{"single city", []Descriptor{NewDescriptor(TypeCity, "Springfield")}, []int64{1, 3}},
		{"two cities broaden", []Descriptor{NewDescriptor(TypeCity, "Springfield"), NewDescriptor(TypeCity, "Reno")}, []int64{1, 3, 4}},
		{"location alias", []Descriptor{NewDescriptor(TypeCity, "Columbus")}, []int64{2}},
		{"state alias", []Descriptor{NewDescriptor(TypeState, "OH")}, []int64{2}},
		{"occupation", []Descriptor{NewDescriptor(TypeOccupation, "Teacher")}, []int64{1, 3}},
		{"merchant", []Descriptor{NewDescriptor(TypeMerchant, "Casino")}, []int64{4}},
		{"date", []Descriptor{NewDescriptor(TypeDate, "2023-11-16")}, []int64{4, 5}},
		{"unparsable date matches nothing", []Descriptor{NewDescriptor(TypeDate, "soon")}, []int64{}},
		{"mixed types union", []Descriptor{NewDescriptor(TypeMerchant, "Bolt"), NewDescriptor(TypeDate, "2023-11-15")}, []int64{2, 3}},
		{"case fallback for city", []Descriptor{NewDescriptor(TypeCity, "reno")}, []int64{4}},
		{"trim fallback for city", []Descriptor{NewDescriptor(TypeCity, "New York")}, []int64{5}},
		{"no fallback for state", []Descriptor{NewDescriptor(TypeState, "nv")}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New()
			for _, d := range tt.entries {
				q.Upsert(d)
			}
			got := q.Apply(all)
			ids := make([]int64, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestComposeWithoutDatasetIsExact(t *testing.T) {
	q := New()
	q.Upsert(NewDescriptor(TypeCity, "reno"))

	pred := q.Compose()
	assert.False(t, pred(dataset.Record{City: "Reno"}))
	assert.True(t, pred(dataset.Record{City: "reno"}))
}

func TestExactMatchWinsOverFallback(t *testing.T) {
	recs := []dataset.Record{
		{ID: 1, City: "reno"},
		{ID: 2, City: "Reno"},
	}
	q := New()
	q.Upsert(NewDescriptor(TypeCity, "reno"))

	got := q.Apply(recs)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

// A non-empty queue returns only records matching some entry, and never
// fewer than any single entry would match alone.
func TestComposeSubsetAndMonotonic(t *testing.T) {
	all := records()
	entries := []Descriptor{
		NewDescriptor(TypeCity, "Springfield"),
		NewDescriptor(TypeState, "NV"),
		NewDescriptor(TypeMerchant, "Bolt"),
		NewDescriptor(TypeDate, "2023-11-16"),
		NewDescriptor(TypeOccupation, "Nobody"),
	}

	// every non-empty subset of entries
	for mask := 1; mask < 1<<len(entries); mask++ {
		q := New()
		var chosen []Descriptor
		for i, d := range entries {
			if mask&(1<<i) != 0 {
				q.Upsert(d)
				chosen = append(chosen, d)
			}
		}

		got := q.Apply(all)
		gotKeys := make(map[dataset.Key]bool)
		for _, r := range got {
			gotKeys[r.Key()] = true
			matched := false
			for _, d := range chosen {
				if d.resolve(all)(r) {
					matched = true
					break
				}
			}
			assert.True(t, matched, "mask %b: record %d matches no entry", mask, r.ID)
		}

		for _, d := range chosen {
			single := New()
			single.Upsert(d)
			for _, r := range single.Apply(all) {
				assert.True(t, gotKeys[r.Key()], "mask %b: lost record %d of %s", mask, r.ID, d.Label)
			}
		}
	}
}

func TestClearShowsAll(t *testing.T) {
	all := records()
	q := New()
	q.Upsert(NewDescriptor(TypeCity, "Reno"))
	q.Upsert(NewDescriptor(TypeState, "IL"))
	q.Clear()

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, ModeAll, q.Mode())
	assert.Equal(t, Filter(all, MatchAll), q.Apply(all))
	for _, r := range all {
		assert.True(t, q.Compose()(r))
	}
}

func TestFilterDeduplicates(t *testing.T) {
	got := Filter(records(), MatchAll)
	assert.Len(t, got, 5)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Len(t, Filter(records(), nil), 5)
}

func TestModeCallbacks(t *testing.T) {
	q := New()
	var modes []Mode
	var changes int
	q.OnModeChange(func(m Mode) { modes = append(modes, m) })
	q.OnChange(func([]Descriptor) { changes++ })

	q.Upsert(NewDescriptor(TypeCity, "A"))
	q.Upsert(NewDescriptor(TypeCity, "B"))
	q.Upsert(NewDescriptor(TypeCity, "B"))
	q.RemoveAt(0)
	q.RemoveAt(0)
	q.Clear()
	q.Upsert(NewDescriptor(TypeCity, "C"))
	q.Clear()

	assert.Equal(t, []Mode{ModeFiltered, ModeAll, ModeFiltered, ModeAll}, modes)
	assert.Equal(t, 6, changes)
}

func TestCallbackMayReadQueue(t *testing.T) {
	q := New()
	var seen int
	q.OnChange(func([]Descriptor) { seen = q.Len() })
	q.Upsert(NewDescriptor(TypeCity, "A"))
	assert.Equal(t, 1, seen)
}

func TestCallbackRegisteredDuringChange(t *testing.T) {
	q := New()
	var first, late int
	q.OnChange(func([]Descriptor) {
		first++
		if first == 1 {
			q.OnChange(func([]Descriptor) { late++ })
		}
	})

	q.Upsert(NewDescriptor(TypeCity, "A"))
	assert.Equal(t, 0, late)

	q.Upsert(NewDescriptor(TypeCity, "B"))
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, late)
}

func TestConcurrentUpsert(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Upsert(NewDescriptor(TypeCity, "Reno"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, q.Len())
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"city", "state", "occupation", "merchant", "date"} {
		got, err := ParseType(s)
		require.NoError(t, err)
		assert.Equal(t, Type(s), got)
	}
	_, err := ParseType("zip")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
