package dataset

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Index holds the per-day and per-city lookups panels use to relate
// entities across views. It is built once per dataset and treated as
// read-only afterwards.
type Index struct {
	CityToDays       map[string]map[DayKey]struct{}
	DayToCities      map[DayKey]map[string]struct{}
	DayToStates      map[DayKey]map[string]struct{}
	DayToOccupations map[DayKey]map[string]struct{}
	DayToMerchants   map[DayKey]map[string]struct{}
}

// NewIndex returns an empty index
func NewIndex() *Index {
	return &Index{
		CityToDays:       make(map[string]map[DayKey]struct{}),
		DayToCities:      make(map[DayKey]map[string]struct{}),
		DayToStates:      make(map[DayKey]map[string]struct{}),
		DayToOccupations: make(map[DayKey]map[string]struct{}),
		DayToMerchants:   make(map[DayKey]map[string]struct{}),
	}
}

// BuildIndex computes every lookup from records. Empty names are skipped.
func BuildIndex(records []Record) *Index {
	idx := NewIndex()
	for _, r := range records {
		day := r.Day()
		if city := r.CityName(); city != "" {
			addDay(idx.CityToDays, city, day)
			addName(idx.DayToCities, day, city)
		}
		if state := r.StateValue(); state != "" {
			addName(idx.DayToStates, day, state)
		}
		if r.Occupation != "" {
			addName(idx.DayToOccupations, day, r.Occupation)
		}
		if r.Merchant != "" {
			addName(idx.DayToMerchants, day, r.Merchant)
		}
	}
	return idx
}

func addDay(m map[string]map[DayKey]struct{}, name string, day DayKey) {
	set, ok := m[name]
	if !ok {
		set = make(map[DayKey]struct{})
		m[name] = set
	}
	set[day] = struct{}{}
}

func addName(m map[DayKey]map[string]struct{}, day DayKey, name string) {
	set, ok := m[day]
	if !ok {
		set = make(map[string]struct{})
		m[day] = set
	}
	set[name] = struct{}{}
}

// DaysForCity returns the days the city is active, ascending
func (idx *Index) DaysForCity(city string) []DayKey {
	if idx == nil {
		return nil
	}
	days := make([]DayKey, 0, len(idx.CityToDays[city]))
	for d := range idx.CityToDays[city] {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// CitiesOn returns the cities active on day, sorted
func (idx *Index) CitiesOn(day DayKey) []string {
	if idx == nil {
		return nil
	}
	return sortedNames(idx.DayToCities[day])
}

// StatesOn returns the states active on day, sorted
func (idx *Index) StatesOn(day DayKey) []string {
	if idx == nil {
		return nil
	}
	return sortedNames(idx.DayToStates[day])
}

// Days returns every day present in the index, ascending
func (idx *Index) Days() []DayKey {
	if idx == nil {
		return nil
	}
	days := make([]DayKey, 0, len(idx.DayToCities))
	for d := range idx.DayToCities {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// Empty reports whether the index holds no days
func (idx *Index) Empty() bool {
	return idx == nil || (len(idx.DayToCities) == 0 && len(idx.DayToStates) == 0 &&
		len(idx.DayToOccupations) == 0 && len(idx.DayToMerchants) == 0)
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type indexJSON struct {
	CityToDays       map[string][]int64  `json:"cityToDays"`
	DayToCities      map[string][]string `json:"dayToCities"`
	DayToStates      map[string][]string `json:"dayToStates"`
	DayToOccupations map[string][]string `json:"dayToOccupations"`
	DayToMerchants   map[string][]string `json:"dayToMerchants"`
}

// MarshalJSON encodes sets as sorted arrays and day keys as decimal
// millisecond strings, the shape browser panels build their maps from
func (idx *Index) MarshalJSON() ([]byte, error) {
	if idx == nil {
		return []byte("null"), nil
	}
	out := indexJSON{
		CityToDays:       make(map[string][]int64, len(idx.CityToDays)),
		DayToCities:      encodeDayMap(idx.DayToCities),
		DayToStates:      encodeDayMap(idx.DayToStates),
		DayToOccupations: encodeDayMap(idx.DayToOccupations),
		DayToMerchants:   encodeDayMap(idx.DayToMerchants),
	}
	for city := range idx.CityToDays {
		days := idx.DaysForCity(city)
		ms := make([]int64, len(days))
		for i, d := range days {
			ms[i] = int64(d)
		}
		out.CityToDays[city] = ms
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the shape produced by MarshalJSON
func (idx *Index) UnmarshalJSON(data []byte) error {
	var in indexJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*idx = *NewIndex()
	for city, days := range in.CityToDays {
		for _, ms := range days {
			addDay(idx.CityToDays, city, DayKey(ms))
		}
	}
	for _, pair := range []struct {
		src map[string][]string
		dst map[DayKey]map[string]struct{}
	}{
		{in.DayToCities, idx.DayToCities},
		{in.DayToStates, idx.DayToStates},
		{in.DayToOccupations, idx.DayToOccupations},
		{in.DayToMerchants, idx.DayToMerchants},
	} {
		for key, names := range pair.src {
			ms, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return err
			}
			for _, n := range names {
				addName(pair.dst, DayKey(ms), n)
			}
		}
	}
	return nil
}

func encodeDayMap(m map[DayKey]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(m))
	for day, set := range m {
		out[strconv.FormatInt(int64(day), 10)] = sortedNames(set)
	}
	return out
}
