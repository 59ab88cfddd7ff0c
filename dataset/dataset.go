package dataset

// Dataset is an immutable set of records with its index
type Dataset struct {
	records   []Record
	index     *Index
	cityState map[string]string
}

// New builds a dataset and its index from records
func New(records []Record) *Dataset {
	owned := make([]Record, len(records))
	copy(owned, records)

	cityState := make(map[string]string)
	for _, r := range owned {
		city := r.CityName()
		if city == "" {
			continue
		}
		if _, seen := cityState[city]; seen {
			continue
		}
		if state := r.StateValue(); state != "" {
			cityState[city] = state
		}
	}

	return &Dataset{
		records:   owned,
		index:     BuildIndex(owned),
		cityState: cityState,
	}
}

// Records returns a copy of the records in load order
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Index returns the precomputed index
func (d *Dataset) Index() *Index {
	if d == nil {
		return nil
	}
	return d.index
}

// StateOfCity returns the state of the first record for city that carries one
func (d *Dataset) StateOfCity(city string) (string, bool) {
	if d == nil {
		return "", false
	}
	state, ok := d.cityState[city]
	return state, ok
}
