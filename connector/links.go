package connector

import (
	"sort"

	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/selection"
)

// FlowLinks answers which cities a flow diagram node is connected to. The
// flow panel knows its own links; the coordinator only asks.
type FlowLinks interface {
	CitiesOf(node selection.FlowNode) []string
}

// StaticFlowLinks is a FlowLinks reported by the flow panel
type StaticFlowLinks map[selection.FlowNode][]string

// CitiesOf implements FlowLinks
func (s StaticFlowLinks) CitiesOf(node selection.FlowNode) []string {
	return s[node]
}

// DatasetFlowLinks derives node-to-city links from the records: a node is
// connected to every city that shares a record with it
type DatasetFlowLinks struct {
	cities map[selection.FlowNode][]string
}

// NewDatasetFlowLinks indexes d
func NewDatasetFlowLinks(d *dataset.Dataset) *DatasetFlowLinks {
	sets := make(map[selection.FlowNode]map[string]struct{})
	add := func(layer int, name, city string) {
		if name == "" {
			return
		}
		node := selection.FlowNode{Name: name, Layer: layer}
		set, ok := sets[node]
		if !ok {
			set = make(map[string]struct{})
			sets[node] = set
		}
		set[city] = struct{}{}
	}

	for _, r := range d.Records() {
		city := r.CityName()
		if city == "" {
			continue
		}
		add(selection.LayerState, r.StateValue(), city)
		add(selection.LayerCity, city, city)
		add(selection.LayerOccupation, r.Occupation, city)
		add(selection.LayerMerchant, r.Merchant, city)
	}

	out := &DatasetFlowLinks{cities: make(map[selection.FlowNode][]string, len(sets))}
	for node, set := range sets {
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		out.cities[node] = names
	}
	return out
}

// CitiesOf implements FlowLinks
func (l *DatasetFlowLinks) CitiesOf(node selection.FlowNode) []string {
	if l == nil {
		return nil
	}
	return l.cities[node]
}

// layered consults each provider in turn and returns the first non-empty
// answer
type layered []FlowLinks

func (ls layered) CitiesOf(node selection.FlowNode) []string {
	for _, l := range ls {
		if l == nil {
			continue
		}
		if cities := l.CitiesOf(node); len(cities) > 0 {
			return cities
		}
	}
	return nil
}
