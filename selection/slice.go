package selection

import "strings"

// Slice is a bit set naming parts of State. Subscribers declare the slices
// they read; a mutation reports the slices it changed.
type Slice uint32

const (
	SliceHoveredDay Slice = 1 << iota
	SliceHoveredCity
	SliceHoveredFlowNode
	SliceHoveredFlowLink
	SliceSelectedDays
	SliceSelectedCities
	SliceSelectedFlowNodes
	SliceHighlightMap
	SliceHighlightTime
	SliceHighlightFlow
	SliceIndex
	SliceLinkMode
)

// Composite slices
const (
	SliceHover     = SliceHoveredDay | SliceHoveredCity | SliceHoveredFlowNode | SliceHoveredFlowLink
	SliceSelection = SliceSelectedDays | SliceSelectedCities | SliceSelectedFlowNodes
	SliceHighlight = SliceHighlightMap | SliceHighlightTime | SliceHighlightFlow
	SliceAll       = SliceHover | SliceSelection | SliceHighlight | SliceIndex | SliceLinkMode
)

var sliceNames = []struct {
	s    Slice
	name string
}{
	{SliceHoveredDay, "hovered_day"},
	{SliceHoveredCity, "hovered_city"},
	{SliceHoveredFlowNode, "hovered_flow_node"},
	{SliceHoveredFlowLink, "hovered_flow_link"},
	{SliceSelectedDays, "selected_days"},
	{SliceSelectedCities, "selected_cities"},
	{SliceSelectedFlowNodes, "selected_flow_nodes"},
	{SliceHighlightMap, "highlight_map"},
	{SliceHighlightTime, "highlight_time"},
	{SliceHighlightFlow, "highlight_flow"},
	{SliceIndex, "index"},
	{SliceLinkMode, "link_mode"},
}

// Intersects reports whether s and other share any slice
func (s Slice) Intersects(other Slice) bool {
	return s&other != 0
}

func (s Slice) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, n := range sliceNames {
		if s&n.s != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

func highlightSlice(p Panel) Slice {
	switch p {
	case PanelMap:
		return SliceHighlightMap
	case PanelTime:
		return SliceHighlightTime
	case PanelFlow:
		return SliceHighlightFlow
	}
	return 0
}
