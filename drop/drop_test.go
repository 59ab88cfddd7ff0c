package drop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/crossview/anchor"
	"github.com/teranos/crossview/errors"
	"github.com/teranos/crossview/filterq"
	"github.com/teranos/crossview/internal/util"
	"github.com/teranos/crossview/selection"
)

var panelBounds = anchor.Rect{X: 100, Y: 100, Width: 400, Height: 300}

func TestDecode(t *testing.T) {
	p, err := Decode([]byte(`{"kind":"sankeyNode","name":"New York","layer":0,"targetZoneId":"map","action":"dragend"}`))
	require.NoError(t, err)
	assert.Equal(t, KindSankeyNode, p.Kind)
	assert.Equal(t, "New York", p.Name)
	require.NotNil(t, p.Layer)
	assert.Equal(t, 0, *p.Layer)
	assert.Equal(t, ActionDragEnd, p.Action)
	assert.Equal(t, "map", p.TargetZoneID)

	for _, raw := range []string{"", "{", `{"kind":3}`, "null!"} {
		_, err := Decode([]byte(raw))
		assert.True(t, errors.IsMalformedPayload(err), "input %q", raw)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		ok      bool
	}{
		{"geo circle", Payload{Kind: KindGeoCircle, City: "Reno"}, true},
		{"geo circle blank city", Payload{Kind: KindGeoCircle, City: "  "}, false},
		{"sankey node", Payload{Kind: KindSankeyNode, Name: "NV", Layer: util.Ptr(0)}, true},
		{"sankey node without layer", Payload{Kind: KindSankeyNode, Name: "NV"}, false},
		{"sankey node bad layer", Payload{Kind: KindSankeyNode, Name: "NV", Layer: util.Ptr(9)}, false},
		{"sankey node without name", Payload{Kind: KindSankeyNode, Layer: util.Ptr(1)}, false},
		{"time bar", Payload{Kind: KindTimeBar, Date: "2023-11-14"}, true},
		{"time bar bad date", Payload{Kind: KindTimeBar, Date: "tuesday"}, false},
		{"no kind", Payload{City: "Reno"}, false},
		{"unknown kind", Payload{Kind: "pieSlice"}, false},
		{"unknown action", Payload{Kind: KindGeoCircle, City: "Reno", Action: "throw"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsMalformedPayload(err))
			}
		})
	}
}

func TestParseZone(t *testing.T) {
	z, err := ParseZone(" radial ")
	require.NoError(t, err)
	assert.Equal(t, anchor.ZoneRadial, z)

	_, err = ParseZone("sidebar")
	assert.True(t, errors.Is(err, errors.ErrUnknownZone))
}

type change struct {
	panel selection.Panel
	field selection.HighlightField
	value string
}

func flatten(changes []selection.HighlightChange) []change {
	out := make([]change, 0, len(changes))
	for _, c := range changes {
		v := ""
		if c.Value != nil {
			v = *c.Value
		}
		out = append(out, change{c.Panel, c.Field, v})
	}
	return out
}

func clears(panels ...selection.Panel) []change {
	var out []change
	for _, p := range panels {
		out = append(out, change{p, selection.FieldState, ""}, change{p, selection.FieldCity, ""})
	}
	return out
}

func TestClassifyHighlightDispatch(t *testing.T) {
	geo := Payload{Kind: KindGeoCircle, City: "Reno", State: "NV"}
	geoNoState := Payload{Kind: KindGeoCircle, City: "Reno"}
	stateNode := Payload{Kind: KindSankeyNode, Name: "NV", Layer: util.Ptr(0)}
	cityNode := Payload{Kind: KindSankeyNode, Name: "Reno", Layer: util.Ptr(1)}
	jobNode := Payload{Kind: KindSankeyNode, Name: "Dealer", Layer: util.Ptr(2)}

	tests := []struct {
		name    string
		payload Payload
		zone    anchor.Zone
		want    []change
	}{
		{"map state node", stateNode, anchor.ZoneMap,
			append(clears(selection.PanelTime, selection.PanelFlow), change{selection.PanelMap, selection.FieldState, "NV"})},
		{"map city node", cityNode, anchor.ZoneMap,
			append(clears(selection.PanelTime, selection.PanelFlow), change{selection.PanelMap, selection.FieldCity, "Reno"})},
		{"time geo circle", geo, anchor.ZoneTime,
			append(clears(selection.PanelMap, selection.PanelFlow), change{selection.PanelTime, selection.FieldCity, "Reno"})},
		{"time state node", stateNode, anchor.ZoneTime,
			append(clears(selection.PanelMap, selection.PanelFlow), change{selection.PanelTime, selection.FieldState, "NV"})},
		{"time city node", cityNode, anchor.ZoneTime,
			append(clears(selection.PanelMap, selection.PanelFlow), change{selection.PanelTime, selection.FieldCity, "Reno"})},
		{"flow geo circle sets both", geo, anchor.ZoneFlow,
			append(clears(selection.PanelMap, selection.PanelTime),
				change{selection.PanelFlow, selection.FieldState, "NV"},
				change{selection.PanelFlow, selection.FieldCity, "Reno"})},
		{"flow geo circle without state", geoNoState, anchor.ZoneFlow,
			append(clears(selection.PanelMap, selection.PanelTime), change{selection.PanelFlow, selection.FieldCity, "Reno"})},
		{"flow state node", stateNode, anchor.ZoneFlow,
			append(clears(selection.PanelMap, selection.PanelTime), change{selection.PanelFlow, selection.FieldState, "NV"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Classify(tt.payload, tt.zone, panelBounds)
			require.Equal(t, OutcomeHighlight, out.Kind)
			assert.Nil(t, out.Filter)
			assert.Equal(t, tt.want, flatten(out.Highlights))
		})
	}

	// the destination's own fields are never cleared
	out := Classify(cityNode, anchor.ZoneMap, panelBounds)
	for _, c := range out.Highlights {
		if c.Panel == selection.PanelMap {
			assert.NotNil(t, c.Value)
		}
	}

	t.Run("unsupported combinations are no-ops", func(t *testing.T) {
		for _, tc := range []struct {
			p Payload
			z anchor.Zone
		}{
			{geo, anchor.ZoneMap},
			{jobNode, anchor.ZoneMap},
			{jobNode, anchor.ZoneFlow},
			{Payload{Kind: KindTimeBar, Date: "2023-11-14"}, anchor.ZoneTime},
			{Payload{Kind: KindTimeBar, Date: "2023-11-14"}, anchor.ZoneMap},
		} {
			out := Classify(tc.p, tc.z, panelBounds)
			assert.Equal(t, OutcomeNone, out.Kind)
			assert.Empty(t, out.Highlights, "no field changes at all")
			assert.NotEmpty(t, out.Reason)
		}
	})
}

func TestClassifyRadial(t *testing.T) {
	out := Classify(Payload{Kind: KindGeoCircle, City: "Reno", State: "NV"}, anchor.ZoneRadial, panelBounds)
	require.Equal(t, OutcomeFilter, out.Kind)
	require.NotNil(t, out.Filter)
	assert.Equal(t, filterq.TypeCity, out.Filter.Type)
	assert.Equal(t, "Reno", out.Filter.Value)
	assert.Equal(t, clears(selection.PanelMap, selection.PanelTime, selection.PanelFlow), flatten(out.Highlights))

	for _, p := range []Payload{
		{Kind: KindSankeyNode, Name: "NV", Layer: util.Ptr(0)},
		{Kind: KindTimeBar, Date: "2023-11-14"},
	} {
		out := Classify(p, anchor.ZoneRadial, panelBounds)
		assert.Equal(t, OutcomeNone, out.Kind)
		assert.Nil(t, out.Filter)
	}
}

func TestClassifyNeverPanics(t *testing.T) {
	payloads := []Payload{
		{},
		{Kind: KindSankeyNode},
		{Kind: KindSankeyNode, Name: "x"},
		{Kind: KindTimeBar},
		{Kind: "???", Layer: util.Ptr(-4)},
	}
	zones := append([]anchor.Zone{"", "nowhere"}, anchor.Zones...)
	for _, p := range payloads {
		for _, z := range zones {
			assert.NotPanics(t, func() {
				out := Classify(p, z, anchor.Rect{})
				assert.Equal(t, OutcomeNone, out.Kind)
			})
		}
	}
}

func TestClassifyPointerBounds(t *testing.T) {
	p := Payload{Kind: KindGeoCircle, City: "Reno", Action: ActionDragEnd, X: util.Ptr(50.0), Y: util.Ptr(50.0)}
	assert.Equal(t, OutcomeNone, Classify(p, anchor.ZoneRadial, panelBounds).Kind)

	p.X, p.Y = util.Ptr(150.0), util.Ptr(150.0)
	assert.Equal(t, OutcomeFilter, Classify(p, anchor.ZoneRadial, panelBounds).Kind)

	// unknown bounds accept any position
	p.X = util.Ptr(-10.0)
	assert.Equal(t, OutcomeFilter, Classify(p, anchor.ZoneRadial, anchor.Rect{}).Kind)
}

func TestDropSameCityTwiceQueuesOnce(t *testing.T) {
	q := filterq.New()
	raw := []byte(`{"kind":"geoCircle","city":"Reno"}`)

	for i := 0; i < 2; i++ {
		p, err := Decode(raw)
		require.NoError(t, err)
		out := Classify(p, anchor.ZoneRadial, panelBounds)
		require.Equal(t, OutcomeFilter, out.Kind)
		q.Upsert(*out.Filter)
	}

	assert.Equal(t, 1, q.Len())
}

func TestInboxOneShot(t *testing.T) {
	var box Inbox
	_, ok := box.Take()
	assert.False(t, ok)

	ev := Event{Payload: Payload{Kind: KindGeoCircle, City: "Reno"}, Zone: anchor.ZoneRadial}
	assert.False(t, box.Post(ev))
	assert.True(t, box.Pending())

	got, ok := box.Take()
	require.True(t, ok)
	assert.Equal(t, ev, got)

	_, ok = box.Take()
	assert.False(t, ok, "a drop is consumed exactly once")
	assert.False(t, box.Pending())

	box.Post(ev)
	assert.True(t, box.Post(Event{Zone: anchor.ZoneMap}))
	got, _ = box.Take()
	assert.Equal(t, anchor.ZoneMap, got.Zone)
}
