package geo

import (
	"strings"
	"testing"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"neighbourhood": "Camden", "neighbourhood_group": null},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[-0.1, 51.5], [-0.2, 51.5], [-0.2, 51.6], [-0.1, 51.5]]]]}
    },
    {
      "type": "Feature",
      "properties": {"neighbourhood": "Hackney", "neighbourhood_group": null},
      "geometry": {"type": "Polygon", "coordinates": [[[-0.05, 51.5], [-0.06, 51.5], [-0.06, 51.56], [-0.05, 51.5]]]}
    }
  ]
}`

func TestLoad_ValidatesAndDropsGroup(t *testing.T) {
	t.Parallel()

	fc, err := Load(strings.NewReader(sampleGeoJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("unexpected feature count: %d", len(fc.Features))
	}
	if _, ok := fc.Features[0].Properties[PropNeighbourhoodGroup]; ok {
		t.Fatalf("expected neighbourhood_group to be dropped")
	}
	names := fc.Names()
	if len(names) != 2 || names[0] != "Camden" || names[1] != "Hackney" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestLoad_RejectsMissingNeighbourhood(t *testing.T) {
	t.Parallel()

	doc := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":null}]}`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected schema validation error")
	}
}

func TestLoad_RejectsTrailingContent(t *testing.T) {
	t.Parallel()

	if _, err := Load(strings.NewReader(`{"type":"FeatureCollection","features":[]} {}`)); err == nil {
		t.Fatalf("expected trailing content error")
	}
}

func TestChoropleth_FillsMatchedFeatures(t *testing.T) {
	t.Parallel()

	fc, err := Load(strings.NewReader(sampleGeoJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	values := map[string]float64{"Camden": 120, "Westminster": 300}
	scale, err := ScaleFor(values, YlGn)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}

	out := Choropleth(fc, values, scale)
	if got := out.Features[0].Properties[PropFill]; got != "#ffffcc" {
		t.Fatalf("unexpected fill for scale minimum: %v", got)
	}
	if got := out.Features[1].Properties[PropFill]; got != Transparent {
		t.Fatalf("expected unmatched feature to be transparent, got %v", got)
	}
	if _, ok := fc.Features[0].Properties[PropFill]; ok {
		t.Fatalf("choropleth must not mutate its input")
	}

	missing := Unmatched(fc, values)
	if len(missing) != 1 || missing[0] != "Westminster" {
		t.Fatalf("unexpected unmatched names: %v", missing)
	}
}

func TestColorScale_InterpolatesAndClamps(t *testing.T) {
	t.Parallel()

	scale, err := LinearColorScale(0, 10, []string{"black", "white"})
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	if got := scale.Color(5); got != "#808080" {
		t.Fatalf("unexpected midpoint color: %s", got)
	}
	if got := scale.Color(-3); got != "#000000" {
		t.Fatalf("expected clamp to minimum, got %s", got)
	}
	if got := scale.Color(99); got != "#ffffff" {
		t.Fatalf("expected clamp to maximum, got %s", got)
	}
}

func TestLinearColorScale_RejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := LinearColorScale(0, 1, []string{"red"}); err == nil {
		t.Fatalf("expected error for a single color")
	}
	if _, err := LinearColorScale(2, 1, ScoreColors); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, err := LinearColorScale(0, 1, []string{"red", "chartreuse-ish"}); err == nil {
		t.Fatalf("expected error for unknown color")
	}
}
