// Package geo loads neighbourhood boundaries and joins per-neighbourhood values onto
// them for choropleth maps.
package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const (
	PropNeighbourhood      = "neighbourhood"
	PropNeighbourhoodGroup = "neighbourhood_group"
	PropValue              = "value"
	PropFill               = "fill"

	Transparent = "transparent"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// Neighbourhood returns the feature's neighbourhood name.
func (f Feature) Neighbourhood() string {
	name, _ := f.Properties[PropNeighbourhood].(string)
	return strings.TrimSpace(name)
}

// LoadFile reads and validates a neighbourhoods GeoJSON file.
func LoadFile(path string) (*FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load validates the document and drops neighbourhood_group, which the export
// leaves empty for most cities.
func Load(r io.Reader) (*FeatureCollection, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GeoJSON: %w", err)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	var fc FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("decode GeoJSON: %w", err)
	}
	for i := range fc.Features {
		delete(fc.Features[i].Properties, PropNeighbourhoodGroup)
	}
	return &fc, nil
}

// Names lists the neighbourhoods in the collection, sorted.
func (fc *FeatureCollection) Names() []string {
	if fc == nil {
		return nil
	}
	names := make([]string, 0, len(fc.Features))
	for _, feature := range fc.Features {
		if name := feature.Neighbourhood(); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Choropleth copies fc, setting value and fill on every feature. Features without a
// value, or with a non-positive one, are filled transparent.
func Choropleth(fc *FeatureCollection, values map[string]float64, scale ColorScale) *FeatureCollection {
	if fc == nil {
		return nil
	}

	out := &FeatureCollection{
		Type:     fc.Type,
		Features: make([]Feature, 0, len(fc.Features)),
	}
	for _, feature := range fc.Features {
		props := make(map[string]any, len(feature.Properties)+2)
		for k, v := range feature.Properties {
			props[k] = v
		}

		value, ok := values[feature.Neighbourhood()]
		if ok {
			props[PropValue] = value
		} else {
			props[PropValue] = nil
		}
		if ok && value > 0 {
			props[PropFill] = scale.Color(value)
		} else {
			props[PropFill] = Transparent
		}

		out.Features = append(out.Features, Feature{
			Type:       feature.Type,
			Properties: props,
			Geometry:   feature.Geometry,
		})
	}
	return out
}

// Unmatched returns value keys that have no boundary in fc, sorted.
func Unmatched(fc *FeatureCollection, values map[string]float64) []string {
	known := make(map[string]struct{})
	if fc != nil {
		for _, feature := range fc.Features {
			known[feature.Neighbourhood()] = struct{}{}
		}
	}
	var missing []string
	for name := range values {
		if _, ok := known[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
