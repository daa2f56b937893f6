package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ESRI field types that appear in MapServer query responses.
const (
	FieldTypeOID          = "esriFieldTypeOID"
	FieldTypeString       = "esriFieldTypeString"
	FieldTypeInteger      = "esriFieldTypeInteger"
	FieldTypeSmallInteger = "esriFieldTypeSmallInteger"
	FieldTypeDouble       = "esriFieldTypeDouble"
	FieldTypeSingle       = "esriFieldTypeSingle"
	FieldTypeDate         = "esriFieldTypeDate"
)

// GeometryTypePolygon is the only geometry type requested from the zone layer.
const GeometryTypePolygon = "esriGeometryPolygon"

// FeatureSet is an ESRI JSON query response.
type FeatureSet struct {
	DisplayFieldName string            `json:"displayFieldName,omitempty"`
	GeometryType     string            `json:"geometryType,omitempty"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
	Fields           []Field           `json:"fields,omitempty"`
	Features         []Feature         `json:"features"`
}

// SpatialReference identifies the coordinate system of a feature set.
type SpatialReference struct {
	WKID       int `json:"wkid,omitempty"`
	LatestWKID int `json:"latestWkid,omitempty"`
}

// EPSG returns the best-known well-known ID, preferring latestWkid.
func (s *SpatialReference) EPSG() int {
	if s == nil {
		return 0
	}
	if s.LatestWKID != 0 {
		return s.LatestWKID
	}
	return s.WKID
}

// Field describes one attribute column.
type Field struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Alias  string `json:"alias,omitempty"`
	Length int    `json:"length,omitempty"`
}

// Feature is a single record: attributes plus an optional polygon geometry.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
	Geometry   *Geometry      `json:"geometry,omitempty"`
}

// Geometry holds polygon rings. Each position is [x, y] with optional z/m.
type Geometry struct {
	Rings [][][]float64 `json:"rings,omitempty"`
}

// HasRings reports whether the feature carries at least one ring with a position.
func (f Feature) HasRings() bool {
	if f.Geometry == nil {
		return false
	}
	for _, ring := range f.Geometry.Rings {
		if len(ring) > 0 {
			return true
		}
	}
	return false
}

// Attribute looks up an attribute by name, ignoring case. MapServer layers
// are inconsistent about field-name case between where clauses and output.
func (f Feature) Attribute(name string) (any, bool) {
	if v, ok := f.Attributes[name]; ok {
		return v, true
	}
	for k, v := range f.Attributes {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// StringAttribute returns an attribute rendered as a string. JSON numbers
// are formatted without a trailing ".0" for integral values.
func (f Feature) StringAttribute(name string) (string, bool) {
	v, ok := f.Attribute(name)
	if !ok || v == nil {
		return "", false
	}
	return FormatAttribute(v), true
}

// FormatAttribute renders a decoded JSON attribute value as text.
func FormatAttribute(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
