package shapefile

import (
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/snowfall-setup/internal/domain"
	goshp "github.com/jonas-p/go-shp"
)

const (
	maxNameLen    = 10 // dBASE III field name limit
	maxStringLen  = 254
	defaultStrLen = 80
	numberLen     = 10
	floatLen      = 19
	floatDecimal  = 11
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindFloat
)

// column maps one ESRI attribute onto one DBF field.
type column struct {
	source string // attribute name in the feature set
	kind   fieldKind
	field  goshp.Field
}

// columns derives the DBF schema. When the feature set carries no field
// list, the first feature's attributes are used (sorted for stable output).
func columns(fs domain.FeatureSet) []column {
	fields := fs.Fields
	if len(fields) == 0 && len(fs.Features) > 0 {
		fields = inferFields(fs.Features[0].Attributes)
	}

	seen := make(map[string]bool, len(fields))
	cols := make([]column, 0, len(fields))
	for _, f := range fields {
		name := uniqueName(dbfName(f.Name), seen)
		col := column{source: f.Name}
		switch f.Type {
		case domain.FieldTypeOID, domain.FieldTypeInteger, domain.FieldTypeSmallInteger:
			col.kind = kindNumber
			col.field = goshp.NumberField(name, numberLen)
		case domain.FieldTypeDouble, domain.FieldTypeSingle:
			col.kind = kindFloat
			col.field = goshp.FloatField(name, floatLen, floatDecimal)
		default:
			col.kind = kindString
			col.field = goshp.StringField(name, stringLen(f))
		}
		cols = append(cols, col)
	}
	return cols
}

func stringLen(f domain.Field) uint8 {
	switch {
	case f.Type != domain.FieldTypeString || f.Length <= 0:
		return defaultStrLen
	case f.Length > maxStringLen:
		return maxStringLen
	default:
		return uint8(f.Length)
	}
}

func inferFields(attrs map[string]any) []domain.Field {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	slices.Sort(names)

	fields := make([]domain.Field, 0, len(names))
	for _, n := range names {
		typ := domain.FieldTypeString
		if _, ok := attrs[n].(float64); ok {
			typ = domain.FieldTypeDouble
		}
		fields = append(fields, domain.Field{Name: n, Type: typ})
	}
	return fields
}

// dbfName upper-cases, replaces characters dBASE rejects, and truncates.
func dbfName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "FIELD"
	}
	if len(out) > maxNameLen {
		out = out[:maxNameLen]
	}
	return out
}

// uniqueName suffixes a truncated name with _1, _2... until it is unused.
func uniqueName(name string, seen map[string]bool) string {
	candidate := name
	for i := 1; seen[candidate]; i++ {
		suffix := "_" + strconv.Itoa(i)
		base := name
		if len(base)+len(suffix) > maxNameLen {
			base = base[:maxNameLen-len(suffix)]
		}
		candidate = base + suffix
	}
	seen[candidate] = true
	return candidate
}

// value converts an attribute to the Go type go-shp writes for the column.
// Missing and null attributes become blank (DBF null).
func (c column) value(f domain.Feature) any {
	v, ok := f.Attribute(c.source)
	if !ok || v == nil {
		return ""
	}
	switch c.kind {
	case kindNumber:
		if n, ok := v.(float64); ok {
			return int(n)
		}
	case kindFloat:
		if n, ok := v.(float64); ok {
			return n
		}
	}
	s := domain.FormatAttribute(v)
	if limit := int(c.field.Size); c.kind == kindString && len(s) > limit {
		s = s[:limit]
	}
	return s
}
