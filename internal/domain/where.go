package domain

import "strings"

// QuoteLiteral renders v as a SQL-92 string literal for an ArcGIS where
// clause. Embedded single quotes are doubled.
func QuoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// StateWhere selects every zone in a state, e.g. state='AK'.
func StateWhere(state string) string {
	return "state=" + QuoteLiteral(state)
}

// ZoneWhere selects a single zone within a state.
func ZoneWhere(zone, state string) string {
	return "zone=" + QuoteLiteral(zone) + " AND state=" + QuoteLiteral(state)
}

// CWAWhere selects every zone belonging to a County Warning Area.
func CWAWhere(cwa string) string {
	return "cwa=" + QuoteLiteral(cwa)
}

// ZonesInWhere selects a list of zones within a state,
// e.g. ZONE IN ('AKZ101', 'AKZ111') AND STATE='AK'.
func ZonesInWhere(zones []string, state string) string {
	quoted := make([]string, len(zones))
	for i, z := range zones {
		quoted[i] = QuoteLiteral(z)
	}
	return "ZONE IN (" + strings.Join(quoted, ", ") + ") AND STATE=" + QuoteLiteral(state)
}
