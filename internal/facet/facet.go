// Package facet reshapes facet aggregations returned by the issues search
// backend into value counts keyed by filter field name.
package facet

import "github.com/runnerr0/issuefilter/internal/query"

// RawFacet is one facet as returned by the search backend.
type RawFacet struct {
	Property string       `json:"property"`
	Values   []ValueCount `json:"values"`
}

// ValueCount is a single facet bucket.
type ValueCount struct {
	Val   string `json:"val"`
	Count int    `json:"count"`
}

// Facet maps facet values to their counts.
type Facet map[string]int

// MapFacet returns the request parameter name for a filter field name.
func MapFacet(name string) string {
	return query.WireName(name)
}

// ParseFacets indexes facets by filter field name. Within a facet a repeated
// value keeps its last count; a repeated property replaces the earlier facet.
func ParseFacets(facets []RawFacet) map[string]Facet {
	result := make(map[string]Facet, len(facets))
	for _, f := range facets {
		values := make(Facet, len(f.Values))
		for _, v := range f.Values {
			values[v.Val] = v.Count
		}
		result[query.FieldName(f.Property)] = values
	}
	return result
}
