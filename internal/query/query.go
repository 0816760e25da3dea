package query

import (
	"slices"
	"sort"
	"time"
)

// SortCreationDate is the only sort criterion this layer accepts.
const SortCreationDate = "CREATION_DATE"

// Wire keys that are not sequence fields.
const (
	KeyAssigned        = "assigned"
	KeyResolved        = "resolved"
	KeySinceLeakPeriod = "sinceLeakPeriod"
	KeyCreatedAt       = "createdAt"
	KeyCreatedInLast   = "createdInLast"
	KeyCreatedAfter    = "createdAfter"
	KeyCreatedBefore   = "createdBefore"
	KeySort            = "s"
	KeyOpen            = "open"
	KeyMyIssues        = "myIssues"
)

// Query is the typed issue filter.
type Query struct {
	Assigned        bool       `json:"assigned"`
	Assignees       []string   `json:"assignees"`
	Authors         []string   `json:"authors"`
	CreatedAfter    *time.Time `json:"createdAfter,omitempty"`
	CreatedAt       string     `json:"createdAt"`
	CreatedBefore   *time.Time `json:"createdBefore,omitempty"`
	CreatedInLast   string     `json:"createdInLast"`
	CWE             []string   `json:"cwe"`
	Directories     []string   `json:"directories"`
	Files           []string   `json:"files"`
	Issues          []string   `json:"issues"`
	Languages       []string   `json:"languages"`
	Modules         []string   `json:"modules"`
	OWASPTop10      []string   `json:"owaspTop10"`
	Projects        []string   `json:"projects"`
	Resolutions     []string   `json:"resolutions"`
	Resolved        bool       `json:"resolved"`
	Rules           []string   `json:"rules"`
	SANSTop25       []string   `json:"sansTop25"`
	Severities      []string   `json:"severities"`
	SinceLeakPeriod bool       `json:"sinceLeakPeriod"`
	Sort            string     `json:"sort"`
	Statuses        []string   `json:"statuses"`
	Tags            []string   `json:"tags"`
	Types           []string   `json:"types"`
}

// sequenceField binds an internal field name to its slice in a Query.
type sequenceField struct {
	name string
	ref  func(q *Query) *[]string
}

var sequenceFields = []sequenceField{
	{"assignees", func(q *Query) *[]string { return &q.Assignees }},
	{"authors", func(q *Query) *[]string { return &q.Authors }},
	{"cwe", func(q *Query) *[]string { return &q.CWE }},
	{"directories", func(q *Query) *[]string { return &q.Directories }},
	{"files", func(q *Query) *[]string { return &q.Files }},
	{"issues", func(q *Query) *[]string { return &q.Issues }},
	{"languages", func(q *Query) *[]string { return &q.Languages }},
	{"modules", func(q *Query) *[]string { return &q.Modules }},
	{"owaspTop10", func(q *Query) *[]string { return &q.OWASPTop10 }},
	{"projects", func(q *Query) *[]string { return &q.Projects }},
	{"resolutions", func(q *Query) *[]string { return &q.Resolutions }},
	{"rules", func(q *Query) *[]string { return &q.Rules }},
	{"sansTop25", func(q *Query) *[]string { return &q.SANSTop25 }},
	{"severities", func(q *Query) *[]string { return &q.Severities }},
	{"statuses", func(q *Query) *[]string { return &q.Statuses }},
	{"tags", func(q *Query) *[]string { return &q.Tags }},
	{"types", func(q *Query) *[]string { return &q.Types }},
}

// knownKeys holds every wire key Parse reads.
var knownKeys = func() map[string]bool {
	keys := map[string]bool{
		KeyAssigned:        true,
		KeyResolved:        true,
		KeySinceLeakPeriod: true,
		KeyCreatedAt:       true,
		KeyCreatedInLast:   true,
		KeyCreatedAfter:    true,
		KeyCreatedBefore:   true,
		KeySort:            true,
	}
	for _, f := range sequenceFields {
		keys[WireName(f.name)] = true
	}
	return keys
}()

func parseAsSort(value string) string {
	if value == SortCreationDate {
		return SortCreationDate
	}
	return ""
}

// Parse converts raw parameters into a Query. It never fails: unknown keys
// are ignored and malformed values fall back to the field default.
func Parse(raw RawQuery) Query {
	assigned, hasAssigned := raw[KeyAssigned]
	resolved, hasResolved := raw[KeyResolved]
	sinceLeak, hasSinceLeak := raw[KeySinceLeakPeriod]

	q := Query{
		Assigned:        parseAsBoolean(assigned, hasAssigned, true),
		CreatedAfter:    parseAsDate(raw[KeyCreatedAfter]),
		CreatedAt:       parseAsString(raw[KeyCreatedAt]),
		CreatedBefore:   parseAsDate(raw[KeyCreatedBefore]),
		CreatedInLast:   parseAsString(raw[KeyCreatedInLast]),
		Resolved:        parseAsBoolean(resolved, hasResolved, true),
		SinceLeakPeriod: parseAsBoolean(sinceLeak, hasSinceLeak, false),
		Sort:            parseAsSort(raw[KeySort]),
	}
	for _, f := range sequenceFields {
		*f.ref(&q) = parseAsArray(raw[WireName(f.name)])
	}
	return q
}

// Serialize converts q into its minimal wire form. Fields at their default
// value are left out.
func Serialize(q Query) RawQuery {
	entries := []entry{
		{key: KeyAssigned, value: "false", ok: !q.Assigned},
		{key: KeyResolved, value: "false", ok: !q.Resolved},
		{key: KeySinceLeakPeriod, value: "true", ok: q.SinceLeakPeriod},
	}

	add := func(key string, value string, ok bool) {
		entries = append(entries, entry{key: key, value: value, ok: ok})
	}
	v, ok := serializeDateShort(q.CreatedAfter)
	add(KeyCreatedAfter, v, ok)
	v, ok = serializeString(q.CreatedAt)
	add(KeyCreatedAt, v, ok)
	v, ok = serializeDateShort(q.CreatedBefore)
	add(KeyCreatedBefore, v, ok)
	v, ok = serializeString(q.CreatedInLast)
	add(KeyCreatedInLast, v, ok)
	v, ok = serializeString(q.Sort)
	add(KeySort, v, ok)

	for _, f := range sequenceFields {
		v, ok := serializeStringArray(*f.ref(&q))
		add(WireName(f.name), v, ok)
	}
	return cleanQuery(entries)
}

// Equal reports whether q and other denote the same filter. Nil and empty
// sequences compare equal; dates compare by instant.
func (q Query) Equal(other Query) bool {
	if q.Assigned != other.Assigned ||
		q.Resolved != other.Resolved ||
		q.SinceLeakPeriod != other.SinceLeakPeriod ||
		q.CreatedAt != other.CreatedAt ||
		q.CreatedInLast != other.CreatedInLast ||
		q.Sort != other.Sort {
		return false
	}
	if !datesEqual(q.CreatedAfter, other.CreatedAfter) || !datesEqual(q.CreatedBefore, other.CreatedBefore) {
		return false
	}
	for _, f := range sequenceFields {
		if !slices.Equal(*f.ref(&q), *f.ref(&other)) {
			return false
		}
	}
	return true
}

func datesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// AreEqual reports whether two raw queries denote the same filter once
// parsed, regardless of key order or omitted defaults.
func AreEqual(a, b RawQuery) bool {
	return Parse(a).Equal(Parse(b))
}

// Canonical returns the minimal wire form of raw.
func Canonical(raw RawQuery) RawQuery {
	return Serialize(Parse(raw))
}

// UnknownKeys returns, sorted, the keys of raw that Parse does not read.
// Callers that rebuild a URL from a canonical query carry these over as is.
func UnknownKeys(raw RawQuery) []string {
	var keys []string
	for k := range raw {
		if !knownKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a copy of canonical extended with the keys of raw that the
// codec does not own.
func Merge(canonical, raw RawQuery) RawQuery {
	out := make(RawQuery, len(canonical))
	for k, v := range canonical {
		out[k] = v
	}
	for _, k := range UnknownKeys(raw) {
		out[k] = raw[k]
	}
	return out
}

// WithPassthrough returns a copy of canonical extended with the open and
// myIssues values of raw. Those keys are page state rather than filter
// fields, so Parse ignores them.
func WithPassthrough(canonical, raw RawQuery) RawQuery {
	out := make(RawQuery, len(canonical)+2)
	for k, v := range canonical {
		out[k] = v
	}
	for _, k := range []string{KeyOpen, KeyMyIssues} {
		if v, ok := raw[k]; ok && v != "" {
			out[k] = v
		}
	}
	return out
}

// Open returns the id of the issue opened in the list, if any.
func Open(raw RawQuery) string {
	return raw[KeyOpen]
}

// MyIssuesSelected reports whether the "my issues" toggle is on.
func MyIssuesSelected(raw RawQuery) bool {
	return raw[KeyMyIssues] == "true"
}
