package query

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// RawQuery is the wire form of a filter: URL parameter names mapped to their
// values. A missing key is not the same thing as an empty value.
type RawQuery map[string]string

// shortDateLayout is the canonical short date form used on the wire.
const shortDateLayout = "2006-01-02"

// listSeparator joins sequence values on the wire.
const listSeparator = ","

// Decode builds a RawQuery from a full URL, a "?a=b" fragment or a bare
// "a=b&c=d" query string. When a key repeats, the first value wins.
func Decode(s string) (RawQuery, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}

	values, err := url.ParseQuery(s)
	if err != nil {
		return nil, fmt.Errorf("decode query string: %w", err)
	}

	raw := make(RawQuery, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			raw[k] = vs[0]
		}
	}
	return raw, nil
}

// Encode returns the URL-encoded form of q with keys in sorted order.
func (q RawQuery) Encode() string {
	values := make(url.Values, len(q))
	for k, v := range q {
		values.Set(k, v)
	}
	return values.Encode()
}

// Keys returns the keys of q in sorted order.
func (q RawQuery) Keys() []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// entry is a single serialized field before cleanup. ok is false when the
// field is at its default and must not appear on the wire.
type entry struct {
	key   string
	value string
	ok    bool
}

// cleanQuery drops every entry that was left unset.
func cleanQuery(entries []entry) RawQuery {
	raw := make(RawQuery, len(entries))
	for _, e := range entries {
		if e.ok {
			raw[e.key] = e.value
		}
	}
	return raw
}

func parseAsBoolean(value string, present bool, def bool) bool {
	if !present {
		return def
	}
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	return def
}

func parseAsString(value string) string {
	return value
}

func parseAsArray(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, listSeparator)
}

// parseAsDate accepts a short date or an RFC 3339 timestamp and keeps only
// the calendar date, at midnight UTC. Anything else reads as unset.
func parseAsDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(shortDateLayout, value); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}

func serializeString(value string) (string, bool) {
	return value, value != ""
}

func serializeStringArray(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, listSeparator), true
}

func serializeDateShort(t *time.Time) (string, bool) {
	if t == nil {
		return "", false
	}
	return t.Format(shortDateLayout), true
}
