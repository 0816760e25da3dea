package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/issuefilter/internal/query"
)

const dateLayout = "2006-01-02"

// queryJSON is the JSON output structure for a parsed query. Dates are
// shown as calendar days, matching the wire form.
type queryJSON struct {
	query.Query
	CreatedAfter  string `json:"createdAfter,omitempty"`
	CreatedBefore string `json:"createdBefore,omitempty"`
}

func newQueryJSON(q query.Query) queryJSON {
	return queryJSON{
		Query:         q,
		CreatedAfter:  formatDate(q.CreatedAfter),
		CreatedBefore: formatDate(q.CreatedBefore),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// printQueryHuman lists every filter field, one per line.
func printQueryHuman(q query.Query) {
	seq := func(v []string) string {
		if len(v) == 0 {
			return "-"
		}
		return strings.Join(v, ", ")
	}
	str := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}

	fields := []struct {
		label string
		value string
	}{
		{"Assigned", fmt.Sprint(q.Assigned)},
		{"Resolved", fmt.Sprint(q.Resolved)},
		{"Since leak", fmt.Sprint(q.SinceLeakPeriod)},
		{"Assignees", seq(q.Assignees)},
		{"Authors", seq(q.Authors)},
		{"Created at", str(q.CreatedAt)},
		{"Created after", str(formatDate(q.CreatedAfter))},
		{"Created before", str(formatDate(q.CreatedBefore))},
		{"Created in last", str(q.CreatedInLast)},
		{"CWE", seq(q.CWE)},
		{"Directories", seq(q.Directories)},
		{"Files", seq(q.Files)},
		{"Issues", seq(q.Issues)},
		{"Languages", seq(q.Languages)},
		{"Modules", seq(q.Modules)},
		{"OWASP Top 10", seq(q.OWASPTop10)},
		{"Projects", seq(q.Projects)},
		{"Resolutions", seq(q.Resolutions)},
		{"Rules", seq(q.Rules)},
		{"SANS Top 25", seq(q.SANSTop25)},
		{"Severities", seq(q.Severities)},
		{"Statuses", seq(q.Statuses)},
		{"Tags", seq(q.Tags)},
		{"Types", seq(q.Types)},
		{"Sort", str(q.Sort)},
	}
	for _, f := range fields {
		fmt.Printf("%-16s %s\n", f.label+":", f.value)
	}
}

// Execute implements the go-flags Commander interface for ParseCommand.
func (c *ParseCommand) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("parse takes exactly one query argument")
	}

	sess, err := newReadOnlySession(c.globals)
	if err != nil {
		return err
	}

	raw, err := decodeQuery(args[0])
	if err != nil {
		return err
	}
	logDiscarded(sess.logger, raw)

	q := query.Parse(raw)
	if c.globals.JSON {
		return printJSON(newQueryJSON(q))
	}
	printQueryHuman(q)
	return nil
}

// Execute implements the go-flags Commander interface for CanonicalCommand.
func (c *CanonicalCommand) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("canonical takes exactly one query argument")
	}

	sess, err := newReadOnlySession(c.globals)
	if err != nil {
		return err
	}

	raw, err := decodeQuery(args[0])
	if err != nil {
		return err
	}
	logDiscarded(sess.logger, raw)

	canonical := query.Canonical(raw)
	if c.KeepUnknown {
		canonical = query.Merge(canonical, raw)
	}

	if c.globals.JSON {
		return printJSON(map[string]any{
			"query": canonical.Encode(),
			"keys":  canonical,
		})
	}
	fmt.Println(canonical.Encode())
	return nil
}

// Execute implements the go-flags Commander interface for EqualCommand.
func (c *EqualCommand) Execute(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("equal takes exactly two query arguments")
	}

	sess, err := newReadOnlySession(c.globals)
	if err != nil {
		return err
	}

	a, err := decodeQuery(args[0])
	if err != nil {
		return err
	}
	b, err := decodeQuery(args[1])
	if err != nil {
		return err
	}
	logDiscarded(sess.logger, a)
	logDiscarded(sess.logger, b)

	equal := query.AreEqual(a, b)
	if c.globals.JSON {
		return printJSON(map[string]bool{"equal": equal})
	}
	if equal {
		fmt.Println("equal")
	} else {
		fmt.Println("different")
	}
	return nil
}
