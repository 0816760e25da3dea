package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/runnerr0/issuefilter/internal/facet"
)

// Execute implements the go-flags Commander interface for FacetsCommand.
func (c *FacetsCommand) Execute(args []string) error {
	sess, err := newReadOnlySession(c.globals)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if c.stdin != nil {
		in = c.stdin
	}
	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("open facets file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var raw []facet.RawFacet
	if err := json.NewDecoder(in).Decode(&raw); err != nil {
		return fmt.Errorf("decode facets: %w", err)
	}
	sess.logger.Debug("read facets", "count", len(raw))

	facets := facet.ParseFacets(raw)

	if !c.Stats {
		if c.globals.JSON {
			return printJSON(facets)
		}
		for _, property := range sortedKeys(facets) {
			fmt.Printf("%s:\n", property)
			for _, val := range sortedKeys(facets[property]) {
				fmt.Printf("  %-24s %d\n", val, facets[property][val])
			}
		}
		return nil
	}

	formatter, err := facet.NewShortIntFormatter(sess.cfg.Facets.Locale)
	if err != nil {
		return err
	}

	formatted := make(map[string]map[string]string, len(facets))
	for property, f := range facets {
		values := make(map[string]string, len(f))
		for val, count := range f {
			if s, ok := facet.FormatFacetStat(formatter, count); ok {
				values[val] = s
			}
		}
		formatted[property] = values
	}

	if c.globals.JSON {
		return printJSON(formatted)
	}
	for _, property := range sortedKeys(formatted) {
		fmt.Printf("%s:\n", property)
		for _, val := range sortedKeys(facets[property]) {
			s, ok := formatted[property][val]
			if !ok {
				s = "-"
			}
			fmt.Printf("  %-24s %s\n", val, s)
		}
	}
	return nil
}

// Execute implements the go-flags Commander interface for FacetParamCommand.
func (c *FacetParamCommand) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("facet-param requires at least one facet name")
	}

	if c.globals.JSON {
		out := make(map[string]string, len(args))
		for _, name := range args {
			out[name] = facet.MapFacet(name)
		}
		return printJSON(out)
	}

	for _, name := range args {
		fmt.Println(facet.MapFacet(name))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
