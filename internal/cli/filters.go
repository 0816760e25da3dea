package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/issuefilter/internal/preference"
	"github.com/runnerr0/issuefilter/internal/query"
	"github.com/runnerr0/issuefilter/internal/storage"
)

// filterJSON is the JSON output structure for a saved filter.
type filterJSON struct {
	Name      string `json:"name"`
	Query     string `json:"query"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newFilterJSON(f *storage.SavedFilter) filterJSON {
	return filterJSON{
		Name:      f.Name,
		Query:     f.Encoded(),
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Execute implements the go-flags Commander interface for ModeCommand.
func (c *ModeCommand) Execute(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("mode takes at most one argument: %s or %s", preference.ModeMy, preference.ModeAll)
	}

	var my bool
	if len(args) == 1 {
		var err error
		if my, err = preference.ParseMode(args[0]); err != nil {
			return err
		}
	}

	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, _, cleanup, err := sess.openStore(ctx, c.globals, c.db)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(args) == 1 {
		if err := preference.SaveMyIssues(ctx, store, my); err != nil {
			return err
		}
	} else {
		if my, err = preference.IsMySet(ctx, store); err != nil {
			return err
		}
	}

	mode := preference.ModeAll
	if my {
		mode = preference.ModeMy
	}

	if c.globals.JSON {
		return printJSON(map[string]string{"mode": mode})
	}
	if len(args) == 1 {
		fmt.Printf("Issues default set to %s\n", mode)
	} else {
		fmt.Println(mode)
	}
	return nil
}

// Execute implements the go-flags Commander interface for SaveCommand.
func (c *SaveCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("--name is required for save command")
	}
	if len(args) > 1 {
		return fmt.Errorf("save takes at most one query argument")
	}

	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	raw, err := decodeQuery(arg)
	if err != nil {
		return err
	}

	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}
	logDiscarded(sess.logger, raw)

	ctx := context.Background()
	store, _, cleanup, err := sess.openStore(ctx, c.globals, c.db)
	if err != nil {
		return err
	}
	defer cleanup()

	matches, err := store.FindEquivalent(ctx, raw)
	if err != nil {
		return fmt.Errorf("find equivalent filters: %w", err)
	}

	saved, err := store.SaveFilter(ctx, c.Name, raw)
	if err != nil {
		return err
	}

	equivalent := []string{}
	for _, m := range matches {
		if m.Name != saved.Name {
			equivalent = append(equivalent, m.Name)
		}
	}

	if c.globals.JSON {
		return printJSON(struct {
			filterJSON
			Equivalent []string `json:"equivalent"`
		}{newFilterJSON(saved), equivalent})
	}

	fmt.Printf("Saved %s: %s\n", saved.Name, displayQuery(saved.Encoded()))
	if len(equivalent) > 0 {
		fmt.Printf("Same issues as: %s\n", strings.Join(equivalent, ", "))
	}
	return nil
}

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, _, cleanup, err := sess.openStore(ctx, c.globals, c.db)
	if err != nil {
		return err
	}
	defer cleanup()

	filters, err := store.ListFilters(ctx)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		out := make([]filterJSON, len(filters))
		for i := range filters {
			out[i] = newFilterJSON(&filters[i])
		}
		return printJSON(out)
	}

	if len(filters) == 0 {
		fmt.Println("No saved filters.")
		return nil
	}
	for _, f := range filters {
		fmt.Printf("%-20s %s\n", f.Name, displayQuery(f.Encoded()))
	}
	return nil
}

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("--name is required for show command")
	}

	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, _, cleanup, err := sess.openStore(ctx, c.globals, c.db)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := store.GetFilter(ctx, strings.TrimSpace(c.Name))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no saved filter named %q", c.Name)
	}
	if err != nil {
		return err
	}

	parsed := query.Parse(f.Query)

	if c.globals.JSON {
		return printJSON(struct {
			filterJSON
			Open     string    `json:"open"`
			MyIssues bool      `json:"my_issues"`
			Parsed   queryJSON `json:"parsed"`
		}{newFilterJSON(f), query.Open(f.Query), query.MyIssuesSelected(f.Query), newQueryJSON(parsed)})
	}

	fmt.Printf("Name:            %s\n", f.Name)
	fmt.Printf("Query:           %s\n", displayQuery(f.Encoded()))
	open := query.Open(f.Query)
	if open == "" {
		open = "-"
	}
	fmt.Printf("Open:            %s\n", open)
	fmt.Printf("My issues:       %t\n", query.MyIssuesSelected(f.Query))
	fmt.Printf("Updated:         %s\n", f.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Println()
	printQueryHuman(parsed)
	return nil
}

// Execute implements the go-flags Commander interface for DeleteCommand.
func (c *DeleteCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("--name is required for delete command")
	}
	name := strings.TrimSpace(c.Name)

	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, _, cleanup, err := sess.openStore(ctx, c.globals, c.db)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.DeleteFilter(ctx, name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no saved filter named %q", name)
		}
		return err
	}

	if c.globals.JSON {
		return printJSON(map[string]any{"deleted": true, "name": name})
	}
	fmt.Printf("Deleted %s\n", name)
	return nil
}

// displayQuery renders an encoded query, marking the empty one.
func displayQuery(encoded string) string {
	if encoded == "" {
		return "(all issues)"
	}
	return encoded
}
