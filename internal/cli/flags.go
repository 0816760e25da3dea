package cli

import (
	"database/sql"
	"io"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DBPath  string `long:"db-path" description:"Override the SQLite database path"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging on stderr"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ParseCommand prints the typed form of an issues query.
type ParseCommand struct {
	globals *GlobalFlags
}

// CanonicalCommand prints the canonical wire form of an issues query.
type CanonicalCommand struct {
	KeepUnknown bool `long:"keep-unknown" description:"Carry unrecognized keys over untouched"`

	globals *GlobalFlags
}

// EqualCommand reports whether two queries select the same issues.
type EqualCommand struct {
	globals *GlobalFlags
}

// FacetsCommand normalizes raw facet results read as JSON.
type FacetsCommand struct {
	File  string `long:"file" description:"Read facets from file instead of stdin"`
	Stats bool   `long:"stats" description:"Format counts as short localized numbers"`

	globals *GlobalFlags
	stdin   io.Reader // injectable for testing; nil means os.Stdin
}

// FacetParamCommand prints the request parameter name of facets.
type FacetParamCommand struct {
	globals *GlobalFlags
}

// ModeCommand shows or sets the issues page default.
type ModeCommand struct {
	globals *GlobalFlags
	db      *sql.DB // injectable for testing; nil means open the configured DB
}

// SaveCommand stores a named filter in canonical form.
type SaveCommand struct {
	Name string `long:"name" description:"Filter name (required)"`

	globals *GlobalFlags
	db      *sql.DB
}

// ListCommand lists saved filters.
type ListCommand struct {
	globals *GlobalFlags
	db      *sql.DB
}

// ShowCommand prints a saved filter.
type ShowCommand struct {
	Name string `long:"name" description:"Filter name (required)"`

	globals *GlobalFlags
	db      *sql.DB
}

// DeleteCommand removes a saved filter.
type DeleteCommand struct {
	Name string `long:"name" description:"Filter name (required)"`

	globals *GlobalFlags
	db      *sql.DB
}

// StatusCommand shows database statistics and the issues default.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	db      *sql.DB
}
