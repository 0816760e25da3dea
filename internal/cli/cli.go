package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Parse      *ParseCommand
	Canonical  *CanonicalCommand
	Equal      *EqualCommand
	Facets     *FacetsCommand
	FacetParam *FacetParamCommand
	Mode       *ModeCommand
	Save       *SaveCommand
	List       *ListCommand
	Show       *ShowCommand
	Delete     *DeleteCommand
	Status     *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "issuefilter"
	parser.LongDescription = "Parse, compare and store SonarQube issues page queries and facet results."

	cmds := &commands{
		Parse:      &ParseCommand{globals: &globals},
		Canonical:  &CanonicalCommand{globals: &globals},
		Equal:      &EqualCommand{globals: &globals},
		Facets:     &FacetsCommand{globals: &globals},
		FacetParam: &FacetParamCommand{globals: &globals},
		Mode:       &ModeCommand{globals: &globals},
		Save:       &SaveCommand{globals: &globals},
		List:       &ListCommand{globals: &globals},
		Show:       &ShowCommand{globals: &globals},
		Delete:     &DeleteCommand{globals: &globals},
		Status:     &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("parse", "Print the typed form of a query", "Parse an issues query string or URL and print every filter field.", cmds.Parse)
	parser.AddCommand("canonical", "Print the canonical form of a query", "Print the minimal wire form of a query, with defaults and unknown keys removed.", cmds.Canonical)
	parser.AddCommand("equal", "Compare two queries", "Report whether two queries select the same issues.", cmds.Equal)
	parser.AddCommand("facets", "Normalize facet results", "Read a JSON array of raw facets and print them keyed by filter field.", cmds.Facets)
	parser.AddCommand("facet-param", "Print facet request names", "Print the request parameter name for each facet.", cmds.FacetParam)
	parser.AddCommand("mode", "Show or set the issues default", "Show the issues page default, or set it to my or all.", cmds.Mode)
	parser.AddCommand("save", "Save a named filter", "Save a query under a name, in canonical form.", cmds.Save)
	parser.AddCommand("list", "List saved filters", "List all saved filters ordered by name.", cmds.List)
	parser.AddCommand("show", "Print a saved filter", "Print a saved filter with its parsed form.", cmds.Show)
	parser.AddCommand("delete", "Delete a saved filter", "Delete a saved filter by name.", cmds.Delete)
	parser.AddCommand("status", "Show database statistics", "Show the database location, saved filter counts and the issues default.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the issuefilter CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("issuefilter %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
