package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFacets = `[
  {"property": "fileUuids", "values": [{"val": "f1", "count": 1200}, {"val": "f2", "count": 0}]},
  {"property": "tags", "values": [{"val": "x", "count": 3}, {"val": "x", "count": 4}]}
]`

func runFacets(t *testing.T, cmd *FacetsCommand) (string, error) {
	t.Helper()
	var err error
	output := captureOutput(t, func() {
		err = cmd.Execute(nil)
	})
	return output, err
}

func TestFacets_JSONFromStdin(t *testing.T) {
	isolateHome(t)

	cmd := &FacetsCommand{
		globals: &GlobalFlags{JSON: true},
		stdin:   strings.NewReader(sampleFacets),
	}
	output, err := runFacets(t, cmd)
	require.NoError(t, err)

	var out map[string]map[string]int
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, map[string]map[string]int{
		"files": {"f1": 1200, "f2": 0},
		"tags":  {"x": 4},
	}, out)
}

func TestFacets_Human(t *testing.T) {
	isolateHome(t)

	cmd := &FacetsCommand{
		globals: &GlobalFlags{},
		stdin:   strings.NewReader(sampleFacets),
	}
	output, err := runFacets(t, cmd)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "files:", lines[0])
	assert.Contains(t, lines[1], "f1")
	assert.Contains(t, lines[1], "1200")
	assert.Contains(t, lines[2], "f2")
	assert.Equal(t, "tags:", lines[3])
	assert.Contains(t, lines[4], "4")
}

func TestFacets_Stats(t *testing.T) {
	isolateHome(t)

	cmd := &FacetsCommand{
		Stats:   true,
		globals: &GlobalFlags{JSON: true},
		stdin:   strings.NewReader(sampleFacets),
	}
	output, err := runFacets(t, cmd)
	require.NoError(t, err)

	var out map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, map[string]map[string]string{
		"files": {"f1": "1.2k"},
		"tags":  {"x": "4"},
	}, out)
}

func TestFacets_StatsHumanMarksZero(t *testing.T) {
	isolateHome(t)

	cmd := &FacetsCommand{
		Stats:   true,
		globals: &GlobalFlags{},
		stdin:   strings.NewReader(sampleFacets),
	}
	output, err := runFacets(t, cmd)
	require.NoError(t, err)

	assert.Regexp(t, `f1\s+1\.2k`, output)
	assert.Regexp(t, `f2\s+-`, output)
}

func TestFacets_FromFile(t *testing.T) {
	isolateHome(t)

	path := filepath.Join(t.TempDir(), "facets.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFacets), 0644))

	output, err := runCapture(t, "--json", "facets", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, output, `"files"`)
	assert.NotContains(t, output, `"fileUuids"`)
}

func TestFacets_MissingFile(t *testing.T) {
	isolateHome(t)

	err := RunWithArgs("test", []string{"facets", "--file", filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open facets file")
}

func TestFacets_InvalidJSON(t *testing.T) {
	isolateHome(t)

	cmd := &FacetsCommand{
		globals: &GlobalFlags{},
		stdin:   strings.NewReader(`{"property": "tags"}`),
	}
	_, err := runFacets(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode facets")
}

func TestFacetParam(t *testing.T) {
	output, err := runCapture(t, "facet-param", "files", "modules", "projects", "severities")
	require.NoError(t, err)
	assert.Equal(t, "fileUuids\nmoduleUuids\nprojectUuids\nseverities\n", output)
}

func TestFacetParam_JSON(t *testing.T) {
	output, err := runCapture(t, "--json", "facet-param", "files", "tags")
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, map[string]string{"files": "fileUuids", "tags": "tags"}, out)
}

func TestFacetParam_RequiresName(t *testing.T) {
	err := RunWithArgs("test", []string{"facet-param"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one facet name")
}
