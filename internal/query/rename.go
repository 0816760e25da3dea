package query

// fieldToWire maps internal field names to the parameter names the issues
// API expects. Only these three differ between the two sides.
var fieldToWire = map[string]string{
	"files":    "fileUuids",
	"modules":  "moduleUuids",
	"projects": "projectUuids",
}

var wireToField = map[string]string{
	"fileUuids":    "files",
	"moduleUuids":  "modules",
	"projectUuids": "projects",
}

// WireName returns the wire parameter name for an internal field name.
// Unmapped names are returned unchanged.
func WireName(field string) string {
	if w, ok := fieldToWire[field]; ok {
		return w
	}
	return field
}

// FieldName returns the internal field name for a wire parameter name.
// Unmapped names are returned unchanged.
func FieldName(wire string) string {
	if f, ok := wireToField[wire]; ok {
		return f
	}
	return wire
}
