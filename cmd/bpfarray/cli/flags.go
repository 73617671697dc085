package cli

// OutputFormat is the output format for commands that print records.
type OutputFormat string

const (
	// OutputTable formats output as a column-aligned table.
	OutputTable OutputFormat = "table"
	// OutputJSON formats output as indented JSON.
	OutputJSON OutputFormat = "json"
)

// OutputFlags is embedded by commands that support multiple output
// formats.
type OutputFlags struct {
	Output string `short:"o" help:"Output format (table|json)." enum:"table,json" default:"table"`
}

// Format returns the parsed output format.
func (f OutputFlags) Format() OutputFormat {
	return OutputFormat(f.Output)
}
