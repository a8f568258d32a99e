package status

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	pstrings "pixelle/pkg/strings"
)

// OutputFormat selects how a Report is written.
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a user-supplied format.
func ParseOutputFormat(format string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(format)); f {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q (valid: table, json, yaml)", format)
	}
}

// Write renders r to w in format.
func (r Report) Write(w io.Writer, format OutputFormat) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		r.writeTable(w)
		return nil
	}
}

var displayNames = map[string]string{
	CheckMCPEndpoint: "MCP endpoint",
	CheckWebUI:       "Web UI",
	CheckEngine:      "Workflow engine",
}

func displayName(name string) string {
	if d, ok := displayNames[name]; ok {
		return d
	}
	if id, ok := strings.CutPrefix(name, providerPrefix); ok {
		return "Provider " + id
	}
	return name
}

func (r Report) writeTable(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Bold.Sprint("SERVICE"),
		text.Bold.Sprint("ADDRESS"),
		text.Bold.Sprint("STATUS"),
		text.Bold.Sprint("DETAIL"),
	})
	for _, c := range r.Checks {
		state := text.FgGreen.Sprint("● reachable")
		if !c.Reachable {
			state = text.FgRed.Sprint("● unreachable")
		}
		t.AppendRow(table.Row{displayName(c.Name), c.URL, state, pstrings.Truncate(c.Detail, pstrings.DetailMaxLen)})
	}
	t.Render()

	if len(r.Providers) > 0 {
		fmt.Fprintf(w, "\nProviders: %s (%d)\n", strings.Join(r.Providers, ", "), len(r.Providers))
		fmt.Fprintf(w, "Models: %d\n", r.ModelCount)
		fmt.Fprintf(w, "Default model: %s\n", r.DefaultModel)
	} else {
		fmt.Fprintf(w, "\n%s No model provider configured\n", text.FgYellow.Sprint("⚠"))
	}

	if r.Healthy() {
		fmt.Fprintf(w, "\n%s All services are running\n", text.FgGreen.Sprint("✓"))
		return
	}
	fmt.Fprintf(w, "\n%s %d/%d services reachable\n", text.FgYellow.Sprint("⚠"), r.Reachable(), r.Total())
	fmt.Fprintln(w, "Start the server with 'pixelle start' or check the configuration with 'pixelle manual'.")
}
