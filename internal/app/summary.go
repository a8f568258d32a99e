package app

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"pixelle/internal/config"
	pstrings "pixelle/pkg/strings"
)

// WriteSummary prints the current configuration as a table. Credentials
// are never printed.
func WriteSummary(w io.Writer, s config.Settings) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.Bold.Sprint("SETTING"), text.Bold.Sprint("VALUE")})

	t.AppendRow(table.Row{"Workflow engine", s.Config.Engine.Endpoint})
	if s.Config.Providers.Len() == 0 {
		t.AppendRow(table.Row{"Providers", text.FgYellow.Sprint("none")})
	}
	for _, p := range s.Config.Providers.All() {
		value := strings.Join(p.Models, ", ")
		if p.Credential != "" {
			value += " (key " + pstrings.Mask(p.Credential) + ")"
		}
		t.AppendRow(table.Row{p.Spec().DisplayName, value})
	}
	model := s.DefaultModel()
	if model == "" {
		model = "-"
	}
	t.AppendRow(table.Row{"Default model", model})
	t.AppendRow(table.Row{"Server", s.Config.Service.BaseURL()})
	webUI := text.FgGreen.Sprint("enabled")
	if !s.WebUIEnabled {
		webUI = text.FgYellow.Sprint("disabled")
	}
	t.AppendRow(table.Row{"Web UI", webUI})
	t.Render()
}
