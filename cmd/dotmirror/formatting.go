package main

import (
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dotmirror/dotmirror/pkg/types"
)

// stdoutIsTerminal reports whether styled output makes sense
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	if !stdoutIsTerminal() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":  formatBold,
		"upper": strings.ToUpper,
	})
}

var changeStyles = map[types.ChangeType]lipgloss.Style{
	types.ChangeUnchanged:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	types.ChangeSourceChanged: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	types.ChangeSystemChanged: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	types.ChangeConflict:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	types.ChangeMissingSystem: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	types.ChangeMissingSource: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	types.ChangeOutOfSync:     lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
}

// renderChange returns the change label, colored on terminals
func renderChange(change types.ChangeType) string {
	if !stdoutIsTerminal() {
		return string(change)
	}
	if style, ok := changeStyles[change]; ok {
		return style.Render(string(change))
	}
	return string(change)
}
