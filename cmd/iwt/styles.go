package main

import (
	"os"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-isatty"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// styled renders text with the style only when stderr is a terminal, so
// redirected output stays plain.
func styled(s lipgloss.Style, text string) string {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return text
	}
	return s.Render(text)
}

func symbolOK() string    { return styled(successStyle, "✓") }
func symbolFail() string  { return styled(errorStyle, "✗") }
func symbolArrow() string { return styled(mutedStyle, "→") }
