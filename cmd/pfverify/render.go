package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	hashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, headerStyle.Render(title))
}

func printField(w io.Writer, label string, value any) {
	fmt.Fprintln(w, labelStyle.Render(label)+valueStyle.Render(fmt.Sprint(value)))
}

func printHash(w io.Writer, label, hash string) {
	if hash == "" {
		return
	}
	fmt.Fprintln(w, labelStyle.Render(label)+hashStyle.Render(hash))
}

// outcomeStyle colors WIN/SAFE style outcomes green and the rest red.
func outcomeStyle(outcome string) lipgloss.Style {
	switch strings.ToUpper(outcome) {
	case "WIN", "SAFE", "HEADS":
		return winStyle
	default:
		return lossStyle
	}
}

// printDetails renders the game-specific details as indented JSON below
// the summary fields, with any win/loss outcome highlighted first.
func printDetails(w io.Writer, details any) error {
	if details == nil {
		return nil
	}
	b, err := json.MarshalIndent(details, "  ", "  ")
	if err != nil {
		return fmt.Errorf("render details: %w", err)
	}

	var fields map[string]any
	if json.Unmarshal(b, &fields) == nil {
		if outcome, ok := fields["result"].(string); ok {
			fmt.Fprintln(w, labelStyle.Render("outcome")+outcomeStyle(outcome).Render(outcome))
		}
	}

	fmt.Fprintln(w, labelStyle.Render("details"))
	fmt.Fprintln(w, "  "+string(b))
	return nil
}
