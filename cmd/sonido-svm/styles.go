package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-svm/classifier"
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#2E86AB")
	musicColor   = lipgloss.Color("#F18F01")
	speechColor  = lipgloss.Color("#3BB273")
	errorColor   = lipgloss.Color("#C73E1D")
	mutedColor   = lipgloss.Color("#888888")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	musicStyle  = lipgloss.NewStyle().Bold(true).Foreground(musicColor)
	speechStyle = lipgloss.NewStyle().Bold(true).Foreground(speechColor)
)

func renderClass(c classifier.Class) string {
	if c == classifier.Music {
		return musicStyle.Render(string(c))
	}
	return speechStyle.Render(string(c))
}

func printTitle(title string) {
	fmt.Println(titleStyle.Render(title))
}

func printKeyValue(key string, value any) {
	fmt.Printf("  %s %s\n", keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Error:"), err)
}
