package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var defaultStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7D56F4"))

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#F45E6E"))

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6EF4A1"))

func printS(style lipgloss.Style, format string, a ...interface{}) {
	fmt.Println(style.Render(fmt.Sprintf(format, a...)))
}
