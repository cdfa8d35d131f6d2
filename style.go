package main

import "github.com/charmbracelet/lipgloss"

// wrap a given string at 78 columns with a left margin.
var paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render

var keyword = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}).
	Render

var subtle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}).
	Render
