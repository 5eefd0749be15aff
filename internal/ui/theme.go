// Package ui renders rentctl output with lipgloss.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/harrylevesque/rentnest/internal/models"
)

// Theme is the colour palette for terminal output. Colors are ANSI 256 codes.
type Theme struct {
	Name models.Theme

	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color
	Price      lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color

	StatusActive   lipgloss.Color
	StatusRented   lipgloss.Color
	StatusInactive lipgloss.Color

	LeadNew       lipgloss.Color
	LeadContacted lipgloss.Color
	LeadClosed    lipgloss.Color
}

var DarkTheme = Theme{
	Name:           models.ThemeDark,
	NormalText:     lipgloss.Color("252"),
	FaintText:      lipgloss.Color("243"),
	Accent:         lipgloss.Color("117"),
	Price:          lipgloss.Color("114"),
	Error:          lipgloss.Color("203"),
	Border:         lipgloss.Color("240"),
	StatusActive:   lipgloss.Color("114"),
	StatusRented:   lipgloss.Color("179"),
	StatusInactive: lipgloss.Color("243"),
	LeadNew:        lipgloss.Color("117"),
	LeadContacted:  lipgloss.Color("179"),
	LeadClosed:     lipgloss.Color("243"),
}

var LightTheme = Theme{
	Name:           models.ThemeLight,
	NormalText:     lipgloss.Color("235"),
	FaintText:      lipgloss.Color("245"),
	Accent:         lipgloss.Color("25"),
	Price:          lipgloss.Color("28"),
	Error:          lipgloss.Color("160"),
	Border:         lipgloss.Color("250"),
	StatusActive:   lipgloss.Color("28"),
	StatusRented:   lipgloss.Color("130"),
	StatusInactive: lipgloss.Color("245"),
	LeadNew:        lipgloss.Color("25"),
	LeadContacted:  lipgloss.Color("130"),
	LeadClosed:     lipgloss.Color("245"),
}

// ForTheme picks a palette. System follows the terminal background.
func ForTheme(t models.Theme) Theme {
	switch t {
	case models.ThemeLight:
		return LightTheme
	case models.ThemeDark:
		return DarkTheme
	}
	if lipgloss.HasDarkBackground() {
		return DarkTheme
	}
	return LightTheme
}

func (theme Theme) PropertyStatusColor(s models.PropertyStatus) lipgloss.Color {
	switch s {
	case models.StatusActive:
		return theme.StatusActive
	case models.StatusRented:
		return theme.StatusRented
	default:
		return theme.StatusInactive
	}
}

func (theme Theme) LeadStatusColor(s models.LeadStatus) lipgloss.Color {
	switch s {
	case models.LeadNew:
		return theme.LeadNew
	case models.LeadContacted:
		return theme.LeadContacted
	default:
		return theme.LeadClosed
	}
}
