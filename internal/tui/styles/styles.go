// Package styles provides shared lipgloss styles for command output.
package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette using ANSI colors for broad terminal compatibility.
var (
	Primary   = lipgloss.Color("4")   // Blue
	Secondary = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
	Success   = lipgloss.Color("2")   // Green
	Warning   = lipgloss.Color("3")   // Yellow
	Error     = lipgloss.Color("1")   // Red
	Highlight = lipgloss.Color("12")  // Bright blue
	Muted     = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
)

// Text styles.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Header = lipgloss.NewStyle().
		Bold(true).
		Underline(true)

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("7"))

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	UUIDText = lipgloss.NewStyle().
			Foreground(Highlight)
)

// Section wraps a block of related lines, such as the diagnostics after an order.
var Section = lipgloss.NewStyle().
	PaddingLeft(2)

// Indicators.
const (
	OKIndicator      = "✓"
	WarningIndicator = "!"
	ErrorIndicator   = "✗"
	BulletIndicator  = "•"
)

// OK renders a success line.
func OK(format string, args ...any) string {
	return SuccessText.Render(OKIndicator) + " " + fmt.Sprintf(format, args...)
}

// Warn renders a warning line.
func Warn(format string, args ...any) string {
	return WarningText.Render(WarningIndicator) + " " + fmt.Sprintf(format, args...)
}

// Fail renders an error line.
func Fail(format string, args ...any) string {
	return ErrorText.Render(ErrorIndicator) + " " + fmt.Sprintf(format, args...)
}

// Bullet renders a list item.
func Bullet(format string, args ...any) string {
	return MutedText.Render(BulletIndicator) + " " + fmt.Sprintf(format, args...)
}
