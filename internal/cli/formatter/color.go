package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/casework/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// PhaseStatusPill renders a payment phase status such as "● Paid".
func PhaseStatusPill(s domain.PhaseStatus) string {
	switch s {
	case domain.PhasePaid:
		return StyleGreen.Render("● Paid")
	case domain.PhasePending:
		return StyleYellow.Render("○ Pending")
	default:
		return StyleDim.Render(string(s))
	}
}

func TaskStatusPill(s domain.TaskStatus) string {
	switch s {
	case domain.TaskOpen:
		return StyleBlue.Render("○ Open")
	case domain.TaskInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.TaskCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.TaskCancelled:
		return StyleDim.Render("✖ Cancelled")
	default:
		return StyleDim.Render(string(s))
	}
}

// SlotStatePill renders where a document slot is in its upload lifecycle.
func SlotStatePill(s domain.SlotState) string {
	switch s {
	case domain.SlotUploaded:
		return StyleGreen.Render("✔ uploaded")
	case domain.SlotFilePending:
		return StyleYellow.Render("◐ file pending")
	case domain.SlotUploading:
		return StyleBlue.Render("↑ uploading")
	case domain.SlotUploadFailed:
		return StyleRed.Render("✖ failed")
	case domain.SlotSelected:
		return StyleFg.Render("○ selected")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
