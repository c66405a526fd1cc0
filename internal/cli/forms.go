package cli

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/casework/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// caseworkHuhTheme styles huh forms with the formatter palette.
func caseworkHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// phaseFormValues holds the raw text a user types into the phase form.
type phaseFormValues struct {
	Name        string
	DueDate     string
	PaymentDate string
	Amount      string
}

// phaseInputForm collects a payment phase. suggestions are offered for the
// name; any other name is accepted.
func phaseInputForm(suggestions []string, v *phaseFormValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Phase Name").
				Suggestions(suggestions).
				Value(&v.Name).
				Validate(validateRequired),
			huh.NewInput().
				Title("Due Date (YYYY-MM-DD)").
				Placeholder(time.Now().Format(dateLayout)).
				Value(&v.DueDate).
				Validate(validateRequiredDate),
			huh.NewInput().
				Title("Amount").
				Value(&v.Amount).
				Validate(validatePositiveAmount),
			huh.NewInput().
				Title("Payment Date (blank follows due date)").
				Value(&v.PaymentDate).
				Validate(validateOptionalDate),
		),
	).WithTheme(caseworkHuhTheme()).WithShowHelp(false)
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return errors.New("use YYYY-MM-DD format")
	}
	return nil
}

func validateRequiredDate(s string) error {
	if err := validateRequired(s); err != nil {
		return err
	}
	return validateOptionalDate(s)
}

func validatePositiveAmount(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return errors.New("enter a positive amount")
	}
	return nil
}
