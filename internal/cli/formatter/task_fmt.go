package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/casework/internal/domain"
)

// FormatTask renders a task with its phases and documents. pending is the
// service amount not yet covered by phases.
func FormatTask(t *domain.Task, pending float64) string {
	var b strings.Builder

	customer := Dim("none")
	if t.Customer != nil {
		customer = t.Customer.Name
	}
	fields := [][2]string{
		{"ID", t.ID},
		{"Case type", t.CaseTypeID},
		{"Status", TaskStatusPill(t.Status)},
		{"Customer", customer},
		{"Due", Date(t.DueDate)},
		{"Service amount", Money(t.ServiceAmount)},
		{"Pending amount", pendingStyled(pending)},
	}
	for _, f := range fields {
		fmt.Fprintf(&b, "%s  %s\n", Dim(fmt.Sprintf("%-15s", f[0])), f[1])
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Description)
	}

	b.WriteString("\n" + Header("Payment phases") + "\n")
	if len(t.Phases) == 0 {
		b.WriteString(Dim("No phases yet.") + "\n")
	} else {
		b.WriteString(FormatPhases(t.Phases))
	}

	b.WriteString("\n" + Header("Documents") + "\n")
	if len(t.Documents) == 0 {
		b.WriteString(Dim("No documents uploaded.") + "\n")
	} else {
		b.WriteString(FormatDocuments(t.Documents))
	}

	return RenderBox(t.Title, strings.TrimRight(b.String(), "\n"))
}

func pendingStyled(pending float64) string {
	if pending == 0 {
		return StyleGreen.Render(Money(pending))
	}
	return StyleYellow.Render(Money(pending))
}

// FormatPhases renders phases as a numbered table; numbers are the 1-based
// indexes the phase commands accept.
func FormatPhases(phases []domain.PaymentPhase) string {
	rows := make([][]string, 0, len(phases))
	for i, p := range phases {
		due := p.DueDate
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Name,
			Date(&due),
			Date(p.PaymentDate),
			Money(p.Amount),
			PhaseStatusPill(p.Status),
			orDash(p.InvoiceNumber),
		})
	}
	return RenderTable([]string{"#", "PHASE", "DUE", "PAYMENT", "AMOUNT", "STATUS", "INVOICE"}, rows)
}

func FormatDocuments(docs []domain.Document) string {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		visible := StyleGreen.Render("yes")
		if !d.Visible {
			visible = Dim("no")
		}
		rows = append(rows, []string{
			TruncID(d.ID),
			d.Label,
			d.FileName,
			Bytes(d.SizeBytes),
			visible,
		})
	}
	return RenderTable([]string{"ID", "LABEL", "FILE", "SIZE", "VISIBLE"}, rows)
}

// FormatCategories lists labels with their catalog ids.
func FormatCategories(caseTypeID string, labels []string, ids map[string]int64) string {
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []string{strconv.FormatInt(ids[l], 10), l})
	}
	return Header("Categories: "+caseTypeID) + "\n" + RenderTable([]string{"ID", "LABEL"}, rows)
}
