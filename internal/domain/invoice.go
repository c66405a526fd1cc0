package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// MinInvoiceOrdinalWidth is the smallest zero-padded width of an invoice ordinal.
const MinInvoiceOrdinalWidth = 4

var (
	trailingDigitsPattern = regexp.MustCompile(`^(.*?)(\d+)$`)
	prefixYearPattern     = regexp.MustCompile(`^(.+)-(\d{2,4})-$`)
)

// InvoiceNumber is a parsed invoice identifier of the form <PREFIX>-<YEAR>-<NNNN>.
// Numbers that do not follow the year layout keep the whole text before the
// ordinal in Prefix and leave Year empty.
type InvoiceNumber struct {
	Prefix  string
	Year    string
	Ordinal int
	Width   int
}

// ParseInvoiceNumber splits s into its head and trailing ordinal.
// It reports false when s has no trailing digit run or the run does not fit an int.
func ParseInvoiceNumber(s string) (InvoiceNumber, bool) {
	m := trailingDigitsPattern.FindStringSubmatch(s)
	if m == nil {
		return InvoiceNumber{}, false
	}
	head, digits := m[1], m[2]
	ordinal, err := strconv.Atoi(digits)
	if err != nil {
		return InvoiceNumber{}, false
	}
	n := InvoiceNumber{
		Prefix:  head,
		Ordinal: ordinal,
		Width:   max(len(digits), MinInvoiceOrdinalWidth),
	}
	if ym := prefixYearPattern.FindStringSubmatch(head); ym != nil {
		n.Prefix = ym[1]
		n.Year = ym[2]
	}
	return n, true
}

// FirstInvoiceNumber is the number issued when no previous number exists:
// <prefix>-<two-digit year>-0001.
func FirstInvoiceNumber(prefix string, now time.Time) InvoiceNumber {
	return InvoiceNumber{
		Prefix:  prefix,
		Year:    fmt.Sprintf("%02d", now.Year()%100),
		Ordinal: 1,
		Width:   MinInvoiceOrdinalWidth,
	}
}

// Next returns the following number, keeping prefix, year and padding width.
func (n InvoiceNumber) Next() InvoiceNumber {
	n.Ordinal++
	return n
}

func (n InvoiceNumber) String() string {
	width := max(n.Width, MinInvoiceOrdinalWidth)
	if n.Year == "" {
		return fmt.Sprintf("%s%0*d", n.Prefix, width, n.Ordinal)
	}
	return fmt.Sprintf("%s-%s-%0*d", n.Prefix, n.Year, width, n.Ordinal)
}

// InvoiceDocument is the validated input handed to the external invoice renderer.
type InvoiceDocument struct {
	InvoiceNumber string
	IssuedOn      time.Time
	Phase         PaymentPhase
	Task          Task
	Customer      Customer
}

// Validate checks that the renderer receives everything it needs.
func (d InvoiceDocument) Validate() error {
	if !IsIssuedInvoiceNumber(d.InvoiceNumber) {
		return NewValidationError("invoice_number", "required", "invoice number is required")
	}
	if !d.Phase.IsPersisted() {
		return NewValidationError("phase", "persisted", "phase must be saved before invoicing")
	}
	if d.Phase.Amount <= 0 {
		return NewValidationError("phase_amount", "positive", "phase amount must be a positive number")
	}
	if d.Task.Title == "" {
		return NewValidationError("task.title", "required", "task title is required")
	}
	if d.Customer.Name == "" {
		return NewValidationError("customer.name", "required", "customer name is required")
	}
	return nil
}
