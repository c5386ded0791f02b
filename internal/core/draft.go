package core

import (
	"strings"
	"time"
)

// Draft is the add/edit form as typed by the user. Amount stays raw text
// so that a failed submission can be shown back unchanged.
type Draft struct {
	Date        string
	Category    string
	Description string
	Amount      string
}

// BlankDraft is the "add" form: today, Food, nothing else.
func BlankDraft(now time.Time) Draft {
	return Draft{
		Date:     DateKey(now),
		Category: CategoryFood,
	}
}

// DraftFrom loads a stored record into the form for editing.
func DraftFrom(r ExpenseRecord) Draft {
	return Draft{
		Date:        r.Date,
		Category:    r.Category,
		Description: r.Description,
		Amount:      r.Amount.Decimal().String(),
	}
}

// Validate checks that date, category and amount are present and that the
// amount is a non-negative number.
func (d Draft) Validate() error {
	_, err := d.Input()
	return err
}

// Input converts the draft to a request body.
func (d Draft) Input() (ExpenseInput, error) {
	if strings.TrimSpace(d.Amount) == "" {
		return ExpenseInput{}, ErrMissingAmount
	}
	if strings.TrimSpace(d.Date) == "" {
		return ExpenseInput{}, ErrMissingDate
	}
	if strings.TrimSpace(d.Category) == "" {
		return ExpenseInput{}, ErrMissingCategory
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return ExpenseInput{}, err
	}
	return ExpenseInput{
		Date:        strings.TrimSpace(d.Date),
		Category:    strings.TrimSpace(d.Category),
		Description: strings.TrimSpace(d.Description),
		Amount:      amount,
	}, nil
}
