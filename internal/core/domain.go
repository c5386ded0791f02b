package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryBills         = "Bills"
	CategoryShopping      = "Shopping"
	CategoryEntertainment = "Entertainment"
	CategoryOther         = "Other"
)

// Categories is the fixed set offered by the form, in display order.
var Categories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryBills,
	CategoryShopping,
	CategoryEntertainment,
	CategoryOther,
}

type (
	// RecordID is the opaque identifier assigned by the record store.
	RecordID string

	// ExpenseRecord is a single expense as held by the remote store.
	ExpenseRecord struct {
		ID          RecordID `json:"id"`
		Date        string   `json:"date"` // YYYY-MM-DD
		Category    string   `json:"category"`
		Description string   `json:"description"`
		Amount      Amount   `json:"amount"`
	}

	// ExpenseInput is a record without its id, the body of create and update.
	ExpenseInput struct {
		Date        string `json:"date"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Amount      Amount `json:"amount"`
	}

	// CategoryTotal is the summed amount of one category.
	CategoryTotal struct {
		Category string `json:"category"`
		Total    Amount `json:"total"`
	}
)

var (
	ErrMissingDate     = errors.New("date is required")
	ErrMissingCategory = errors.New("category is required")
	ErrMissingAmount   = errors.New("amount is required")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
)

// IsValidationError reports whether err stems from record validation rather
// than from storage or transport.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrMissingDate,
		ErrMissingCategory,
		ErrMissingAmount,
		ErrInvalidAmount,
		ErrInvalidDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsKnownCategory reports whether c belongs to the fixed category set.
// Records outside the set are accepted and rendered as-is.
func IsKnownCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// IsZero reports whether the id has not been assigned yet.
func (id RecordID) IsZero() bool {
	return id == ""
}

func (id RecordID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both string and numeric ids.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("record id must be a string or a number")
	}
	*id = RecordID(n.String())
	return nil
}

// Input strips the id, giving the full replacement body for an update.
func (r ExpenseRecord) Input() ExpenseInput {
	return ExpenseInput{
		Date:        r.Date,
		Category:    r.Category,
		Description: r.Description,
		Amount:      r.Amount,
	}
}

// WithID attaches a store-assigned id to the input.
func (in ExpenseInput) WithID(id RecordID) ExpenseRecord {
	return ExpenseRecord{
		ID:          id,
		Date:        in.Date,
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
	}
}

// Validate checks required-field presence only.
func (in ExpenseInput) Validate() error {
	if strings.TrimSpace(in.Date) == "" {
		return ErrMissingDate
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrMissingCategory
	}
	if in.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// ParseID converts a path segment into a RecordID.
func ParseID(s string) (RecordID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty record id")
	}
	if strings.ContainsAny(s, "/?#") {
		return "", errors.New("malformed record id")
	}
	return RecordID(s), nil
}
