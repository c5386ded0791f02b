package core

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSplitYearMonth(t *testing.T) {
	cases := []struct {
		in          string
		year, month string
	}{
		{"2024-03-01", "2024", "03"},
		{"2024-3", "2024", "3"},
		{"2024/03/09", "2024", "03"},
		{"20240705", "2024", "07"},
		{"garbage", "", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		y, m := SplitYearMonth(tc.in)
		if y != tc.year || m != tc.month {
			t.Fatalf("%q expected %s/%s, got %s/%s", tc.in, tc.year, tc.month, y, m)
		}
	}
}

func TestMonthKey(t *testing.T) {
	if k, ok := MonthKey("2024-03-01"); !ok || k != "2024-03" {
		t.Fatalf("unexpected key %q ok=%v", k, ok)
	}
	if _, ok := MonthKey("2024/03/01"); ok {
		t.Fatalf("slash date must not produce a bucket key")
	}
}

func TestDefaultFilters(t *testing.T) {
	f := DefaultFilters(time.Date(2025, time.February, 9, 10, 0, 0, 0, time.UTC))
	if f.Year != "2025" || f.Month != "02" || f.Category != "" || f.DateFrom != "" || f.DateTo != "" {
		t.Fatalf("unexpected defaults %+v", f)
	}
	if !(FilterCriteria{}).IsEmpty() {
		t.Fatalf("zero filters should be empty")
	}
}

func TestFilterNormalize(t *testing.T) {
	f := FilterCriteria{Month: "3", Year: " 2024 "}.Normalize()
	if f.Month != "03" || f.Year != "2024" {
		t.Fatalf("unexpected normalized filters %+v", f)
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{Date: "2025-01-01", Category: "Food", Amount: "12.5"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		d   Draft
		err error
	}{
		{Draft{Date: "2025-01-01", Category: "Food"}, ErrMissingAmount},
		{Draft{Category: "Food", Amount: "1"}, ErrMissingDate},
		{Draft{Date: "2025-01-01", Amount: "1"}, ErrMissingCategory},
		{Draft{Date: "2025-01-01", Category: "Food", Amount: "x"}, ErrInvalidAmount},
	}
	for i, tc := range bads {
		if err := tc.d.Validate(); err != tc.err {
			t.Fatalf("case %d expected %v, got %v", i, tc.err, err)
		}
	}
}

func TestBlankDraftAndEditRoundTrip(t *testing.T) {
	now := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.Local)
	blank := BlankDraft(now)
	if blank.Date != "2025-03-04" || blank.Category != CategoryFood || blank.Amount != "" {
		t.Fatalf("unexpected blank draft %+v", blank)
	}

	rec := ExpenseRecord{ID: "1", Date: "2025-03-01", Category: "Bills", Description: "power", Amount: NewAmount(42.1)}
	in, err := DraftFrom(rec).Input()
	if err != nil {
		t.Fatalf("draft from record: %v", err)
	}
	if in.Date != rec.Date || in.Category != rec.Category || in.Description != rec.Description || !in.Amount.Equal(rec.Amount) {
		t.Fatalf("draft round trip changed the record: %+v", in)
	}
}

func TestIsKnownCategory(t *testing.T) {
	if !IsKnownCategory("Bills") || IsKnownCategory("bills") || IsKnownCategory("Pets") {
		t.Fatalf("category membership is an exact match")
	}
}

func TestIsValidationError(t *testing.T) {
	if !IsValidationError(fmt.Errorf("create: %w", ErrMissingDate)) {
		t.Fatalf("wrapped validation error not recognised")
	}
	if IsValidationError(errors.New("connection refused")) || IsValidationError(nil) {
		t.Fatalf("non-validation error recognised")
	}
}
