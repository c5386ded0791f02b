package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

// Store keeps the expense collection in insertion order.
type Store struct {
	mu    sync.Mutex
	items []core.ExpenseRecord
	newID func() core.RecordID
}

func New() *Store {
	return &Store{newID: func() core.RecordID { return core.RecordID(uuid.NewString()) }}
}

// NewFromFile seeds the store from a JSON-lines file of expense records.
// Blank lines and lines starting with '#' are skipped. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var r core.ExpenseRecord
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return nil, fmt.Errorf("seed line %d: %w", line, err)
		}
		if r.ID.IsZero() {
			r.ID = s.newID()
		}
		s.items = append(s.items, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return s, nil
}

func (s *Store) ListAll(_ context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExpenseRecord(nil), s.items...), nil
}

func (s *Store) Create(_ context.Context, in core.ExpenseInput) (core.ExpenseRecord, error) {
	if err := in.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := in.WithID(s.newID())
	s.items = append(s.items, r)
	return r, nil
}

func (s *Store) Update(_ context.Context, id core.RecordID, in core.ExpenseInput) (core.ExpenseRecord, error) {
	if err := in.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ExpenseRecord{}, store.ErrNotFound
	}
	s.items[i] = in.WithID(id)
	return s.items[i], nil
}

func (s *Store) Remove(_ context.Context, id core.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Summary totals every stored record per category.
func (s *Store) Summary(_ context.Context) ([]core.CategoryTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.CategoryTotals(s.items), nil
}

func (s *Store) indexOf(id core.RecordID) int {
	for i, r := range s.items {
		if r.ID == id {
			return i
		}
	}
	return -1
}

var _ store.RecordStore = (*Store)(nil)
