package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Expense is one row of the expenses table. Amount is the exact decimal
// text.
type Expense struct {
	ID          string
	Date        string
	Category    string
	Description string
	Amount      string
}

const listExpenses = `-- name: ListExpenses :many
SELECT id, date, category, description, amount
FROM expenses
ORDER BY rowid
`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Expense{}
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Date, &i.Category, &i.Description, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getExpense = `-- name: GetExpense :one
SELECT id, date, category, description, amount
FROM expenses
WHERE id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id string) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.Date, &i.Category, &i.Description, &i.Amount)
	return i, err
}

const createExpense = `-- name: CreateExpense :exec
INSERT INTO expenses (id, date, category, description, amount)
VALUES (?, ?, ?, ?, ?)
`

type CreateExpenseParams struct {
	ID          string
	Date        string
	Category    string
	Description string
	Amount      string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) error {
	_, err := q.db.ExecContext(ctx, createExpense,
		arg.ID,
		arg.Date,
		arg.Category,
		arg.Description,
		arg.Amount,
	)
	return err
}

const updateExpense = `-- name: UpdateExpense :execrows
UPDATE expenses
SET date = ?, category = ?, description = ?, amount = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdateExpenseParams struct {
	Date        string
	Category    string
	Description string
	Amount      string
	ID          string
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateExpense,
		arg.Date,
		arg.Category,
		arg.Description,
		arg.Amount,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses
WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countExpenses = `-- name: CountExpenses :one
SELECT COUNT(*) FROM expenses
`

func (q *Queries) CountExpenses(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countExpenses)
	var count int64
	err := row.Scan(&count)
	return count, err
}
