package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/strongo/decimal"
)

// Repository handles expense, participant, line item and payment persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GroupExists reports whether a group row exists
func (r *Repository) GroupExists(ctx context.Context, groupID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)`, groupID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group: %w", err)
	}
	return exists, nil
}

// ListGroupMemberIDs returns the member ids of a group in insertion order
func (r *Repository) ListGroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM group_members WHERE group_id = $1 ORDER BY created_at, id`, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group member ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CreateExpense inserts an expense with its participants and line items in
// one transaction.
func (r *Repository) CreateExpense(ctx context.Context, e *Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (id, group_id, name, vendor, description, amount, currency, date, split_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		e.ID,
		e.GroupID,
		e.Name,
		e.Vendor,
		e.Description,
		AmountText(e.Amount),
		e.Currency,
		e.Date,
		e.SplitType,
		e.Status,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, e); err != nil {
		return err
	}

	for _, li := range e.LineItems {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expense_line_items (id, expense_id, description, category, quantity, unit_amount, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			li.ID,
			e.ID,
			li.Description,
			li.Category,
			AmountText(li.Quantity),
			AmountText(li.UnitAmount),
			AmountText(li.TotalAmount),
		)
		if err != nil {
			return fmt.Errorf("failed to create line item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}
	return nil
}

// UpdateExpense updates an expense row and, when replaceParticipants is set,
// swaps its participant list in the same transaction.
func (r *Repository) UpdateExpense(ctx context.Context, e *Expense, replaceParticipants bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE expenses
		SET name = $2, vendor = $3, description = $4, amount = $5, currency = $6,
		    date = $7, split_type = $8, status = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		e.ID,
		e.Name,
		e.Vendor,
		e.Description,
		AmountText(e.Amount),
		e.Currency,
		e.Date,
		e.SplitType,
		e.Status,
	).Scan(&e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	if replaceParticipants {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_participants WHERE expense_id = $1`, e.ID); err != nil {
			return fmt.Errorf("failed to clear participants: %w", err)
		}
		if err := insertParticipants(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense update: %w", err)
	}
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, e *Expense) error {
	for i, p := range e.Participants {
		var share *string
		if p.ShareAmount != nil {
			s := p.ShareAmount.String()
			share = &s
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expense_participants (id, expense_id, member_id, share_amount, position)
			VALUES ($1, $2, $3, $4, $5)`,
			p.ID, e.ID, p.MemberID, share, i,
		)
		if err != nil {
			return fmt.Errorf("failed to create participant: %w", err)
		}
	}
	return nil
}

// GetExpenseByID retrieves one expense with its participants, line items and
// payments, or nil when it does not exist.
func (r *Repository) GetExpenseByID(ctx context.Context, id string) (*Expense, error) {
	query := `
		SELECT id, group_id, name, vendor, description, amount, currency, date, split_type, status, created_at, updated_at
		FROM expenses
		WHERE id = $1
	`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := r.loadChildren(ctx, []*Expense{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListExpensesByGroupID retrieves a page of a group's expenses, newest date
// first, with children attached. Total is the unpaginated count.
func (r *Repository) ListExpensesByGroupID(ctx context.Context, groupID string, limit, offset int) ([]*Expense, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE group_id = $1`, groupID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT id, group_id, name, vendor, description, amount, currency, date, split_type, status, created_at, updated_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	expenses, err := r.queryExpenses(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// ListAllExpensesByGroupID retrieves a group's full expense list with
// children, the snapshot that balance computation works from.
func (r *Repository) ListAllExpensesByGroupID(ctx context.Context, groupID string) ([]*Expense, error) {
	query := `
		SELECT id, group_id, name, vendor, description, amount, currency, date, split_type, status, created_at, updated_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY date, created_at
	`
	return r.queryExpenses(ctx, query, groupID)
}

func (r *Repository) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// DeleteExpense deletes an expense and its children (cascaded in schema)
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

// CreatePayment inserts a payment toward an expense
func (r *Repository) CreatePayment(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO expense_payments (id, expense_id, payer_id, amount, currency, notes, receipt_url, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.ExpenseID,
		p.PayerID,
		AmountText(p.Amount),
		p.Currency,
		p.Notes,
		p.ReceiptURL,
		p.PaidAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetPaymentByID retrieves a payment, or nil when it does not exist
func (r *Repository) GetPaymentByID(ctx context.Context, id string) (*Payment, error) {
	query := `
		SELECT id, expense_id, payer_id, amount, currency, notes, receipt_url, paid_at, created_at, updated_at
		FROM expense_payments
		WHERE id = $1
	`

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// UpdatePayment updates a payment's mutable fields
func (r *Repository) UpdatePayment(ctx context.Context, p *Payment) error {
	query := `
		UPDATE expense_payments
		SET payer_id = $2, amount = $3, notes = $4, receipt_url = $5, paid_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.PayerID,
		AmountText(p.Amount),
		p.Notes,
		p.ReceiptURL,
		p.PaidAt,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return nil
}

// DeletePayment deletes a payment
func (r *Repository) DeletePayment(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expense_payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

// loadChildren attaches participants, line items and payments to the given
// expenses with one query per child table.
func (r *Repository) loadChildren(ctx context.Context, expenses []*Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	byID := make(map[string]*Expense, len(expenses))
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		ids[i] = e.ID
		e.Participants = []*Participant{}
		e.LineItems = []*LineItem{}
		e.Payments = []*Payment{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, expense_id, member_id, share_amount
		FROM expense_participants
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, position`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p := &Participant{}
		var share sql.NullString
		if err := rows.Scan(&p.ID, &p.ExpenseID, &p.MemberID, &share); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		if share.Valid {
			v, err := decimal.ParseDecimal64p2(share.String)
			if err != nil {
				return fmt.Errorf("failed to parse share amount: %w", err)
			}
			p.ShareAmount = &v
		}
		if e, ok := byID[p.ExpenseID]; ok {
			e.Participants = append(e.Participants, p)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	liRows, err := r.db.QueryContext(ctx, `
		SELECT id, expense_id, description, category, quantity, unit_amount, total_amount
		FROM expense_line_items
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list line items: %w", err)
	}
	defer liRows.Close()
	for liRows.Next() {
		li := &LineItem{}
		var quantity, unitAmount, totalAmount string
		if err := liRows.Scan(&li.ID, &li.ExpenseID, &li.Description, &li.Category, &quantity, &unitAmount, &totalAmount); err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		if li.Quantity, err = decimal.ParseDecimal64p2(quantity); err != nil {
			return fmt.Errorf("failed to parse line item quantity: %w", err)
		}
		if li.UnitAmount, err = decimal.ParseDecimal64p2(unitAmount); err != nil {
			return fmt.Errorf("failed to parse line item unit amount: %w", err)
		}
		if li.TotalAmount, err = decimal.ParseDecimal64p2(totalAmount); err != nil {
			return fmt.Errorf("failed to parse line item total: %w", err)
		}
		if e, ok := byID[li.ExpenseID]; ok {
			e.LineItems = append(e.LineItems, li)
		}
	}
	if err := liRows.Err(); err != nil {
		return err
	}

	payRows, err := r.db.QueryContext(ctx, `
		SELECT id, expense_id, payer_id, amount, currency, notes, receipt_url, paid_at, created_at, updated_at
		FROM expense_payments
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, created_at, id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list payments: %w", err)
	}
	defer payRows.Close()
	for payRows.Next() {
		p, err := scanPayment(payRows)
		if err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		if e, ok := byID[p.ExpenseID]; ok {
			e.Payments = append(e.Payments, p)
		}
	}
	return payRows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*Expense, error) {
	e := &Expense{}
	var amount string
	if err := row.Scan(
		&e.ID,
		&e.GroupID,
		&e.Name,
		&e.Vendor,
		&e.Description,
		&amount,
		&e.Currency,
		&e.Date,
		&e.SplitType,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if e.Amount, err = decimal.ParseDecimal64p2(amount); err != nil {
		return nil, fmt.Errorf("failed to parse expense amount: %w", err)
	}
	return e, nil
}

func scanPayment(row rowScanner) (*Payment, error) {
	p := &Payment{}
	var amount string
	if err := row.Scan(
		&p.ID,
		&p.ExpenseID,
		&p.PayerID,
		&amount,
		&p.Currency,
		&p.Notes,
		&p.ReceiptURL,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if p.Amount, err = decimal.ParseDecimal64p2(amount); err != nil {
		return nil, fmt.Errorf("failed to parse payment amount: %w", err)
	}
	return p, nil
}
