package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LuvaSoftEC/yopago/internal/apperr"
	"github.com/LuvaSoftEC/yopago/internal/models"
)

// CreateExpense persists the whole expense graph and the matching ledger
// increments in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, payer_id, amount, note, tag, currency, mode, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.PayerID, expense.Amount,
			expense.Note, expense.Tag, expense.Currency, string(expense.Mode), expense.CreatedAt,
		)
		if isDuplicateExpense(err) {
			// The unique index also catches two identical creates racing
			// past the service-level existence check.
			return apperr.Validation("duplicate expense")
		}
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		if err := insertShares(ctx, tx, expense.ID, expense.Shares); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, expense.ID, expense.Items); err != nil {
			return err
		}

		for _, share := range expense.Shares {
			delta := share.CalculatedAmount(expense.Amount)
			if err := incrementLedger(ctx, tx, expense.GroupID, share.MemberID, delta); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetExpense retrieves an expense with its shares and items.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var mode string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, amount, note, tag, currency, mode, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Amount,
		&expense.Note, &expense.Tag, &expense.Currency, &mode, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("expense not found: %s", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.Mode = models.SplitMode(mode)

	if expense.Shares, err = s.loadShares(ctx, expenseID); err != nil {
		return nil, err
	}
	if expense.Items, err = s.loadItems(ctx, expenseID); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves a group's expenses with their shares and
// items, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, amount, note, tag, currency, mode, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var mode string
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Amount,
			&expense.Note, &expense.Tag, &expense.Currency, &mode, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.Mode = models.SplitMode(mode)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if expense.Shares, err = s.loadShares(ctx, expense.ID); err != nil {
			return nil, err
		}
		if expense.Items, err = s.loadItems(ctx, expense.ID); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// UpdateExpense replaces the expense row, its shares and items wholesale,
// and shifts the ledger by the delta between old and new shares.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var oldAmount float64
		err := tx.QueryRowContext(ctx, "SELECT amount FROM expenses WHERE id = ?", expense.ID).Scan(&oldAmount)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("expense not found: %s", expense.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to get expense: %w", err)
		}

		// Back the old shares out of the ledger before replacement.
		oldShares, err := loadSharesTx(ctx, tx, expense.ID)
		if err != nil {
			return err
		}
		for _, share := range oldShares {
			if err := incrementLedger(ctx, tx, expense.GroupID, share.MemberID, -share.CalculatedAmount(oldAmount)); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE expenses SET group_id = ?, payer_id = ?, amount = ?, note = ?, tag = ?, currency = ?, mode = ?
			 WHERE id = ?`,
			expense.GroupID, expense.PayerID, expense.Amount, expense.Note,
			expense.Tag, expense.Currency, string(expense.Mode), expense.ID,
		)
		if isDuplicateExpense(err) {
			return apperr.Validation("duplicate expense")
		}
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}

		if err := deleteExpenseChildren(ctx, tx, expense.ID); err != nil {
			return err
		}
		if err := insertShares(ctx, tx, expense.ID, expense.Shares); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, expense.ID, expense.Items); err != nil {
			return err
		}

		for _, share := range expense.Shares {
			if err := incrementLedger(ctx, tx, expense.GroupID, share.MemberID, share.CalculatedAmount(expense.Amount)); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteExpense removes the expense graph and decrements the ledger by the
// removed shares.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var groupID string
		var amount float64
		err := tx.QueryRowContext(ctx,
			"SELECT group_id, amount FROM expenses WHERE id = ?", expenseID,
		).Scan(&groupID, &amount)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("expense not found: %s", expenseID)
		}
		if err != nil {
			return fmt.Errorf("failed to get expense: %w", err)
		}

		shares, err := loadSharesTx(ctx, tx, expenseID)
		if err != nil {
			return err
		}
		for _, share := range shares {
			if err := incrementLedger(ctx, tx, groupID, share.MemberID, -share.CalculatedAmount(amount)); err != nil {
				return err
			}
		}

		// Shares, items and item shares follow via cascade.
		if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return nil
	})
}

// ExpenseExists reports whether an identical (group, payer, amount, note)
// expense is already recorded.
func (s *SQLiteStore) ExpenseExists(ctx context.Context, groupID, payerID string, amount float64, note string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM expenses WHERE group_id = ? AND payer_id = ? AND amount = ? AND note = ?)`,
		groupID, payerID, amount, note,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check expense existence: %w", err)
	}
	return exists == 1, nil
}

// isDuplicateExpense reports whether err is a violation of the
// idx_expenses_dedupe unique index.
func isDuplicateExpense(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: expenses.group_id")
}

func insertShares(ctx context.Context, tx *sql.Tx, expenseID string, shares []models.Share) error {
	for _, share := range shares {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, member_id, amount, percentage) VALUES (?, ?, ?, ?)",
			expenseID, share.MemberID, share.Amount, share.Percentage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, expenseID string, items []models.Item) error {
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, expense_id, description, amount, quantity, position) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, expenseID, item.Description, item.Amount, item.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, is := range item.Shares {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO item_shares (item_id, member_id, share_type, amount, percentage) VALUES (?, ?, ?, ?, ?)",
				item.ID, is.MemberID, string(is.Type), is.Amount, is.Percentage,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item share: %w", err)
			}
		}
	}
	return nil
}

func deleteExpenseChildren(ctx context.Context, tx *sql.Tx, expenseID string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete shares: %w", err)
	}
	// Item shares follow via cascade.
	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadShares(ctx context.Context, expenseID string) ([]models.Share, error) {
	return queryShares(ctx, s.db, expenseID)
}

func loadSharesTx(ctx context.Context, tx *sql.Tx, expenseID string) ([]models.Share, error) {
	return queryShares(ctx, tx, expenseID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryShares(ctx context.Context, q querier, expenseID string) ([]models.Share, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT member_id, amount, percentage FROM expense_shares WHERE expense_id = ? ORDER BY member_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var share models.Share
		var amount, percentage sql.NullFloat64
		if err := rows.Scan(&share.MemberID, &amount, &percentage); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if amount.Valid {
			share.Amount = &amount.Float64
		}
		if percentage.Valid {
			share.Percentage = &percentage.Float64
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return shares, nil
}

func (s *SQLiteStore) loadItems(ctx context.Context, expenseID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, description, amount, quantity FROM items WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Description, &item.Amount, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range items {
		item := &items[i]
		shareRows, err := s.db.QueryContext(ctx,
			"SELECT member_id, share_type, amount, percentage FROM item_shares WHERE item_id = ? ORDER BY rowid",
			item.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get item shares: %w", err)
		}

		for shareRows.Next() {
			var is models.ItemShare
			var shareType string
			var amount, percentage sql.NullFloat64
			if err := shareRows.Scan(&is.MemberID, &shareType, &amount, &percentage); err != nil {
				shareRows.Close()
				return nil, fmt.Errorf("failed to scan item share: %w", err)
			}
			is.Type = models.ShareType(shareType)
			if amount.Valid {
				is.Amount = &amount.Float64
			}
			if percentage.Valid {
				is.Percentage = &percentage.Float64
			}
			item.Shares = append(item.Shares, is)
		}
		err = shareRows.Err()
		shareRows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate item shares: %w", err)
		}
	}
	return items, nil
}
