package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LuvaSoftEC/yopago/internal/calculator"
	"github.com/LuvaSoftEC/yopago/internal/models"
)

// incrementLedger applies one atomic increment to the (group, member) ledger
// row. The add happens inside the database, so two concurrent expense writes
// for the same pair can never lose an update the way a read-then-write
// upsert would.
func incrementLedger(ctx context.Context, tx *sql.Tx, groupID, memberID string, delta float64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO aggregate_balances (group_id, member_id, total, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(group_id, member_id)
		 DO UPDATE SET total = ROUND(total + excluded.total, 2), updated_at = excluded.updated_at`,
		groupID, memberID, calculator.Round2(delta), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ledger row: %w", err)
	}
	return nil
}

// ListAggregateBalances returns the ledger cache rows for a group, keyed by
// member.
func (s *SQLiteStore) ListAggregateBalances(ctx context.Context, groupID string) (map[string]models.AggregateBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT group_id, member_id, total, updated_at FROM aggregate_balances WHERE group_id = ?",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]models.AggregateBalance)
	for rows.Next() {
		var b models.AggregateBalance
		if err := rows.Scan(&b.GroupID, &b.MemberID, &b.Total, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		balances[b.MemberID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger rows: %w", err)
	}
	return balances, nil
}

// ApplyResplit atomically replaces the shares of every listed expense,
// discards item shares, forces equal-split mode and rebuilds the group's
// ledger cache from the new shares. A failure anywhere rolls the whole
// group back to its previous state, so re-running the operation is safe.
func (s *SQLiteStore) ApplyResplit(ctx context.Context, groupID string, shares map[string][]models.Share) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().Unix()

		totals := make(map[string]float64)
		for expenseID, newShares := range shares {
			_, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expenseID)
			if err != nil {
				return fmt.Errorf("failed to delete shares: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				"DELETE FROM item_shares WHERE item_id IN (SELECT id FROM items WHERE expense_id = ?)",
				expenseID,
			)
			if err != nil {
				return fmt.Errorf("failed to delete item shares: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				"UPDATE expenses SET mode = ? WHERE id = ? AND group_id = ?",
				string(models.SplitEqual), expenseID, groupID,
			)
			if err != nil {
				return fmt.Errorf("failed to update expense mode: %w", err)
			}

			if err := insertShares(ctx, tx, expenseID, newShares); err != nil {
				return err
			}
			for _, share := range newShares {
				if share.Amount != nil {
					totals[share.MemberID] += *share.Amount
				}
			}
		}

		// Rebuild the ledger cache from scratch.
		if _, err := tx.ExecContext(ctx, "DELETE FROM aggregate_balances WHERE group_id = ?", groupID); err != nil {
			return fmt.Errorf("failed to clear ledger: %w", err)
		}
		for memberID, total := range totals {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO aggregate_balances (group_id, member_id, total, updated_at) VALUES (?, ?, ?, ?)",
				groupID, memberID, calculator.Round2(total), now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert ledger row: %w", err)
			}
		}
		return nil
	})
}
