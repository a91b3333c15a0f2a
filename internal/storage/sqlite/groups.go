package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LuvaSoftEC/yopago/internal/apperr"
	"github.com/LuvaSoftEC/yopago/internal/models"
)

// CreateGroup persists a new group and its initial members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
			group.ID, group.Name, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for i, memberID := range group.Members {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO group_members (group_id, member_id, position) VALUES (?, ?, ?)",
				group.ID, memberID, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}
		return nil
	})
}

// GetGroup retrieves a group with its members in insertion order.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("group not found: %s", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id FROM group_members WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Members = append(group.Members, memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return group, nil
}

// DeleteGroup removes a group; expenses, payments, members and ledger rows
// follow via foreign key cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("group not found: %s", groupID)
	}
	return nil
}

// AddMember appends a member to the group's member list.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID, memberID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("group not found: %s", groupID)
		}
		if err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, member_id, position)
			 VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = ?))`,
			groupID, memberID, groupID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
		return nil
	})
}

// RemoveMember removes a member from the group and drops their ledger row.
// Their recorded expense shares stay; settlement keys off current membership.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, memberID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM group_members WHERE group_id = ? AND member_id = ?",
			groupID, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete group member: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("member %s not in group %s", memberID, groupID)
		}

		_, err = tx.ExecContext(ctx,
			"DELETE FROM aggregate_balances WHERE group_id = ? AND member_id = ?",
			groupID, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete ledger row: %w", err)
		}
		return nil
	})
}
