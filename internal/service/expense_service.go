// Package service orchestrates the ledger: it validates inputs, runs the
// calculators, persists through storage and emits domain events after each
// successful commit.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/LuvaSoftEC/yopago/internal/apperr"
	"github.com/LuvaSoftEC/yopago/internal/calculator"
	"github.com/LuvaSoftEC/yopago/internal/events"
	"github.com/LuvaSoftEC/yopago/internal/metrics"
	"github.com/LuvaSoftEC/yopago/internal/models"
	"github.com/LuvaSoftEC/yopago/internal/storage"
)

// ExpenseService handles expense lifecycle and the re-split engine.
type ExpenseService struct {
	store     storage.Store
	publisher events.Publisher

	// groupLocks serialize each group's expense writes against its
	// re-splits. Expense writes hold the read side, so they proceed in
	// parallel with each other; a re-split holds the write side while it
	// snapshots history and rebuilds the ledger cache, so no expense can
	// commit between the snapshot and the rebuild.
	groupLocks sync.Map // groupID -> *sync.RWMutex
}

func (s *ExpenseService) groupLock(groupID string) *sync.RWMutex {
	lock, _ := s.groupLocks.LoadOrStore(groupID, &sync.RWMutex{})
	return lock.(*sync.RWMutex)
}

// NewExpenseService creates an ExpenseService with the given storage backend
// and event publisher.
func NewExpenseService(store storage.Store, publisher events.Publisher) *ExpenseService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &ExpenseService{store: store, publisher: publisher}
}

// CreateExpense validates the payload, resolves its shares according to the
// declared split mode and persists the whole graph atomically.
func (s *ExpenseService) CreateExpense(ctx context.Context, in models.ExpenseInput) (*models.Expense, error) {
	if in.Amount <= 0 {
		return nil, apperr.Validation("expense amount must be positive")
	}

	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if len(group.Members) == 0 {
		return nil, apperr.Validation("group %s has no members", group.ID)
	}
	if !group.HasMember(in.PayerID) {
		return nil, apperr.Validation("payer %s does not belong to group %s", in.PayerID, group.ID)
	}

	exists, err := s.store.ExpenseExists(ctx, in.GroupID, in.PayerID, in.Amount, in.Note)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validation("duplicate expense")
	}

	expense := &models.Expense{
		GroupID:  in.GroupID,
		PayerID:  in.PayerID,
		Amount:   in.Amount,
		Note:     in.Note,
		Tag:      in.Tag,
		Currency: in.Currency,
		Mode:     in.Mode,
	}
	if err := s.resolveSplit(expense, group, in); err != nil {
		return nil, err
	}

	mu := s.groupLock(in.GroupID)
	mu.RLock()
	err = s.store.CreateExpense(ctx, expense)
	mu.RUnlock()
	if err != nil {
		slog.Error("CreateExpense failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	metrics.ExpensesCreated.Inc()
	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID, "amount", expense.Amount)
	s.publisher.Publish(events.New(events.TypeExpenseCreated, expense.GroupID, expensePayload(expense)))
	return expense, nil
}

// UpdateExpense replaces an expense wholesale: basic fields, split mode,
// shares and items. Partial share edits are not a thing; callers resend the
// complete split.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expenseID string, in models.ExpenseInput) (*models.Expense, error) {
	if in.Amount <= 0 {
		return nil, apperr.Validation("expense amount must be positive")
	}

	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if in.GroupID == "" {
		in.GroupID = existing.GroupID
	}
	if in.GroupID != existing.GroupID {
		return nil, apperr.Validation("expense cannot move between groups")
	}

	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(in.PayerID) {
		return nil, apperr.Validation("payer %s does not belong to group %s", in.PayerID, group.ID)
	}

	expense := &models.Expense{
		ID:        expenseID,
		GroupID:   in.GroupID,
		PayerID:   in.PayerID,
		Amount:    in.Amount,
		Note:      in.Note,
		Tag:       in.Tag,
		Currency:  in.Currency,
		Mode:      in.Mode,
		CreatedAt: existing.CreatedAt,
	}
	if err := s.resolveSplit(expense, group, in); err != nil {
		return nil, err
	}

	mu := s.groupLock(expense.GroupID)
	mu.RLock()
	err = s.store.UpdateExpense(ctx, expense)
	mu.RUnlock()
	if err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expenseID, "error", err)
		return nil, err
	}

	metrics.ExpensesUpdated.Inc()
	slog.Info("Expense updated", "expense_id", expense.ID, "group_id", expense.GroupID)
	s.publisher.Publish(events.New(events.TypeExpenseUpdated, expense.GroupID, expensePayload(expense)))
	return expense, nil
}

// DeleteExpense removes an expense; its ledger contribution is backed out in
// the same transaction.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}

	mu := s.groupLock(expense.GroupID)
	mu.RLock()
	err = s.store.DeleteExpense(ctx, expenseID)
	mu.RUnlock()
	if err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return err
	}

	metrics.ExpensesDeleted.Inc()
	slog.Info("Expense deleted", "expense_id", expenseID, "group_id", expense.GroupID)
	s.publisher.Publish(events.New(events.TypeExpenseDeleted, expense.GroupID, map[string]any{
		"expenseId": expenseID,
		"note":      expense.Note,
	}))
	return nil
}

// GetExpense retrieves an expense with its shares and items.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// ListExpensesByGroup retrieves a group's expenses, newest first.
func (s *ExpenseService) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// Resplit discards every expense's recorded shares in the group, recomputes
// an equal split across current members and rebuilds the ledger cache.
// Custom percentage/amount splits are intentionally lost; that is what the
// operation is for. The whole rewrite is one transaction, and the group's
// expense writes are excluded for the duration: the share recomputation works
// from a snapshot of history, and an expense committing between the snapshot
// and the ledger rebuild would have its cache increments erased.
func (s *ExpenseService) Resplit(ctx context.Context, groupID string) error {
	mu := s.groupLock(groupID)
	mu.Lock()
	defer mu.Unlock()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if len(group.Members) == 0 {
		return nil
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return err
	}

	shares := make(map[string][]models.Share, len(expenses))
	for _, expense := range expenses {
		shares[expense.ID] = calculator.AllocateEqual(expense.Amount, group.Members)
	}

	if err := s.store.ApplyResplit(ctx, groupID, shares); err != nil {
		slog.Error("Resplit failed", "group_id", groupID, "error", err)
		return fmt.Errorf("resplit group %s: %w", groupID, err)
	}

	metrics.Resplits.Inc()
	slog.Info("Group re-split", "group_id", groupID, "expenses", len(expenses), "members", len(group.Members))
	s.publisher.Publish(events.New(events.TypeGroupResplit, groupID, map[string]any{
		"expenseCount": len(expenses),
		"memberCount":  len(group.Members),
	}))
	return nil
}

// resolveSplit fills the expense's Shares (and Items) from the input
// according to the declared split mode.
func (s *ExpenseService) resolveSplit(expense *models.Expense, group *models.Group, in models.ExpenseInput) error {
	switch in.Mode {
	case models.SplitEqual, "":
		if len(in.Shares) > 0 || len(in.Items) > 0 {
			return apperr.Validation("equal split takes no explicit shares or items")
		}
		expense.Mode = models.SplitEqual
		expense.Shares = calculator.AllocateEqual(in.Amount, group.Members)
	case models.SplitPercentage, models.SplitAmount:
		if len(in.Items) > 0 {
			return apperr.Validation("split mode %s takes no items", in.Mode)
		}
		shares, err := calculator.AllocateShares(in.Amount, in.PayerID, group, in.Mode, in.Shares)
		if err != nil {
			return err
		}
		expense.Shares = shares
	case models.SplitItemBased:
		if len(in.Shares) > 0 {
			return apperr.Validation("item-based split takes no top-level shares")
		}
		items, shares, err := calculator.AllocateItems(in.Amount, group, in.Items)
		if err != nil {
			return err
		}
		expense.Items = items
		expense.Shares = shares
	default:
		return apperr.Validation("unknown split mode %q", in.Mode)
	}
	return nil
}

func expensePayload(expense *models.Expense) map[string]any {
	return map[string]any{
		"expenseId": expense.ID,
		"amount":    expense.Amount,
		"currency":  expense.Currency,
		"note":      expense.Note,
		"payerId":   expense.PayerID,
	}
}
