// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/LuvaSoftEC/yopago/internal/models"
)

// Store defines the persistence operations the ledger needs. The abstraction
// allows swapping storage backends without changing the service layer.
//
// Write methods that touch more than one row (the expense graph, the ledger
// cache, a re-split) are atomic: either every row commits or none does, and
// no partial state is ever visible to readers.
type Store interface {
	// CreateGroup persists a new group with its initial members.
	// The group.ID field is populated if empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members in insertion order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// DeleteGroup removes a group and everything hanging off it.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember appends a member to a group's member list.
	AddMember(ctx context.Context, groupID, memberID string) error

	// RemoveMember removes a member from a group's member list and drops
	// their ledger row.
	RemoveMember(ctx context.Context, groupID, memberID string) error

	// CreateExpense persists the whole expense graph (expense, shares,
	// items, item shares) and applies the matching ledger increments, all
	// in one transaction. The expense.ID field is populated if empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its shares and items.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// UpdateExpense replaces an expense's row, shares and items wholesale
	// and adjusts the ledger by the share delta, in one transaction.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense with its shares and items and
	// decrements the ledger accordingly, in one transaction.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ExpenseExists reports whether an expense with the same group, payer,
	// amount and note is already recorded.
	ExpenseExists(ctx context.Context, groupID, payerID string, amount float64, note string) (bool, error)

	// ListAggregateBalances returns the ledger cache rows for a group,
	// keyed by member.
	ListAggregateBalances(ctx context.Context, groupID string) (map[string]models.AggregateBalance, error)

	// ApplyResplit replaces every listed expense's shares with the given
	// ones, discards item shares, forces the expenses to equal-split mode
	// and rebuilds the group's ledger cache, all in one transaction.
	ApplyResplit(ctx context.Context, groupID string, shares map[string][]models.Share) error

	// CreatePayment persists a new payment. The payment.ID field is
	// populated if empty.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// GetPayment retrieves a payment by ID.
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)

	// ConfirmPayment marks a payment as confirmed.
	ConfirmPayment(ctx context.Context, paymentID string) error

	// DeletePayment removes a payment by ID.
	DeletePayment(ctx context.Context, paymentID string) error

	// ListPaymentsByGroup retrieves a group's payments, newest first.
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
