package service

import (
	"context"
	"log/slog"

	"github.com/LuvaSoftEC/yopago/internal/calculator"
	"github.com/LuvaSoftEC/yopago/internal/metrics"
	"github.com/LuvaSoftEC/yopago/internal/models"
	"github.com/LuvaSoftEC/yopago/internal/storage"
)

// SettlementService computes who owes whom. Balances are always recomputed
// from the expense history of record; the aggregate ledger is a read cache
// and never feeds the settlement.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// Settle recomputes every current member's balance from the group's expenses
// and produces a minimal set of transfers that zeroes them out.
func (s *SettlementService) Settle(ctx context.Context, groupID string) (models.Settlement, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return models.Settlement{}, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return models.Settlement{}, err
	}

	settlement := calculator.Settle(group.Members, expenses)

	metrics.SettlementsComputed.Inc()
	slog.Debug("Settlement computed", "group_id", groupID, "members", len(group.Members), "transfers", len(settlement.Payments))
	return settlement, nil
}

// SettleWithPayments computes the settlement and then applies the group's
// confirmed payments on top, reporting both the raw and the adjusted
// balances alongside the still-pending payments.
func (s *SettlementService) SettleWithPayments(ctx context.Context, groupID string) (*models.PaymentAdjustment, error) {
	settlement, err := s.Settle(ctx, groupID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var confirmed, pending []*models.Payment
	for _, p := range payments {
		if p.Confirmed {
			confirmed = append(confirmed, p)
		} else {
			pending = append(pending, p)
		}
	}

	return &models.PaymentAdjustment{
		OriginalBalances:  settlement.Balances,
		AdjustedBalances:  calculator.AdjustBalances(settlement.Balances, confirmed),
		ConfirmedPayments: confirmed,
		PendingPayments:   pending,
	}, nil
}

// AggregateBalances returns the per-member ledger cache for a group: each
// member's accumulated share of all expenses. It is maintained incrementally
// on every expense write and rebuilt wholesale on re-split. Unlike Settle's
// balances it is gross (what a member's shares add up to), not net of what
// they paid for.
func (s *SettlementService) AggregateBalances(ctx context.Context, groupID string) (map[string]models.AggregateBalance, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListAggregateBalances(ctx, groupID)
}
