package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/LuvaSoftEC/yopago/internal/calculator"
	"github.com/LuvaSoftEC/yopago/internal/models"
)

// ledgerFromHistory recomputes per-member share totals from the recorded
// expense graph, the way the ledger cache would be rebuilt from scratch.
func ledgerFromHistory(t *testing.T, expenses *ExpenseService, groupID string) map[string]float64 {
	t.Helper()
	history, err := expenses.ListExpensesByGroup(context.Background(), groupID)
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	totals := make(map[string]float64)
	for _, expense := range history {
		for _, share := range expense.Shares {
			totals[share.MemberID] = calculator.Round2(
				totals[share.MemberID] + share.CalculatedAmount(expense.Amount))
		}
	}
	return totals
}

func TestSettle_TransfersZeroOutBalances(t *testing.T) {
	groups, expenses, _, settlements, cleanup := setupServices(t)
	defer cleanup()

	group := mustCreateGroup(t, groups, "Alice", "Bob", "Charlie")

	if _, err := expenses.CreateExpense(context.Background(), models.ExpenseInput{
		GroupID: group.ID, PayerID: "Alice", Amount: 50, Note: "Tickets",
		Mode: models.SplitAmount,
		Shares: []models.ShareInput{
			{MemberID: "Bob", Amount: models.Float(20)},
			{MemberID: "Charlie", Amount: models.Float(30)},
		},
	}); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	settlement, err := settlements.Settle(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if len(settlement.Payments) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(settlement.Payments))
	}

	// Applying every transfer to the balances must leave everyone at zero.
	after := make(map[string]float64, len(settlement.Balances))
	for member, balance := range settlement.Balances {
		after[member] = balance
	}
	for _, transfer := range settlement.Payments {
		after[transfer.From] = calculator.Round2(after[transfer.From] + transfer.Amount)
		after[transfer.To] = calculator.Round2(after[transfer.To] - transfer.Amount)
	}
	for member, balance := range after {
		if math.Abs(balance) > 0.01 {
			t.Errorf("%s balance after transfers: expected 0, got %f", member, balance)
		}
	}
}

// The ledger cache is maintained incrementally on every write; it must agree
// with a from-scratch recomputation over the expense history.
func TestLedgerMatchesRecomputedShares(t *testing.T) {
	groups, expenses, _, settlements, cleanup := setupServices(t)
	defer cleanup()

	group := mustCreateGroup(t, groups, "Alice", "Bob", "Charlie")

	inputs := []models.ExpenseInput{
		{GroupID: group.ID, PayerID: "Alice", Amount: 90, Note: "Dinner", Mode: models.SplitEqual},
		{GroupID: group.ID, PayerID: "Bob", Amount: 100, Note: "Hotel", Mode: models.SplitPercentage,
			Shares: []models.ShareInput{
				{MemberID: "Alice", Percentage: models.Float(50)},
				{MemberID: "Charlie", Percentage: models.Float(25)},
			}},
		{GroupID: group.ID, PayerID: "Charlie", Amount: 10, Note: "Coffee", Mode: models.SplitEqual},
	}
	for _, in := range inputs {
		if _, err := expenses.CreateExpense(context.Background(), in); err != nil {
			t.Fatalf("CreateExpense(%s) failed: %v", in.Note, err)
		}
	}

	history, err := expenses.ListExpensesByGroup(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	recomputed := make(map[string]float64)
	for _, expense := range history {
		for _, share := range expense.Shares {
			recomputed[share.MemberID] = calculator.Round2(
				recomputed[share.MemberID] + share.CalculatedAmount(expense.Amount))
		}
	}

	ledger, err := settlements.AggregateBalances(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("AggregateBalances failed: %v", err)
	}
	for member, want := range recomputed {
		if math.Abs(ledger[member].Total-want) > 0.01 {
			t.Errorf("%s ledger total: expected %f, got %f", member, want, ledger[member].Total)
		}
	}
}

func TestLedgerConsistentUnderConcurrentCreates(t *testing.T) {
	groups, expenses, _, settlements, cleanup := setupServices(t)
	defer cleanup()

	group := mustCreateGroup(t, groups, "Alice", "Bob")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := expenses.CreateExpense(context.Background(), models.ExpenseInput{
				GroupID: group.ID,
				PayerID: "Alice",
				Amount:  10 + float64(i),
				Note:    fmt.Sprintf("expense-%d", i),
				Mode:    models.SplitEqual,
			})
			if err != nil {
				t.Errorf("CreateExpense %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	want := ledgerFromHistory(t, expenses, group.ID)
	ledger, err := settlements.AggregateBalances(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("AggregateBalances failed: %v", err)
	}
	for member, total := range want {
		if math.Abs(ledger[member].Total-total) > 0.01 {
			t.Errorf("%s ledger total: expected %f, got %f", member, total, ledger[member].Total)
		}
	}
}

// Expense writes racing a re-split must not slip between the re-split's
// history snapshot and its ledger rebuild; a write that did would have its
// cache increments erased.
func TestResplitExcludesConcurrentExpenseWrites(t *testing.T) {
	groups, expenses, _, settlements, cleanup := setupServices(t)
	defer cleanup()

	group := mustCreateGroup(t, groups, "Alice", "Bob", "Charlie")

	if _, err := expenses.CreateExpense(context.Background(), models.ExpenseInput{
		GroupID: group.ID, PayerID: "Alice", Amount: 90, Note: "seed", Mode: models.SplitEqual,
	}); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := expenses.CreateExpense(context.Background(), models.ExpenseInput{
				GroupID: group.ID,
				PayerID: "Bob",
				Amount:  30 + float64(i),
				Note:    fmt.Sprintf("racing-%d", i),
				Mode:    models.SplitEqual,
			})
			if err != nil {
				t.Errorf("CreateExpense %d failed: %v", i, err)
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := expenses.Resplit(context.Background(), group.ID); err != nil {
				t.Errorf("Resplit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	want := ledgerFromHistory(t, expenses, group.ID)
	ledger, err := settlements.AggregateBalances(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("AggregateBalances failed: %v", err)
	}
	for member, total := range want {
		if math.Abs(ledger[member].Total-total) > 0.01 {
			t.Errorf("%s ledger total: expected %f from history, got %f", member, total, ledger[member].Total)
		}
	}
	for member := range ledger {
		if _, ok := want[member]; !ok && math.Abs(ledger[member].Total) > 0.01 {
			t.Errorf("%s has a ledger total %f with no recorded shares", member, ledger[member].Total)
		}
	}
}

func TestSettle_UnknownGroup(t *testing.T) {
	_, _, _, settlements, cleanup := setupServices(t)
	defer cleanup()

	if _, err := settlements.Settle(context.Background(), "nonexistent-id"); err == nil {
		t.Error("expected error for unknown group")
	}
}
