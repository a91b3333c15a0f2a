package calculator

import (
	"math"
	"reflect"
	"testing"

	"github.com/LuvaSoftEC/yopago/internal/models"
)

func equalSplitExpense(payerID string, amount float64) *models.Expense {
	// No shares recorded: the legacy path that divides across current members.
	return &models.Expense{GroupID: "g1", PayerID: payerID, Amount: amount, Mode: models.SplitEqual}
}

func sharedExpense(payerID string, amount float64, shares ...models.Share) *models.Expense {
	return &models.Expense{GroupID: "g1", PayerID: payerID, Amount: amount, Shares: shares}
}

func assertZeroSum(t *testing.T, balances map[string]float64) {
	t.Helper()
	var sum float64
	for _, b := range balances {
		sum += b
	}
	if math.Abs(sum) > 0.01 {
		t.Errorf("balances sum = %v, want 0 within 0.01", sum)
	}
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name         string
		members      []string
		expenses     []*models.Expense
		validateFunc func(t *testing.T, s models.Settlement)
	}{
		{
			name:     "three members one equal expense",
			members:  []string{"m1", "m2", "m3"},
			expenses: []*models.Expense{equalSplitExpense("m1", 90.0)},
			validateFunc: func(t *testing.T, s models.Settlement) {
				want := map[string]float64{"m1": 60.0, "m2": -30.0, "m3": -30.0}
				if !reflect.DeepEqual(s.Balances, want) {
					t.Errorf("balances = %v, want %v", s.Balances, want)
				}
			},
		},
		{
			name:    "recorded shares drive the debits",
			members: []string{"m1", "m2"},
			expenses: []*models.Expense{
				sharedExpense("m1", 100.0,
					models.Share{MemberID: "m1", Amount: models.Float(60)},
					models.Share{MemberID: "m2", Amount: models.Float(40)},
				),
			},
			validateFunc: func(t *testing.T, s models.Settlement) {
				if s.Balances["m1"] != 40.0 || s.Balances["m2"] != -40.0 {
					t.Errorf("balances = %v, want m1=40 m2=-40", s.Balances)
				}
			},
		},
		{
			name:    "percentage-only shares are derived from the amount",
			members: []string{"m1", "m2"},
			expenses: []*models.Expense{
				sharedExpense("m2", 80.0,
					models.Share{MemberID: "m1", Percentage: models.Float(75)},
					models.Share{MemberID: "m2", Percentage: models.Float(25)},
				),
			},
			validateFunc: func(t *testing.T, s models.Settlement) {
				if s.Balances["m1"] != -60.0 {
					t.Errorf("m1 balance = %v, want -60", s.Balances["m1"])
				}
				if s.Balances["m2"] != 60.0 {
					t.Errorf("m2 balance = %v, want 60", s.Balances["m2"])
				}
			},
		},
		{
			name:    "legacy equal split uses current membership",
			members: []string{"m1", "m2", "m3", "m4"},
			// Recorded before m4 joined, but settled across all four.
			expenses: []*models.Expense{equalSplitExpense("m1", 100.0)},
			validateFunc: func(t *testing.T, s models.Settlement) {
				if s.Balances["m4"] != -25.0 {
					t.Errorf("m4 balance = %v, want -25 (current membership)", s.Balances["m4"])
				}
			},
		},
		{
			name:    "payer no longer in group keeps total consistent",
			members: []string{"m2", "m3"},
			expenses: []*models.Expense{
				sharedExpense("gone", 60.0,
					models.Share{MemberID: "m2", Amount: models.Float(30)},
					models.Share{MemberID: "m3", Amount: models.Float(30)},
				),
			},
			validateFunc: func(t *testing.T, s models.Settlement) {
				// Departed payer is not credited; remaining members still owe.
				if s.Balances["m2"] != -30.0 || s.Balances["m3"] != -30.0 {
					t.Errorf("balances = %v, want -30 each", s.Balances)
				}
			},
		},
		{
			name:     "no expenses yields empty settlement",
			members:  []string{"m1", "m2"},
			expenses: nil,
			validateFunc: func(t *testing.T, s models.Settlement) {
				if len(s.Payments) != 0 {
					t.Errorf("payments = %v, want none", s.Payments)
				}
				assertZeroSum(t, s.Balances)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settle(tt.members, tt.expenses)

			if len(s.Balances) != len(tt.members) {
				t.Errorf("got %d balances, want %d", len(s.Balances), len(tt.members))
			}
			tt.validateFunc(t, s)

			// Payments only flow from debtors to creditors and cover
			// exactly the positive side of the ledger (unless the payer
			// left the group and the books are lopsided).
			var positive, paid float64
			for _, b := range s.Balances {
				if b > 0 {
					positive += b
				}
			}
			for _, p := range s.Payments {
				if s.Balances[p.From] >= 0 {
					t.Errorf("payment from non-debtor %s", p.From)
				}
				if s.Balances[p.To] <= 0 {
					t.Errorf("payment to non-creditor %s", p.To)
				}
				paid += p.Amount
			}
			if math.Abs(paid-positive) > 0.01 && positive > 0 {
				t.Errorf("payments total %v, positive balances total %v", paid, positive)
			}
		})
	}
}

func TestSettleGreedyNetting(t *testing.T) {
	// Balances {A:+50, B:-20, C:-30} must net to exactly B->A 20, C->A 30.
	members := []string{"A", "B", "C"}
	expenses := []*models.Expense{
		sharedExpense("A", 50.0,
			models.Share{MemberID: "B", Amount: models.Float(20)},
			models.Share{MemberID: "C", Amount: models.Float(30)},
		),
	}

	s := Settle(members, expenses)

	wantBalances := map[string]float64{"A": 50.0, "B": -20.0, "C": -30.0}
	if !reflect.DeepEqual(s.Balances, wantBalances) {
		t.Fatalf("balances = %v, want %v", s.Balances, wantBalances)
	}

	wantPayments := []models.Transfer{
		{From: "B", To: "A", Amount: 20.0},
		{From: "C", To: "A", Amount: 30.0},
	}
	if !reflect.DeepEqual(s.Payments, wantPayments) {
		t.Errorf("payments = %v, want %v", s.Payments, wantPayments)
	}
}

func TestSettleIsPure(t *testing.T) {
	members := []string{"m1", "m2", "m3"}
	expenses := []*models.Expense{
		equalSplitExpense("m1", 99.99),
		sharedExpense("m2", 45.0,
			models.Share{MemberID: "m1", Amount: models.Float(15)},
			models.Share{MemberID: "m2", Amount: models.Float(15)},
			models.Share{MemberID: "m3", Amount: models.Float(15)},
		),
	}

	first := Settle(members, expenses)
	second := Settle(members, expenses)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("settle is not deterministic:\nfirst  %+v\nsecond %+v", first, second)
	}
	assertZeroSum(t, first.Balances)
}

func TestSettleBoundsFloatDrift(t *testing.T) {
	// Many uneven divisions; rounding after every step keeps balances at
	// 2 decimals and the total within tolerance.
	members := []string{"m1", "m2", "m3"}
	var expenses []*models.Expense
	for range 100 {
		expenses = append(expenses, equalSplitExpense("m1", 10.0))
	}

	s := Settle(members, expenses)
	assertZeroSum(t, s.Balances)
	for id, b := range s.Balances {
		if Round2(b) != b {
			t.Errorf("%s balance %v not rounded to 2 decimals", id, b)
		}
	}
}
