package calculator

import "github.com/LuvaSoftEC/yopago/internal/models"

// Settle computes each member's net balance over the full expense history
// and derives the suggested payments that zero the balances out.
//
// Balances are keyed by current group membership: expenses recorded without
// shares (legacy equal splits) divide across the members as they are today,
// not as they were when the expense was created. Every running balance is
// rounded after each update to bound float drift; the final balances sum to
// zero.
//
// Settle is pure: same members and expenses in, same settlement out.
func Settle(memberIDs []string, expenses []*models.Expense) models.Settlement {
	balances := make(map[string]float64, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = 0
	}

	for _, exp := range expenses {
		// Credit the payer with the full amount.
		if bal, ok := balances[exp.PayerID]; ok {
			balances[exp.PayerID] = Round2(bal + exp.Amount)
		}

		// Debit each participant their share.
		if len(exp.Shares) > 0 {
			for _, share := range exp.Shares {
				if bal, ok := balances[share.MemberID]; ok {
					balances[share.MemberID] = Round2(bal - share.CalculatedAmount(exp.Amount))
				}
			}
		} else if len(memberIDs) > 0 {
			// Same remainder-compensated division used at allocation time,
			// so the expense's net effect on the group is exactly zero.
			for _, share := range AllocateEqual(exp.Amount, memberIDs) {
				balances[share.MemberID] = Round2(balances[share.MemberID] - *share.Amount)
			}
		}
	}

	return models.Settlement{
		Balances: balances,
		Payments: netPayments(memberIDs, balances),
	}
}

// netPayments reduces balances to settling transfers with a greedy pass:
// each debtor, in member order, pays creditors in member order until
// exhausted. This is a simplification, not a minimum-transaction solver.
func netPayments(memberIDs []string, balances map[string]float64) []models.Transfer {
	type entry struct {
		id     string
		amount float64
	}

	var debtors, creditors []entry
	for _, id := range memberIDs {
		switch bal := balances[id]; {
		case bal < 0:
			debtors = append(debtors, entry{id, Round2(-bal)})
		case bal > 0:
			creditors = append(creditors, entry{id, Round2(bal)})
		}
	}

	var payments []models.Transfer
	j := 0
	for _, debtor := range debtors {
		owed := debtor.amount
		for owed > tolerance && j < len(creditors) {
			pay := Round2(min(owed, creditors[j].amount))
			if pay > 0 {
				payments = append(payments, models.Transfer{
					From:   debtor.id,
					To:     creditors[j].id,
					Amount: pay,
				})
				creditors[j].amount = Round2(creditors[j].amount - pay)
				owed = Round2(owed - pay)
			}
			if creditors[j].amount <= tolerance {
				j++
			}
		}
	}
	return payments
}
