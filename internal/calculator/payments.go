package calculator

import "github.com/LuvaSoftEC/yopago/internal/models"

// AdjustBalances folds confirmed payments into settlement balances.
//
// A confirmed payment from X to Y shrinks X's debt (or grows their credit)
// and shrinks the IOU Y was owed: adjusted[X] += amount, adjusted[Y] -=
// amount. Pending payments never touch the balances. Since every adjustment
// is a zero-sum transfer, the adjusted balances still sum to zero.
func AdjustBalances(original map[string]float64, confirmed []*models.Payment) map[string]float64 {
	adjusted := make(map[string]float64, len(original))
	for id, bal := range original {
		adjusted[id] = bal
	}

	for _, p := range confirmed {
		adjusted[p.FromMemberID] = Round2(adjusted[p.FromMemberID] + p.Amount)
		adjusted[p.ToMemberID] = Round2(adjusted[p.ToMemberID] - p.Amount)
	}
	return adjusted
}
