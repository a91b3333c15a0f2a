// Package calculator holds the pure money math: share allocation, item
// allocation, settlement and payment adjustment. Nothing here touches
// storage; every function is deterministic over its inputs.
package calculator

import (
	"math"

	"github.com/LuvaSoftEC/yopago/internal/apperr"
	"github.com/LuvaSoftEC/yopago/internal/models"
)

// AllocateEqual splits an expense amount evenly across the given members.
// Every share carries both a rounded amount and percentage; the last member
// absorbs the rounding remainder so the amount column sums to the expense
// total exactly (100 across 3 members yields 33.33, 33.33, 33.34).
func AllocateEqual(amount float64, memberIDs []string) []models.Share {
	n := len(memberIDs)
	if n == 0 {
		return nil
	}

	each := Round2(amount / float64(n))
	eachPct := Round2(100.0 / float64(n))

	shares := make([]models.Share, n)
	var sumAmt, sumPct float64
	for i, id := range memberIDs {
		amt, pct := each, eachPct
		if i == n-1 {
			amt = Round2(amount - sumAmt)
			pct = Round2(100.0 - sumPct)
		}
		shares[i] = models.Share{
			MemberID:   id,
			Amount:     models.Float(amt),
			Percentage: models.Float(pct),
		}
		sumAmt += amt
		sumPct += pct
	}
	return shares
}

// AllocateShares resolves caller-supplied percentage or amount shares into
// the expense's final share list.
//
// Every referenced member must belong to the group. If the payer is not
// listed, their share is synthesized as the unallocated remainder; a
// remainder below -0.01 means the shares exceed the total and the split is
// rejected. The resolved total must reconcile: percentages to 10000 basis
// points +/-1, amounts to the expense amount +/-0.01.
func AllocateShares(amount float64, payerID string, group *models.Group, mode models.SplitMode, inputs []models.ShareInput) ([]models.Share, error) {
	if len(inputs) == 0 {
		return nil, apperr.Validation("no shares provided")
	}

	var (
		shares        []models.Share
		totalPct      float64
		totalAmt      float64
		includesPayer bool
	)

	for _, in := range inputs {
		if !group.HasMember(in.MemberID) {
			return nil, apperr.Validation("member %s does not belong to group %s", in.MemberID, group.ID)
		}
		if in.MemberID == payerID {
			includesPayer = true
		}

		switch mode {
		case models.SplitPercentage:
			if in.Percentage == nil {
				return nil, apperr.Validation("share for member %s is missing a percentage", in.MemberID)
			}
			totalPct += *in.Percentage
		case models.SplitAmount:
			if in.Amount == nil {
				return nil, apperr.Validation("share for member %s is missing an amount", in.MemberID)
			}
			totalAmt += *in.Amount
		default:
			return nil, apperr.Validation("split mode %s does not take explicit shares", mode)
		}

		shares = append(shares, models.Share{
			MemberID:   in.MemberID,
			Percentage: in.Percentage,
			Amount:     in.Amount,
		})
	}

	// The payer implicitly covers whatever the listed shares leave over.
	if !includesPayer {
		switch mode {
		case models.SplitPercentage:
			remaining := 100.0 - totalPct
			if remaining < -tolerance {
				return nil, apperr.Validation("invalid shares: percentages exceed 100%%")
			}
			if remaining > tolerance {
				shares = append(shares, models.Share{
					MemberID:   payerID,
					Percentage: models.Float(remaining),
				})
				totalPct += remaining
			}
		case models.SplitAmount:
			remaining := amount - totalAmt
			if remaining < -tolerance {
				return nil, apperr.Validation("invalid shares: amounts exceed expense total")
			}
			if remaining > tolerance {
				shares = append(shares, models.Share{
					MemberID: payerID,
					Amount:   models.Float(Round2(remaining)),
				})
				totalAmt += remaining
			}
		}
	}

	switch mode {
	case models.SplitPercentage:
		// Scale to basis points so 33.33*3 style totals pass.
		if bp := math.Round(totalPct * 100.0); math.Abs(bp-10000) > 1 {
			return nil, apperr.Validation("invalid shares: percentages total %.2f%%", totalPct)
		}
	case models.SplitAmount:
		if math.Abs(totalAmt-amount) > tolerance {
			return nil, apperr.Validation("invalid shares: amounts total %.2f, expense is %.2f", totalAmt, amount)
		}
	}

	// Populate the derived half of each share so both representations are
	// always available downstream.
	for i := range shares {
		s := &shares[i]
		if s.Amount == nil && s.Percentage != nil {
			s.Amount = models.Float(Round2(amount * *s.Percentage / 100.0))
		}
		if s.Percentage == nil && s.Amount != nil && amount != 0 {
			s.Percentage = models.Float(Round2(*s.Amount / amount * 100.0))
		}
	}

	return shares, nil
}
