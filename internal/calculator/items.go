package calculator

import (
	"math"

	"github.com/LuvaSoftEC/yopago/internal/apperr"
	"github.com/LuvaSoftEC/yopago/internal/models"
)

// AllocateItems resolves an item-based expense: each item is divided among
// its assignees, and the per-item results accumulate into the expense's
// effective shares.
//
// Per item, SPECIFIC entries consume their explicit portion first; SHARED
// entries then divide whatever remains. An item with no shares at all is
// split evenly across every current group member. The item amounts must sum
// to the expense amount, and each item's allocations must reconcile to the
// item's own amount, both within 0.01.
func AllocateItems(amount float64, group *models.Group, inputs []models.ItemInput) ([]models.Item, []models.Share, error) {
	if len(inputs) == 0 {
		return nil, nil, apperr.Validation("no items provided")
	}

	var itemsTotal float64
	for _, in := range inputs {
		if in.Amount <= 0 {
			return nil, nil, apperr.Validation("item %q amount must be positive", in.Description)
		}
		itemsTotal += in.Amount
	}
	if math.Abs(itemsTotal-amount) > tolerance {
		return nil, nil, apperr.Validation("items total %.2f does not match expense amount %.2f", itemsTotal, amount)
	}

	// Running per-member totals, in first-seen order so the resulting
	// shares are stable.
	totals := make(map[string]float64)
	var order []string
	add := func(memberID string, v float64) {
		if _, seen := totals[memberID]; !seen {
			order = append(order, memberID)
		}
		totals[memberID] += v
	}

	items := make([]models.Item, 0, len(inputs))
	for _, in := range inputs {
		item := models.Item{
			Description: in.Description,
			Amount:      in.Amount,
			Quantity:    max(in.Quantity, 1),
		}

		var err error
		if len(in.Shares) > 0 {
			item.Shares, err = allocateItemShares(&item, group, in.Shares, add)
		} else {
			item.Shares = allocateItemEqually(&item, group.Members, add)
		}
		if err != nil {
			return nil, nil, err
		}

		items = append(items, item)
	}

	shares := make([]models.Share, 0, len(order))
	for _, memberID := range order {
		total := totals[memberID]
		shares = append(shares, models.Share{
			MemberID:   memberID,
			Amount:     models.Float(Round2(total)),
			Percentage: models.Float(Round2(total / amount * 100.0)),
		})
	}
	return items, shares, nil
}

// allocateItemShares divides one item among its explicit assignees:
// SPECIFIC portions first, then SHARED portions against the remainder.
func allocateItemShares(item *models.Item, group *models.Group, inputs []models.ItemShareInput, add func(string, float64)) ([]models.ItemShare, error) {
	var specific, shared []models.ItemShareInput
	for _, in := range inputs {
		if !group.HasMember(in.MemberID) {
			return nil, apperr.NotFound("member not found: %s", in.MemberID)
		}
		if in.Type == models.ShareSpecific {
			specific = append(specific, in)
		} else {
			shared = append(shared, in)
		}
	}

	var (
		out      []models.ItemShare
		consumed float64
	)
	remaining := item.Amount

	for _, in := range specific {
		// A lone SPECIFIC assignee with nothing explicit takes the whole item.
		v := item.Amount
		if in.Amount != nil {
			v = *in.Amount
		} else if in.Percentage != nil {
			v = item.Amount * *in.Percentage / 100.0
		}

		out = append(out, models.ItemShare{
			MemberID:   in.MemberID,
			Type:       models.ShareSpecific,
			Percentage: in.Percentage,
			Amount:     models.Float(v),
		})
		add(in.MemberID, v)
		consumed += v
		remaining -= v
	}

	if len(shared) > 0 && remaining > tolerance {
		// Explicit SHARED percentages apply against the remainder as it
		// stood when sharing began, not against a shrinking pool.
		pool := remaining
		even := pool / float64(len(shared))
		for _, in := range shared {
			v := even
			if in.Amount != nil {
				v = *in.Amount
			} else if in.Percentage != nil {
				v = pool * *in.Percentage / 100.0
			}

			out = append(out, models.ItemShare{
				MemberID:   in.MemberID,
				Type:       models.ShareShared,
				Percentage: in.Percentage,
				Amount:     models.Float(v),
			})
			add(in.MemberID, v)
			consumed += v
		}
	}

	if math.Abs(consumed-item.Amount) > tolerance {
		return nil, apperr.Validation("item %q allocations total %.2f, item amount is %.2f", item.Description, consumed, item.Amount)
	}
	return out, nil
}

// allocateItemEqually splits a share-less item evenly across all current
// group members.
func allocateItemEqually(item *models.Item, memberIDs []string, add func(string, float64)) []models.ItemShare {
	n := len(memberIDs)
	if n == 0 {
		return nil
	}
	each := item.Amount / float64(n)
	eachPct := 100.0 / float64(n)

	out := make([]models.ItemShare, 0, n)
	for _, id := range memberIDs {
		out = append(out, models.ItemShare{
			MemberID:   id,
			Type:       models.ShareShared,
			Percentage: models.Float(eachPct),
			Amount:     models.Float(each),
		})
		add(id, each)
	}
	return out
}
