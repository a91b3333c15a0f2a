package models

// Payment records money moved between two members to clear debt.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// FromMemberID is the debtor settling up.
	FromMemberID string

	// ToMemberID is the creditor being paid.
	ToMemberID string

	// Amount is the payment amount. Always > 0.
	Amount float64

	Note string

	// Confirmed is set once a payment party confirms the money moved.
	// Only confirmed payments adjust settlement balances.
	Confirmed bool

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}
