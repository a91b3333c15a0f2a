package models

// Transfer is one suggested settling payment between two members.
type Transfer struct {
	// From is the debtor member ID.
	From string

	// To is the creditor member ID.
	To string

	// Amount is the suggested payment amount, rounded to 2 decimals.
	Amount float64
}

// Settlement is the computed net position of a group: per-member balances
// (positive = owed money, negative = owes money; they sum to zero) and the
// ordered list of suggested payments that zero them.
type Settlement struct {
	Balances map[string]float64
	Payments []Transfer
}

// PaymentAdjustment is a settlement with confirmed payments folded in.
// AdjustedBalances still sums to zero: every adjustment is a zero-sum
// transfer between two members.
type PaymentAdjustment struct {
	OriginalBalances  map[string]float64
	AdjustedBalances  map[string]float64
	ConfirmedPayments []*Payment
	PendingPayments   []*Payment
}
