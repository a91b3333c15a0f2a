package models

// ExpenseInput is the payload accepted when creating or updating an expense.
// Wire format is the caller's concern; this is the resolved shape.
type ExpenseInput struct {
	GroupID  string
	PayerID  string
	Amount   float64
	Note     string
	Tag      string
	Currency string

	// Mode selects the split variant. SplitPercentage and SplitAmount
	// require Shares; SplitItemBased requires Items; SplitEqual forbids both.
	Mode   SplitMode
	Shares []ShareInput
	Items  []ItemInput
}

// ShareInput is a caller-supplied share for percentage or amount splits.
type ShareInput struct {
	MemberID   string
	Percentage *float64
	Amount     *float64
}

// ItemInput is a caller-supplied line item for item-based splits.
type ItemInput struct {
	Description string
	Amount      float64
	Quantity    int
	Shares      []ItemShareInput
}

// ItemShareInput is a caller-supplied share of one item.
type ItemShareInput struct {
	MemberID   string
	Type       ShareType
	Percentage *float64
	Amount     *float64
}

// PaymentInput is the payload accepted when registering a payment.
type PaymentInput struct {
	GroupID      string
	FromMemberID string
	ToMemberID   string
	Amount       float64
	Note         string
}
