package models

// SplitMode selects how an expense is divided among members.
// It is chosen once at creation time and replaced wholesale on update;
// a re-split forces SplitEqual.
type SplitMode string

const (
	// SplitEqual divides the amount evenly across all current group members.
	SplitEqual SplitMode = "EQUAL"
	// SplitPercentage divides the amount by explicit per-member percentages.
	SplitPercentage SplitMode = "PERCENTAGE"
	// SplitAmount divides the amount by explicit per-member amounts.
	SplitAmount SplitMode = "AMOUNT"
	// SplitItemBased divides the amount per line item via item shares.
	SplitItemBased SplitMode = "ITEM_BASED"
)

// ShareType distinguishes how an item share consumes its item's amount.
type ShareType string

const (
	// ShareSpecific consumes a fixed, explicit portion of the item before
	// anything is shared.
	ShareSpecific ShareType = "SPECIFIC"
	// ShareShared divides whatever remains of the item after all SPECIFIC
	// portions are consumed.
	ShareShared ShareType = "SHARED"
)

// Expense represents one payment event by a payer, divided among group members.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who paid the full amount.
	PayerID string

	// Amount is the total expense amount. Always > 0.
	Amount float64

	Note     string
	Tag      string
	Currency string

	// Mode records which split variant produced the Shares below.
	Mode SplitMode

	// Shares is the resolved per-member obligation for this expense.
	// Their calculated amounts reconcile to Amount within 0.01.
	Shares []Share

	// Items is the ordered list of line items for item-based expenses,
	// empty otherwise. Item amounts sum to Amount within 0.01.
	Items []Item

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64
}

// Share is one member's monetary obligation toward an expense.
// At least one of Amount and Percentage is set; both may be.
type Share struct {
	MemberID   string
	Amount     *float64
	Percentage *float64
}

// CalculatedAmount resolves the share's monetary value: the explicit amount
// if present, otherwise derived from the percentage of the expense total.
func (s Share) CalculatedAmount(expenseAmount float64) float64 {
	if s.Amount != nil {
		return *s.Amount
	}
	if s.Percentage != nil {
		return expenseAmount * *s.Percentage / 100.0
	}
	return 0
}

// Item is an independently splittable sub-line of an expense.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	Description string

	// Amount is the item's price. Always > 0.
	Amount float64

	Quantity int

	// Shares divides this item among members. An item with no shares is
	// split evenly across all current group members at allocation time.
	Shares []ItemShare
}

// ItemShare assigns part of an item to one member.
type ItemShare struct {
	MemberID   string
	Type       ShareType
	Percentage *float64
	Amount     *float64
}

// Float returns a pointer to v. Convenience for optional share fields.
func Float(v float64) *float64 {
	return &v
}
