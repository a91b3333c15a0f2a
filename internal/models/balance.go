package models

// AggregateBalance is one row of the balance ledger cache: the running total
// a member has owed across a group's full expense history.
//
// This is display data, not settlement input. It is incrementally maintained
// on every expense write and must always equal a from-scratch recomputation
// over the group's expenses; a re-split rebuilds it.
type AggregateBalance struct {
	GroupID  string
	MemberID string

	// Total is the lifetime gross amount owed, rounded to 2 decimals.
	Total float64

	// UpdatedAt is the Unix timestamp of the last upsert.
	UpdatedAt int64
}
