// Package models defines the core domain types for the expense ledger.
//
// Design principles:
//
//  1. **Acyclic ownership**: an Expense owns its Shares and Items by value;
//     groups and members are referenced by string ID only. There is no
//     reverse navigation (share -> expense -> group) anywhere in the model.
//  2. **Explicit split mode**: how an expense is divided is a tagged variant
//     (SplitMode) chosen by the caller at creation time, never inferred from
//     which optional fields happen to be populated.
//  3. **Derived data stays derived**: AggregateBalance is a cache over the
//     expense history and must always be rebuildable from it.
package models
