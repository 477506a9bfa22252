// Package models defines the core domain models for settleup.
//
// # Models
//
//   - User: a registered member who can belong to groups
//   - Group: a named set of members sharing a currency
//   - Expense: a single outlay paid by one member and split by a SplitType
//   - ExpenseShare: per-member value for non-equal splits
//   - Payment: a recorded settlement between two members of a group
//   - Activity: an entry in the activity feed
//
// # Design Principles
//
//  1. Relationships use ID strings, never pointers.
//  2. Timestamps are Unix seconds.
//  3. Balances and settlement suggestions are derived and never stored; see the
//     calculator package.
package models
