// Package models defines the core domain models for tripsplit.
//
// # Models
//
//   - User: a registered traveller; usernames are used as display names in settlement messages
//   - Trip: a journey shared by a set of users
//   - Expense: something paid for during a trip, split equally between its participants
//   - Payment: one contribution towards an expense, in any supported currency
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships use ID strings (UUID format) to avoid circular references
// 2. **Amounts as entered**: payments keep their original currency; conversion happens only
//    inside the settlement calculator
// 3. **Storage agnostic**: models carry no persistence tags, the storage layer maps them
package models
