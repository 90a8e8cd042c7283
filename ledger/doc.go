// Package ledger holds the shared budget and inventory state and applies
// validated debits and stock decrements.  All mutations are serialized and
// visible immediately to subsequent reads.
package ledger
