// Package approval implements the human-in-the-loop approval layer.  Staged
// transactions are paused until an explicit approve or reject decision is
// recorded; the absence of a decision is never treated as approval.
package approval
