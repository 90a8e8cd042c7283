// Package orchestrator drives operation requests through the gated
// transaction state machine.  Auto-tier operations commit immediately;
// gated tiers are parked in PendingApproval until a human decision, a
// withdrawal or the approval window expiring finalises them.  The absence
// of a decision is never treated as an approval.
package orchestrator
