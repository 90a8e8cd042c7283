// Package policy provides optional declarative rules that decide which
// operations require human approval before they may mutate the ledger.
package policy
