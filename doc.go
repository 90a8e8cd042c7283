// Package gatekeeper provides a human-gated transaction service for agentic
// tool use.
//
// Mutating operations (catalog purchases, off-catalog purchases, budget
// increases) are classified by a risk policy and either committed
// immediately, routed to a human approval gateway, or blocked.  The service
// layers are pluggable:
//
//   - ledger       – budget + inventory state with atomic commits
//   - policy       – risk classification (auto / basic / high / blocked)
//   - approval     – human-in-the-loop decision gateway
//   - orchestrator – the transaction state machine
//
// Gatekeeper is designed to be embedded in host applications.  End-users
// typically interact via the high-level Service façade exposed by the root
// package:
//
//	srv, _ := gatekeeper.New()
//	txn, _ := srv.Orchestrator().Submit(ctx, &model.Operation{
//	    Kind: model.KindPurchase, Item: "pens", Quantity: 10,
//	})
//
// For more details see the README and individual sub-packages.
package gatekeeper
