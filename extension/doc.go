// Package extension provides run-time registries that let the service work
// with user-defined action services and their Go input/output types.
//
// The registries are normally modified through the public APIs under the
// root gatekeeper package, therefore most applications do not need to import
// this package directly.
package extension
