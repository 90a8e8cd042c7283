// Package model defines the declarative request vocabulary shared by the
// classifier, the approval gateway and the transaction orchestrator.
package model
