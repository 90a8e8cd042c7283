package types

// Service is a named tool service exposing callable methods.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
