package types

import (
	"context"
	"reflect"
	"strings"
)

type Signatures []Signature

// Lookup resolves a signature by name.  Matching ignores case so that the
// lookup agrees with method dispatch, which is case-insensitive too.
func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if strings.EqualFold(sig.Name, name) {
			return sig
		}
	}
	return nil
}

// Signature	method signature
type Signature struct {
	Name        string
	Description string
	Input       reflect.Type
	Output      reflect.Type
}

// Executable is a function that can be executed
type Executable func(context context.Context, input, output interface{}) error
