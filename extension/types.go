package extension

import (
	"reflect"
	"strings"
	"sync"

	"github.com/viant/x"
)

// Types is the data type registry shared by registered action services.  The
// underlying registry keys entries by package path and type name; tool
// metadata refers to types by bare name, so registrations are indexed by
// their registered name as well.
type Types struct {
	x.Registry
	mux    sync.RWMutex
	byName map[string]*x.Type
}

// Register adds a data type to the registry
func (t *Types) Register(dataType *x.Type) {
	t.Registry.Register(dataType)
	t.mux.Lock()
	t.byName[dataType.Name] = dataType
	t.mux.Unlock()
}

// Lookup returns a data type from the registry.  A slice or map modifier
// prefix ("[]", "map[string]"…) is applied on top of the registered type.
// Both fully qualified ("pkg/path.Name") and bare names resolve.
func (t *Types) Lookup(dataType string) *x.Type {
	typeModifier := ""
	if idx := strings.LastIndex(dataType, "]"); idx != -1 {
		typeModifier = dataType[:idx+1]
		dataType = dataType[idx+1:]
	}
	ret := t.Registry.Lookup(dataType)
	if ret == nil {
		t.mux.RLock()
		ret = t.byName[dataType]
		t.mux.RUnlock()
	}
	if ret == nil {
		return nil
	}
	rType := ret.Type

	switch strings.TrimSpace(typeModifier) {
	case "[]":
		rType = reflect.SliceOf(rType)
	case "map[string]":
		rType = reflect.MapOf(reflect.TypeOf(""), rType)
	}
	if rType != ret.Type {
		return x.NewType(rType)
	}
	return ret
}

// NewTypes creates a new types
func NewTypes(options ...x.RegistryOption) *Types {
	result := &Types{
		Registry: *x.NewRegistry(options...),
		byName:   make(map[string]*x.Type),
	}
	return result
}
