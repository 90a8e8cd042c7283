package extension

import (
	"context"
	"reflect"

	"github.com/viant/gatekeeper/model/types"
	"github.com/viant/toolbox"
)

// Execute invokes a named method on a registered service with loosely typed
// arguments (for example a decoded JSON object from an LLM tool call).  The
// arguments are converted onto a freshly allocated input value matching the
// method signature; the populated output value is returned.
func Execute(ctx context.Context, service types.Service, method string, args map[string]interface{}) (interface{}, error) {
	signature := service.Methods().Lookup(method)
	if signature == nil {
		return nil, types.NewMethodNotFoundError(method)
	}
	executable, err := service.Method(method)
	if err != nil {
		return nil, err
	}
	input := newValue(signature.Input)
	output := newValue(signature.Output)
	if len(args) > 0 {
		if err := toolbox.DefaultConverter.AssignConverted(input, args); err != nil {
			return nil, err
		}
	}
	if err := executable(ctx, input, output); err != nil {
		return nil, err
	}
	return output, nil
}

func newValue(t reflect.Type) interface{} {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.New(t).Interface()
}
