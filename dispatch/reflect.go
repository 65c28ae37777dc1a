package dispatch

import (
	"fmt"
	"reflect"

	"srfc/message"
)

// These types describe the reflected shape a struct method must have to
// be auto-registered by RegisterStruct:
//
//	func (recv) MethodName(params message.Params, payload []byte) ([]byte, message.Status)
var (
	paramsType  = reflect.TypeOf(message.Params(nil))
	payloadType = reflect.TypeOf([]byte(nil))
	statusType  = reflect.TypeOf(message.Status(0))
)

// RegisterStruct scans rcvr's exported methods for the Handler shape and
// adds one entry per matching method to table, named after the method.
// This is sugar over Add for users who prefer grouping handlers as
// methods on a struct; it adds no new registration semantics over
// Table.Add.
//
// Methods whose signature doesn't match are silently skipped.
func RegisterStruct(table *Table, rcvr any) (int, error) {
	val := reflect.ValueOf(rcvr)
	typ := val.Type()

	if typ.Kind() != reflect.Ptr {
		return 0, fmt.Errorf("dispatch: RegisterStruct: rcvr must be a pointer, got %s", typ.Kind())
	}

	registered := 0
	for i := 0; i < typ.NumMethod(); i++ {
		method := typ.Method(i)
		if !isHandlerShaped(method.Type) {
			continue
		}
		fn := val.Method(i)
		table.Add(method.Name, func(params message.Params, payload []byte) ([]byte, message.Status) {
			out := fn.Call([]reflect.Value{reflect.ValueOf(params), reflect.ValueOf(payload)})
			respPayload, _ := out[0].Interface().([]byte)
			status, _ := out[1].Interface().(message.Status)
			return respPayload, status
		})
		registered++
	}
	return registered, nil
}

// isHandlerShaped reports whether a bound method's reflect.Type matches
// func(message.Params, []byte) ([]byte, message.Status), accounting for
// the implicit receiver as method.Type's first "in" parameter.
func isHandlerShaped(t reflect.Type) bool {
	if t.NumIn() != 3 || t.NumOut() != 2 {
		return false
	}
	return t.In(1) == paramsType &&
		t.In(2) == payloadType &&
		t.Out(0) == payloadType &&
		t.Out(1) == statusType
}
