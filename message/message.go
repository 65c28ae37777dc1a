// Package message defines the data model exchanged between SRFC peers.
//
// A Request carries a method name, an ordered list of text parameters, and
// an opaque binary payload. A Response carries the status of handling a
// request and an opaque binary payload. Both are the in-memory form of the
// wire frame produced and consumed by package wire.
package message

import "sync/atomic"

// Param is a single ordered (name, value) pair of a request's parameter
// list. Duplicate names are permitted; order is preserved through
// serialization (see wire.Serialize).
type Param struct {
	Name  string
	Value string
}

// Params is the ordered parameter list of a Request.
type Params []Param

// Get returns the value of the first parameter with the given name.
func (p Params) Get(name string) (string, bool) {
	for _, kv := range p {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return "", false
}

var idCounter atomic.Uint64

// NewID returns the next id from a process-wide monotonic counter,
// starting at 1. Ids are unique within the process lifetime.
func NewID() uint64 {
	return idCounter.Add(1)
}

// Request is an SRFC request. Its Id is fixed at construction; copying a
// Request duplicates the Id, it is the caller's responsibility not to
// reuse an Id for a second, distinct in-flight request.
type Request struct {
	ID      uint64
	Method  string
	Params  Params
	Payload []byte
}

// NewRequest builds a Request with a freshly allocated Id.
func NewRequest(method string, params Params, payload []byte) *Request {
	return &Request{
		ID:      NewID(),
		Method:  method,
		Params:  params,
		Payload: payload,
	}
}

// Response is an SRFC response, either produced programmatically by a
// handler's return values or parsed from a received frame.
type Response struct {
	ID      uint64
	Status  Status
	Payload []byte
}

// NewResponse builds a Response seeded with a request id and status Ok.
func NewResponse(id uint64) *Response {
	return &Response{ID: id, Status: StatusOK}
}

// ConnectionError builds the synthetic response delivered to an awaiter
// when the connection is disconnected or a write fails.
func ConnectionError(id uint64) *Response {
	return &Response{ID: id, Status: StatusConnectionError}
}
