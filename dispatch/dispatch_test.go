package dispatch

import (
	"testing"

	"srfc/message"
)

func echoHandler(params message.Params, payload []byte) ([]byte, message.Status) {
	return payload, message.StatusOK
}

func TestAddGetHasRemove(t *testing.T) {
	table := NewTable()
	if table.Has("Echo") {
		t.Fatalf("expect empty table to not have Echo")
	}

	table.Add("Echo", echoHandler)
	if !table.Has("Echo") {
		t.Fatalf("expect Echo to be registered")
	}

	h, ok := table.Get("Echo")
	if !ok {
		t.Fatalf("expect Get to find Echo")
	}
	payload, status := h(nil, []byte("hi"))
	if status != message.StatusOK || string(payload) != "hi" {
		t.Fatalf("unexpected handler result: %q, %v", payload, status)
	}

	if !table.Remove("Echo") {
		t.Fatalf("expect Remove to report true for a present handler")
	}
	if table.Remove("Echo") {
		t.Fatalf("expect a second Remove to report false")
	}
	if table.Has("Echo") {
		t.Fatalf("expect Echo to be gone after Remove")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	table := NewTable()
	table.Add("Echo", echoHandler)

	clone := table.Clone()
	if !clone.Has("Echo") {
		t.Fatalf("expect clone to carry over existing handlers")
	}

	clone.Add("Ping", echoHandler)
	if table.Has("Ping") {
		t.Fatalf("mutating the clone must not affect the original table")
	}

	table.Remove("Echo")
	if !clone.Has("Echo") {
		t.Fatalf("mutating the original must not affect a prior clone")
	}
}

type arithService struct{}

func (arithService) Add(params message.Params, payload []byte) ([]byte, message.Status) {
	return payload, message.StatusOK
}

func (arithService) notExported(params message.Params, payload []byte) ([]byte, message.Status) {
	return payload, message.StatusOK
}

func (arithService) WrongShape(x int) int { return x }

func TestRegisterStructOnlyMatchesHandlerShaped(t *testing.T) {
	table := NewTable()
	n, err := RegisterStruct(table, &arithService{})
	if err != nil {
		t.Fatalf("RegisterStruct failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expect exactly 1 handler-shaped method registered, got %d", n)
	}
	if !table.Has("Add") {
		t.Fatalf("expect Add to be registered")
	}
	if table.Has("WrongShape") {
		t.Fatalf("WrongShape must not be registered: wrong signature")
	}
}

func TestRegisterStructRequiresPointer(t *testing.T) {
	table := NewTable()
	if _, err := RegisterStruct(table, arithService{}); err == nil {
		t.Fatalf("expect an error registering a non-pointer receiver")
	}
}
