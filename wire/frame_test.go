package wire

import (
	"errors"
	"testing"

	"srfc/message"
)

func TestSerializeParseRequestRoundTrip(t *testing.T) {
	req := &message.Request{
		ID:     42,
		Method: "Add",
		Params: message.Params{
			{Name: "a", Value: "1"},
			{Name: "b", Value: "2"},
		},
		Payload: []byte("payload-bytes"),
	}

	frame, err := Serialize(req)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !Validate(frame) {
		t.Fatalf("Validate rejected a freshly serialized request frame")
	}

	decoded, err := Parse(frame)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, ok := decoded.(*message.Request)
	if !ok {
		t.Fatalf("Parse returned %T, want *message.Request", decoded)
	}
	if got.ID != req.ID || got.Method != req.Method {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
	if len(got.Params) != len(req.Params) {
		t.Fatalf("param count mismatch: got %d, want %d", len(got.Params), len(req.Params))
	}
	for i := range req.Params {
		if got.Params[i] != req.Params[i] {
			t.Fatalf("param %d mismatch: got %+v, want %+v", i, got.Params[i], req.Params[i])
		}
	}
	if string(got.Payload) != string(req.Payload) {
		t.Fatalf("payload mismatch: got %q, want %q", got.Payload, req.Payload)
	}
}

func TestSerializeParseResponseRoundTrip(t *testing.T) {
	resp := &message.Response{ID: 7, Status: message.StatusNotImplemented, Payload: []byte("boom")}

	frame, err := Serialize(resp)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !Validate(frame) {
		t.Fatalf("Validate rejected a freshly serialized response frame")
	}

	decoded, err := Parse(frame)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, ok := decoded.(*message.Response)
	if !ok {
		t.Fatalf("Parse returned %T, want *message.Response", decoded)
	}
	if got.ID != resp.ID || got.Status != resp.Status || string(got.Payload) != string(resp.Payload) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, resp)
	}
}

func TestRequestWithZeroParams(t *testing.T) {
	req := message.NewRequest("Ping", nil, nil)
	frame, err := Serialize(req)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !Validate(frame) {
		t.Fatalf("a zero-param request must still validate")
	}
}

func TestPreambleMatchesFrameLength(t *testing.T) {
	req := message.NewRequest("Ping", nil, []byte("x"))
	frame, err := Serialize(req)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	length, ok := PeekLength(frame)
	if !ok {
		t.Fatalf("PeekLength failed on a well-formed frame")
	}
	if length != len(frame) {
		t.Fatalf("preamble %d does not match actual frame length %d", length, len(frame))
	}
}

func TestValidateRejectsTruncatedFrame(t *testing.T) {
	req := message.NewRequest("Ping", nil, []byte("hello"))
	frame, err := Serialize(req)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	truncated := frame[:len(frame)-2]
	if Validate(truncated) {
		t.Fatalf("Validate accepted a truncated frame")
	}
}

func TestValidateRejectsBadProtocolTag(t *testing.T) {
	req := message.NewRequest("Ping", nil, nil)
	frame, err := Serialize(req)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	corrupt := append([]byte(nil), frame...)
	corrupt[PreambleSize] = 'X'
	if Validate(corrupt) {
		t.Fatalf("Validate accepted a frame with a corrupted protocol tag")
	}
}

func TestValidateRejectsGarbagePreamble(t *testing.T) {
	garbage := []byte("not-a-valid-preamble-at-all-----REQ\x00junk")
	if Validate(garbage) {
		t.Fatalf("Validate accepted a non-numeric preamble")
	}
}

func TestValidateNeverPanics(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("0"),
		append([]byte(zeroPadded(5)), []byte("abcd")...),
	}
	for i, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("input %d panicked: %v", i, r)
				}
			}()
			Validate(in)
		}()
	}
}

func TestParseRejectsMalformedFrame(t *testing.T) {
	_, err := Parse([]byte("garbage"))
	if err == nil {
		t.Fatalf("expect an error parsing garbage, got nil")
	}
	if !errors.Is(err, message.ErrMalformedFrame) {
		t.Fatalf("expect error wrapping message.ErrMalformedFrame, got %v", err)
	}
}
