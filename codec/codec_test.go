package codec

import "testing"

type addArgs struct {
	A, B int
}

func TestJSONRoundTrip(t *testing.T) {
	original := addArgs{A: 1, B: 2}
	data, err := JSON.Encode(&original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var decoded addArgs
	if err := JSON.Decode(data, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != original {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	original := addArgs{A: 3, B: 4}
	data, err := Binary.Encode(&original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var decoded addArgs
	if err := Binary.Decode(data, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != original {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}
