package codec

import (
	"bytes"
	"encoding/gob"
)

type binaryCodec struct{}

func (binaryCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (binaryCodec) Decode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (binaryCodec) Name() string { return "binary" }
