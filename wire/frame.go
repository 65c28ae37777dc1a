// Package wire implements the SRFCv1 frame codec: the length-prefixed,
// null-terminated-field, ASCII-header frame format, and its
// serialize/validate/parse routines.
//
// Layout (offsets from the start of the frame):
//
//	[0 .. 32)      Preamble: 32 ASCII decimal digits, left-zero-padded,
//	               giving the TOTAL frame length in bytes.
//	[32 .. H)      Header: null-terminated ASCII fields, fixed order.
//	[H .. H+PS)    Payload: PS bytes, uninterpreted.
package wire

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"srfc/message"
)

const (
	// PreambleSize is the fixed width of the length prefix.
	PreambleSize = 32
	// ProtocolTag is the literal protocol identifier, the frame's first
	// header field.
	ProtocolTag = "SRFCv1"

	fieldSep = ": "
)

type frameType string

const (
	typeReq frameType = "REQ"
	typeRes frameType = "RES"
)

// Serialize encodes a *message.Request or *message.Response into a
// complete wire frame. The preamble is computed from the header and
// payload sizes and written zero-padded to PreambleSize.
func Serialize(msg any) ([]byte, error) {
	var header bytes.Buffer
	var payload []byte

	writeField(&header, ProtocolTag)

	switch m := msg.(type) {
	case *message.Request:
		writeField(&header, "TYPE"+fieldSep+string(typeReq))
		writeField(&header, "RI"+fieldSep+strconv.FormatUint(m.ID, 10))
		writeField(&header, "PS"+fieldSep+strconv.Itoa(len(m.Payload)))
		writeField(&header, m.Method)
		for _, p := range m.Params {
			writeField(&header, p.Name+fieldSep+p.Value)
		}
		payload = m.Payload
	case *message.Response:
		writeField(&header, "TYPE"+fieldSep+string(typeRes))
		writeField(&header, "RI"+fieldSep+strconv.FormatUint(m.ID, 10))
		writeField(&header, "PS"+fieldSep+strconv.Itoa(len(m.Payload)))
		writeField(&header, "STATUS"+fieldSep+strconv.FormatUint(uint64(m.Status), 10))
		payload = m.Payload
	default:
		return nil, fmt.Errorf("wire: serialize: unsupported type %T", msg)
	}

	total := PreambleSize + header.Len() + len(payload)
	out := make([]byte, 0, total)
	out = append(out, []byte(zeroPadded(total))...)
	out = append(out, header.Bytes()...)
	out = append(out, payload...)
	return out, nil
}

func writeField(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

func zeroPadded(n int) string {
	s := strconv.Itoa(n)
	if len(s) >= PreambleSize {
		return s[len(s)-PreambleSize:]
	}
	return strings.Repeat("0", PreambleSize-len(s)) + s
}

// PeekLength reads the 32-byte preamble from buf and returns the declared
// total frame length. ok is false if buf is shorter than PreambleSize or
// the preamble is not a valid non-negative decimal integer.
func PeekLength(buf []byte) (length int, ok bool) {
	if len(buf) < PreambleSize {
		return 0, false
	}
	n, err := strconv.ParseUint(string(buf[:PreambleSize]), 10, 64)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// Validate reports whether frame is a structurally well-formed SRFCv1
// frame whose declared preamble length equals len(frame). It never
// panics; any parsing failure yields false.
func Validate(frame []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	n, valid := PeekLength(frame)
	if !valid || n != len(frame) {
		return false
	}
	cur := cursor{buf: frame, pos: PreambleSize}

	tag, err := cur.readField()
	if err != nil || tag != ProtocolTag {
		return false
	}

	typeField, err := cur.readField()
	if err != nil {
		return false
	}
	k, v, err := splitKV(typeField)
	if err != nil || k != "TYPE" {
		return false
	}
	if v != string(typeReq) && v != string(typeRes) {
		return false
	}

	riField, err := cur.readField()
	if err != nil {
		return false
	}
	k, v, err = splitKV(riField)
	if err != nil || k != "RI" {
		return false
	}
	if _, err := strconv.ParseUint(v, 10, 64); err != nil {
		return false
	}

	psField, err := cur.readField()
	if err != nil {
		return false
	}
	k, v, err = splitKV(psField)
	if err != nil || k != "PS" {
		return false
	}
	payloadSize, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return false
	}

	payloadStart := len(frame) - int(payloadSize)
	if payloadStart < cur.pos {
		return false
	}

	if typeField == "TYPE"+fieldSep+string(typeReq) {
		if _, err := cur.readField(); err != nil {
			return false
		}
		for cur.pos < payloadStart {
			field, err := cur.readField()
			if err != nil {
				return false
			}
			if _, _, err := splitKV(field); err != nil {
				return false
			}
		}
	} else {
		stField, err := cur.readField()
		if err != nil {
			return false
		}
		k, v, err := splitKV(stField)
		if err != nil || k != "STATUS" {
			return false
		}
		if _, err := strconv.ParseUint(v, 10, 64); err != nil {
			return false
		}
	}

	return cur.pos == payloadStart
}

// Parse decodes a wire frame into a *message.Request or *message.Response.
// The caller must have called Validate(frame) and observed true; Parse
// does not re-derive every invariant Validate checks, but it never reads
// out of bounds — any cursor overrun yields message.ErrMalformedFrame.
func Parse(frame []byte) (any, error) {
	n, ok := PeekLength(frame)
	if !ok || n != len(frame) {
		return nil, fmt.Errorf("wire: parse: %w: bad preamble", message.ErrMalformedFrame)
	}
	cur := cursor{buf: frame, pos: PreambleSize}

	tag, err := cur.readField()
	if err != nil || tag != ProtocolTag {
		return nil, fmt.Errorf("wire: parse: %w: bad protocol tag", message.ErrMalformedFrame)
	}

	typeField, err := cur.readField()
	if err != nil {
		return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
	}
	_, typ, err := splitKV(typeField)
	if err != nil {
		return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
	}

	riField, err := cur.readField()
	if err != nil {
		return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
	}
	_, riStr, err := splitKV(riField)
	if err != nil {
		return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
	}
	id, err := strconv.ParseUint(riStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
	}

	psField, err := cur.readField()
	if err != nil {
		return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
	}
	_, psStr, err := splitKV(psField)
	if err != nil {
		return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
	}
	payloadSize, err := strconv.ParseUint(psStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
	}

	payloadStart := len(frame) - int(payloadSize)
	if payloadStart < cur.pos || payloadStart > len(frame) {
		return nil, fmt.Errorf("wire: parse: %w: payload out of bounds", message.ErrMalformedFrame)
	}

	switch typ {
	case string(typeReq):
		method, err := cur.readField()
		if err != nil {
			return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
		}
		var params message.Params
		for cur.pos < payloadStart {
			field, err := cur.readField()
			if err != nil {
				return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
			}
			k, v, err := splitKV(field)
			if err != nil {
				return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
			}
			params = append(params, message.Param{Name: k, Value: v})
		}
		return &message.Request{
			ID:      id,
			Method:  method,
			Params:  params,
			Payload: frame[payloadStart:],
		}, nil

	case string(typeRes):
		stField, err := cur.readField()
		if err != nil {
			return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
		}
		k, v, err := splitKV(stField)
		if err != nil || k != "STATUS" {
			return nil, fmt.Errorf("wire: parse: %w: bad status field", message.ErrMalformedFrame)
		}
		status, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("wire: parse: %w: %v", message.ErrMalformedFrame, err)
		}
		return &message.Response{
			ID:      id,
			Status:  message.Status(status),
			Payload: frame[payloadStart:],
		}, nil

	default:
		return nil, fmt.Errorf("wire: parse: %w: unknown TYPE %q", message.ErrMalformedFrame, typ)
	}
}

// cursor walks null-terminated header fields of a frame.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) readField() (string, error) {
	start := c.pos
	idx := bytes.IndexByte(c.buf[c.pos:], 0)
	if idx < 0 {
		return "", fmt.Errorf("unterminated field")
	}
	c.pos += idx + 1
	return string(c.buf[start : start+idx]), nil
}

// splitKV splits a "KEY: VALUE" field on the first occurrence of ": ".
func splitKV(field string) (key, value string, err error) {
	idx := indexSep(field)
	if idx < 0 {
		return "", "", fmt.Errorf("missing %q separator in %q", fieldSep, field)
	}
	return field[:idx], field[idx+len(fieldSep):], nil
}

func indexSep(s string) int {
	for i := 0; i+len(fieldSep) <= len(s); i++ {
		if s[i] == ':' && s[i+1] == ' ' {
			return i
		}
	}
	return -1
}
