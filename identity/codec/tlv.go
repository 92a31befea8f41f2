package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// TLV types used inside pointer entity payloads.
const (
	TLVDefault byte = 0
	TLVRelay   byte = 1
	TLVAuthor  byte = 2
	TLVKind    byte = 3
)

type TLVRecord struct {
	Type  byte
	Value []byte
}

func AppendTLV(buf *bytes.Buffer, typ byte, value []byte) error {
	if len(value) > 255 {
		return fmt.Errorf("tlv value longer than 255 bytes")
	}
	buf.WriteByte(typ)
	buf.WriteByte(byte(len(value)))
	buf.Write(value)
	return nil
}

// AppendTLVKind writes the kind as a fixed 4 byte big-endian record, which
// can never exceed the value length limit.
func AppendTLVKind(buf *bytes.Buffer, kind int) {
	v := make([]byte, 4)
	binary.BigEndian.PutUint32(v, uint32(kind))
	AppendTLV(buf, TLVKind, v)
}

// ParseTLV walks a pointer payload. Unknown types are returned as-is so
// callers can skip what they don't understand.
func ParseTLV(payload []byte) ([]TLVRecord, error) {
	var records []TLVRecord
	for len(payload) > 0 {
		if len(payload) < 2 {
			return nil, fmt.Errorf("truncated tlv record")
		}
		typ := payload[0]
		length := int(payload[1])
		if len(payload) < 2+length {
			return nil, fmt.Errorf("tlv value extends past end of payload")
		}
		records = append(records, TLVRecord{Type: typ, Value: payload[2 : 2+length]})
		payload = payload[2+length:]
	}
	return records, nil
}
