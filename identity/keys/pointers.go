package keys

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"nostrid/engine/library"
	"nostrid/identity/codec"
)

const (
	ProfilePointerPrefix = "nprofile"
	EventPointerPrefix   = "nevent"
	RelayPointerPrefix   = "nrelay"
	EntityPointerPrefix  = "naddr"
)

type ProfilePointer struct {
	PublicKey library.Account `json:"pubkey"`
	Relays    []string        `json:"relays,omitempty"`
}

type EventPointer struct {
	ID     library.Sha256  `json:"id"`
	Relays []string        `json:"relays,omitempty"`
	Author library.Account `json:"author,omitempty"`
	Kind   int             `json:"kind,omitempty"`
}

type EntityPointer struct {
	PublicKey  library.Account `json:"pubkey"`
	Kind       int             `json:"kind,omitempty"`
	Identifier string          `json:"identifier,omitempty"`
	Relays     []string        `json:"relays,omitempty"`
}

func EncodeProfilePointer(p ProfilePointer) (string, error) {
	key, err := hex.DecodeString(p.PublicKey)
	if err != nil || len(key) != 32 {
		return "", fmt.Errorf("pointer pubkey must be 32 bytes of hex")
	}
	var buf bytes.Buffer
	if err := codec.AppendTLV(&buf, codec.TLVDefault, key); err != nil {
		return "", err
	}
	for _, relay := range p.Relays {
		if err := codec.AppendTLV(&buf, codec.TLVRelay, []byte(relay)); err != nil {
			return "", err
		}
	}
	return codec.Encode(ProfilePointerPrefix, buf.Bytes())
}

func EncodeEventPointer(p EventPointer) (string, error) {
	id, err := hex.DecodeString(p.ID)
	if err != nil || len(id) != 32 {
		return "", fmt.Errorf("pointer event id must be 32 bytes of hex")
	}
	var buf bytes.Buffer
	if err := codec.AppendTLV(&buf, codec.TLVDefault, id); err != nil {
		return "", err
	}
	for _, relay := range p.Relays {
		if err := codec.AppendTLV(&buf, codec.TLVRelay, []byte(relay)); err != nil {
			return "", err
		}
	}
	if len(p.Author) == 64 {
		author, err := hex.DecodeString(p.Author)
		if err != nil {
			return "", fmt.Errorf("pointer author must be hex")
		}
		if err := codec.AppendTLV(&buf, codec.TLVAuthor, author); err != nil {
			return "", err
		}
	}
	if p.Kind != 0 {
		codec.AppendTLVKind(&buf, p.Kind)
	}
	return codec.Encode(EventPointerPrefix, buf.Bytes())
}

func EncodeEntityPointer(p EntityPointer) (string, error) {
	key, err := hex.DecodeString(p.PublicKey)
	if err != nil || len(key) != 32 {
		return "", fmt.Errorf("pointer pubkey must be 32 bytes of hex")
	}
	var buf bytes.Buffer
	if err := codec.AppendTLV(&buf, codec.TLVDefault, []byte(p.Identifier)); err != nil {
		return "", fmt.Errorf("entity pointer identifier: %s", err.Error())
	}
	for _, relay := range p.Relays {
		if err := codec.AppendTLV(&buf, codec.TLVRelay, []byte(relay)); err != nil {
			return "", err
		}
	}
	if err := codec.AppendTLV(&buf, codec.TLVAuthor, key); err != nil {
		return "", err
	}
	codec.AppendTLVKind(&buf, p.Kind)
	return codec.Encode(EntityPointerPrefix, buf.Bytes())
}

func EncodeRelayURL(url string) (string, error) {
	var buf bytes.Buffer
	if err := codec.AppendTLV(&buf, codec.TLVDefault, []byte(url)); err != nil {
		return "", err
	}
	return codec.Encode(RelayPointerPrefix, buf.Bytes())
}

// DecodePointer decodes any of the seven supported entity forms. The second
// return value is a hex string for npub/nsec/note, a relay URL string for
// nrelay, and one of the pointer structs for nprofile/nevent/naddr.
func DecodePointer(encoded string) (string, interface{}, error) {
	hrp, payload, err := codec.DecodeNoLimit(encoded)
	if err != nil {
		return "", nil, err
	}
	switch hrp {
	case PubkeyPrefix, PrivkeyPrefix, EventIDPrefix:
		if len(payload) != 32 {
			return "", nil, fmt.Errorf("payload must be 32 bytes, got %d", len(payload))
		}
		return hrp, hex.EncodeToString(payload), nil
	case ProfilePointerPrefix:
		records, err := codec.ParseTLV(payload)
		if err != nil {
			return "", nil, err
		}
		var p ProfilePointer
		for _, r := range records {
			switch r.Type {
			case codec.TLVDefault:
				if len(r.Value) != 32 {
					return "", nil, fmt.Errorf("profile pointer key must be 32 bytes")
				}
				p.PublicKey = hex.EncodeToString(r.Value)
			case codec.TLVRelay:
				p.Relays = append(p.Relays, string(r.Value))
			}
		}
		if len(p.PublicKey) == 0 {
			return "", nil, fmt.Errorf("profile pointer has no pubkey record")
		}
		return hrp, p, nil
	case EventPointerPrefix:
		records, err := codec.ParseTLV(payload)
		if err != nil {
			return "", nil, err
		}
		var p EventPointer
		for _, r := range records {
			switch r.Type {
			case codec.TLVDefault:
				if len(r.Value) != 32 {
					return "", nil, fmt.Errorf("event pointer id must be 32 bytes")
				}
				p.ID = hex.EncodeToString(r.Value)
			case codec.TLVRelay:
				p.Relays = append(p.Relays, string(r.Value))
			case codec.TLVAuthor:
				if len(r.Value) == 32 {
					p.Author = hex.EncodeToString(r.Value)
				}
			case codec.TLVKind:
				if len(r.Value) == 4 {
					p.Kind = int(binary.BigEndian.Uint32(r.Value))
				}
			}
		}
		if len(p.ID) == 0 {
			return "", nil, fmt.Errorf("event pointer has no id record")
		}
		return hrp, p, nil
	case EntityPointerPrefix:
		records, err := codec.ParseTLV(payload)
		if err != nil {
			return "", nil, err
		}
		var p EntityPointer
		for _, r := range records {
			switch r.Type {
			case codec.TLVDefault:
				p.Identifier = string(r.Value)
			case codec.TLVRelay:
				p.Relays = append(p.Relays, string(r.Value))
			case codec.TLVAuthor:
				if len(r.Value) != 32 {
					return "", nil, fmt.Errorf("entity pointer author must be 32 bytes")
				}
				p.PublicKey = hex.EncodeToString(r.Value)
			case codec.TLVKind:
				if len(r.Value) == 4 {
					p.Kind = int(binary.BigEndian.Uint32(r.Value))
				}
			}
		}
		if len(p.PublicKey) == 0 {
			return "", nil, fmt.Errorf("entity pointer has no author record")
		}
		return hrp, p, nil
	case RelayPointerPrefix:
		records, err := codec.ParseTLV(payload)
		if err != nil {
			return "", nil, err
		}
		for _, r := range records {
			if r.Type == codec.TLVDefault {
				return hrp, string(r.Value), nil
			}
		}
		return "", nil, fmt.Errorf("relay pointer has no url record")
	}
	return "", nil, fmt.Errorf("unknown prefix %s", hrp)
}
