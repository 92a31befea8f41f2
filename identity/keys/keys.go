package keys

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/nbd-wtf/go-nostr"
	"nostrid/engine/library"
	"nostrid/identity/codec"
)

const (
	PubkeyPrefix  = "npub"
	PrivkeyPrefix = "nsec"
	EventIDPrefix = "note"
)

// EncodePubkey encodes a 64 character hex pubkey as npub.
func EncodePubkey(hexkey string) (string, error) {
	return encodeKey(PubkeyPrefix, hexkey)
}

// DecodePubkey decodes an npub back to hex.
func DecodePubkey(npub string) (library.Account, error) {
	return decodeKey(PubkeyPrefix, npub)
}

func EncodePrivkey(hexkey string) (string, error) {
	return encodeKey(PrivkeyPrefix, hexkey)
}

func DecodePrivkey(nsec string) (string, error) {
	return decodeKey(PrivkeyPrefix, nsec)
}

func EncodeEventID(id library.Sha256) (string, error) {
	return encodeKey(EventIDPrefix, id)
}

func DecodeEventID(note string) (library.Sha256, error) {
	return decodeKey(EventIDPrefix, note)
}

func encodeKey(prefix, hexkey string) (string, error) {
	b, err := hex.DecodeString(hexkey)
	if err != nil {
		return "", fmt.Errorf("not valid hex: %s", err.Error())
	}
	if len(b) != 32 {
		return "", fmt.Errorf("key must be 32 bytes, got %d", len(b))
	}
	return codec.Encode(prefix, b)
}

func decodeKey(prefix, encoded string) (string, error) {
	hrp, payload, err := codec.Decode(encoded)
	if err != nil {
		return "", err
	}
	if hrp != prefix {
		return "", fmt.Errorf("expected prefix %s but got %s", prefix, hrp)
	}
	if len(payload) != 32 {
		return "", fmt.Errorf("payload must be 32 bytes, got %d", len(payload))
	}
	return hex.EncodeToString(payload), nil
}

// IsValidPubkey reports whether hexkey is a 64 character hex string.
func IsValidPubkey(hexkey string) bool {
	b, err := hex.DecodeString(hexkey)
	return err == nil && len(b) == 32
}

// IsValidPrivkey additionally requires the scalar to be inside the secp256k1
// group: zero and anything >= the curve order cannot sign.
func IsValidPrivkey(hexkey string) bool {
	if !IsValidPubkey(hexkey) {
		return false
	}
	k, ok := new(big.Int).SetString(hexkey, 16)
	if !ok {
		return false
	}
	if k.Sign() <= 0 {
		return false
	}
	return k.Cmp(btcec.S256().N) < 0
}

func IsValidEncodedPubkey(npub string) bool {
	_, err := DecodePubkey(npub)
	return err == nil
}

func IsValidEncodedPrivkey(nsec string) bool {
	hexkey, err := DecodePrivkey(nsec)
	if err != nil {
		return false
	}
	return IsValidPrivkey(hexkey)
}

// ParseKey accepts a pubkey in either raw hex or npub form and normalizes it
// to lowercase hex.
func ParseKey(input string) (library.Account, error) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, PubkeyPrefix+"1") {
		return DecodePubkey(input)
	}
	lower := strings.ToLower(input)
	if IsValidPubkey(lower) {
		return lower, nil
	}
	return "", fmt.Errorf("input is neither a hex pubkey nor an npub")
}

// GenerateKeypair makes a fresh wallet. Scalar generation and pubkey
// derivation are go-nostr's problem, we only deal in encodings.
func GenerateKeypair() (library.Wallet, error) {
	sk := nostr.GeneratePrivateKey()
	pub, err := nostr.GetPublicKey(sk)
	if err != nil {
		return library.Wallet{}, err
	}
	return library.Wallet{PrivateKey: sk, Account: pub}, nil
}

// ImportKeypair accepts a private key in raw hex or nsec form.
func ImportKeypair(input string) (library.Wallet, error) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, PrivkeyPrefix+"1") {
		decoded, err := DecodePrivkey(input)
		if err != nil {
			return library.Wallet{}, err
		}
		input = decoded
	}
	input = strings.ToLower(input)
	if !IsValidPrivkey(input) {
		return library.Wallet{}, fmt.Errorf("not a valid private key")
	}
	pub, err := nostr.GetPublicKey(input)
	if err != nil {
		return library.Wallet{}, err
	}
	return library.Wallet{PrivateKey: input, Account: pub}, nil
}
