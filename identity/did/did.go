package did

import (
	"fmt"
	"strings"

	"nostrid/engine/library"
	"nostrid/identity/keys"
)

const (
	Method = "nostr"
	Prefix = "did:" + Method + ":"
)

// FromPubkey derives the DID for a pubkey: did:nostr:<lowercase hex>.
func FromPubkey(pubkey library.Account) (string, error) {
	pubkey = strings.ToLower(pubkey)
	if !keys.IsValidPubkey(pubkey) {
		return "", fmt.Errorf("not a valid pubkey")
	}
	return Prefix + pubkey, nil
}

// ToPubkey is the exact inverse of FromPubkey and the only place DID shape is
// validated. Uppercase hex and wrong lengths are parse failures, not things
// to repair.
func ToPubkey(did string) (library.Account, error) {
	if !strings.HasPrefix(did, Prefix) {
		return "", fmt.Errorf("missing %s prefix", Prefix)
	}
	hexkey := strings.TrimPrefix(did, Prefix)
	if hexkey != strings.ToLower(hexkey) {
		return "", fmt.Errorf("did key part must be lowercase hex")
	}
	if !keys.IsValidPubkey(hexkey) {
		return "", fmt.Errorf("did key part is not a valid pubkey")
	}
	return hexkey, nil
}
