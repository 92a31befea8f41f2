package library

import (
	"fmt"

	"github.com/nbd-wtf/go-nostr"
)

// Signer produces a signature over an unsigned event. The two variants are a
// local private key and whatever external signing oracle the caller wires in
// (a remote signer, an HSM, a browser extension bridge). Protocol code never
// branches on which one it got.
type Signer interface {
	Sign(event *nostr.Event) error
	Account() Account
}

// KeySigner signs with a locally held private key.
type KeySigner struct {
	PrivateKey string
}

func (s KeySigner) Sign(event *nostr.Event) error {
	if len(s.PrivateKey) != 64 {
		return fmt.Errorf("signer does not hold a valid private key")
	}
	event.ID = event.GetID()
	return event.Sign(s.PrivateKey)
}

func (s KeySigner) Account() Account {
	pub, err := nostr.GetPublicKey(s.PrivateKey)
	if err != nil {
		return ""
	}
	return pub
}
