package challenge

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"nostrid/engine/library"
)

// Kind is the ephemeral event kind reserved for client authentication.
const Kind = 22242

// DefaultTTL is how long an issued challenge stays answerable.
const DefaultTTL = time.Second * 300

// Challenge is issued by a server and must be signed back before ExpiresAt.
// Expiry is computed at verification time, nothing runs a timer.
type Challenge struct {
	Challenge string `json:"challenge"`
	Timestamp int64  `json:"timestamp"`
	ExpiresAt int64  `json:"expiresAt"`
	Relay     string `json:"relay,omitempty"`
}

type Result struct {
	Valid  bool            `json:"valid"`
	Pubkey library.Account `json:"pubkey,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Issue creates a challenge from 32 cryptographically random bytes.
func Issue(relay string) (Challenge, error) {
	return IssueWithTTL(relay, DefaultTTL)
}

func IssueWithTTL(relay string, ttl time.Duration) (Challenge, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return Challenge{}, fmt.Errorf("could not gather randomness: %s", err.Error())
	}
	now := time.Now().Unix()
	return Challenge{
		Challenge: hex.EncodeToString(b),
		Timestamp: now,
		ExpiresAt: now + int64(ttl.Seconds()),
		Relay:     relay,
	}, nil
}

// Respond builds the signed response event for a challenge. The relay tag
// carries the relay the client believes it is authenticating to.
func Respond(c Challenge, relay string, signer library.Signer) (nostr.Event, error) {
	event := nostr.Event{
		PubKey:    signer.Account(),
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      Kind,
		Tags: nostr.Tags{
			nostr.Tag{"challenge", c.Challenge},
			nostr.Tag{"relay", relay},
		},
	}
	if err := signer.Sign(&event); err != nil {
		return nostr.Event{}, err
	}
	return event, nil
}

// Verify checks a signed response against the challenge it answers. Every
// check fails closed; only all-pass yields a Valid result carrying the
// signer's pubkey.
func Verify(c Challenge, event nostr.Event) Result {
	now := time.Now().Unix()
	if now > c.ExpiresAt {
		return Result{Error: fmt.Sprintf("challenge expired at %d", c.ExpiresAt)}
	}
	if event.Kind != Kind {
		return Result{Error: fmt.Sprintf("wrong event kind %d, want %d", event.Kind, Kind)}
	}
	if ok, err := event.CheckSignature(); !ok {
		reason := "signature verification failed"
		if err != nil {
			reason = err.Error()
		}
		return Result{Error: reason}
	}
	tag, ok := library.GetFirstTag(event, "challenge")
	if !ok || tag != c.Challenge {
		return Result{Error: "challenge tag does not match"}
	}
	if len(c.Relay) > 0 {
		relayTag, ok := library.GetFirstTag(event, "relay")
		if !ok || relayTag != c.Relay {
			return Result{Error: "relay tag does not match"}
		}
	}
	// a pre-signed event replayed later fails here even though the
	// signature itself is fine
	created := int64(event.CreatedAt)
	if created < c.Timestamp || created > c.ExpiresAt {
		return Result{Error: "event timestamp outside the challenge window"}
	}
	return Result{Valid: true, Pubkey: event.PubKey}
}
