package challenge

import (
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nostrid/engine/library"
	"nostrid/identity/keys"
)

func testSigner(t *testing.T) (library.Signer, library.Account) {
	t.Helper()
	w, err := keys.GenerateKeypair()
	require.NoError(t, err)
	return library.KeySigner{PrivateKey: w.PrivateKey}, w.Account
}

func TestIssue(t *testing.T) {
	c, err := Issue("wss://relay.example.com")
	require.NoError(t, err)
	assert.Len(t, c.Challenge, 64)
	assert.Equal(t, c.Timestamp+300, c.ExpiresAt)
	assert.Equal(t, "wss://relay.example.com", c.Relay)

	other, err := Issue("")
	require.NoError(t, err)
	assert.NotEqual(t, c.Challenge, other.Challenge)
}

func TestRespondAndVerify(t *testing.T) {
	signer, account := testSigner(t)
	c, err := Issue("wss://relay.example.com")
	require.NoError(t, err)
	event, err := Respond(c, "wss://relay.example.com", signer)
	require.NoError(t, err)

	result := Verify(c, event)
	assert.True(t, result.Valid, "unexpected error: %s", result.Error)
	assert.Equal(t, account, result.Pubkey)
}

func TestVerifyExpired(t *testing.T) {
	signer, _ := testSigner(t)
	c, err := Issue("")
	require.NoError(t, err)
	event, err := Respond(c, "", signer)
	require.NoError(t, err)

	c.ExpiresAt = time.Now().Unix() - 1
	result := Verify(c, event)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "expired")
}

func TestVerifyWrongKind(t *testing.T) {
	signer, _ := testSigner(t)
	c, _ := Issue("")
	event, err := Respond(c, "", signer)
	require.NoError(t, err)
	event.Kind = 1
	result := Verify(c, event)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "kind")
}

func TestVerifyTamperedSignature(t *testing.T) {
	signer, _ := testSigner(t)
	c, _ := Issue("")
	event, err := Respond(c, "", signer)
	require.NoError(t, err)
	event.Content = "tampered after signing"
	result := Verify(c, event)
	assert.False(t, result.Valid)
}

func TestVerifyChallengeMismatch(t *testing.T) {
	signer, _ := testSigner(t)
	c, _ := Issue("")
	other, _ := Issue("")
	event, err := Respond(other, "", signer)
	require.NoError(t, err)
	result := Verify(c, event)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "challenge tag")
}

func TestVerifyRelayMismatch(t *testing.T) {
	signer, _ := testSigner(t)
	c, _ := Issue("wss://relay.example.com")
	event, err := Respond(c, "wss://evil.example.com", signer)
	require.NoError(t, err)
	result := Verify(c, event)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "relay")
}

// A validly signed event whose own timestamp predates the challenge is a
// replay of a pre-signed response and must be rejected.
func TestVerifyPreSignedReplay(t *testing.T) {
	signer, account := testSigner(t)
	c, _ := Issue("")
	event := nostr.Event{
		PubKey:    account,
		CreatedAt: nostr.Timestamp(c.Timestamp - 3600),
		Kind:      Kind,
		Tags: nostr.Tags{
			nostr.Tag{"challenge", c.Challenge},
			nostr.Tag{"relay", ""},
		},
	}
	require.NoError(t, signer.Sign(&event))
	result := Verify(c, event)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "timestamp")
}

func TestIssueWithTTL(t *testing.T) {
	c, err := IssueWithTTL("", time.Second*30)
	require.NoError(t, err)
	assert.Equal(t, c.Timestamp+30, c.ExpiresAt)
}
