package httpauth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
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

func TestBuildAndVerify(t *testing.T) {
	signer, account := testSigner(t)
	header, err := BuildHeader("https://api.example.com/v1/resource", "get", nil, signer)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(header, "Nostr "))

	result := VerifyHeader(header, "https://api.example.com/v1/resource", "GET", nil)
	assert.True(t, result.Valid, "unexpected error: %s", result.Error)
	assert.Equal(t, account, result.Pubkey)
}

func TestVerifyDifferentPath(t *testing.T) {
	signer, _ := testSigner(t)
	header, err := BuildHeader("https://api.example.com/v1/resource", "GET", nil, signer)
	require.NoError(t, err)
	result := VerifyHeader(header, "https://api.example.com/v1/other", "GET", nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "u tag")
}

func TestVerifyDifferentMethod(t *testing.T) {
	signer, _ := testSigner(t)
	header, err := BuildHeader("https://api.example.com/v1/resource", "GET", nil, signer)
	require.NoError(t, err)
	result := VerifyHeader(header, "https://api.example.com/v1/resource", "POST", nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "method")
}

func TestVerifyMethodCaseInsensitive(t *testing.T) {
	signer, _ := testSigner(t)
	header, err := BuildHeader("https://api.example.com/v1/resource", "post", []byte(`{"a":1}`), signer)
	require.NoError(t, err)
	result := VerifyHeader(header, "https://api.example.com/v1/resource", "POST", []byte(`{"a":1}`))
	assert.True(t, result.Valid, "unexpected error: %s", result.Error)
}

func TestVerifyEquivalentURLs(t *testing.T) {
	signer, _ := testSigner(t)
	header, err := BuildHeader("HTTPS://API.Example.com:443/v1/resource?b=2&a=1", "GET", nil, signer)
	require.NoError(t, err)
	result := VerifyHeader(header, "https://api.example.com/v1/resource?a=1&b=2", "GET", nil)
	assert.True(t, result.Valid, "unexpected error: %s", result.Error)
}

func TestVerifyPayloadMismatch(t *testing.T) {
	signer, _ := testSigner(t)
	header, err := BuildHeader("https://api.example.com/v1/resource", "POST", []byte("original"), signer)
	require.NoError(t, err)
	result := VerifyHeader(header, "https://api.example.com/v1/resource", "POST", []byte("tampered"))
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "payload")
}

func TestVerifyMissingPayloadTag(t *testing.T) {
	signer, _ := testSigner(t)
	header, err := BuildHeader("https://api.example.com/v1/resource", "POST", nil, signer)
	require.NoError(t, err)
	result := VerifyHeader(header, "https://api.example.com/v1/resource", "POST", []byte("surprise body"))
	assert.False(t, result.Valid)
}

func TestVerifyStaleTimestamp(t *testing.T) {
	signer, account := testSigner(t)
	event := nostr.Event{
		PubKey:    account,
		CreatedAt: nostr.Timestamp(time.Now().Unix() - 3600),
		Kind:      Kind,
		Tags: nostr.Tags{
			nostr.Tag{"u", "https://api.example.com/v1/resource"},
			nostr.Tag{"method", "GET"},
		},
	}
	require.NoError(t, signer.Sign(&event))
	header := encodeEventHeader(t, event)
	result := VerifyHeader(header, "https://api.example.com/v1/resource", "GET", nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "timestamp")
}

func TestVerifyWrongKind(t *testing.T) {
	signer, account := testSigner(t)
	event := nostr.Event{
		PubKey:    account,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      1,
		Tags: nostr.Tags{
			nostr.Tag{"u", "https://api.example.com/"},
			nostr.Tag{"method", "GET"},
		},
	}
	require.NoError(t, signer.Sign(&event))
	header := encodeEventHeader(t, event)
	result := VerifyHeader(header, "https://api.example.com/", "GET", nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "kind")
}

func TestVerifyRejectsGarbageHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"empty", ""},
		{"wrong scheme", "Bearer abcdef"},
		{"not base64", "Nostr %%%%"},
		{"not json", "Nostr " + base64.StdEncoding.EncodeToString([]byte("not json"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := VerifyHeader(tt.header, "https://api.example.com/", "GET", nil)
			assert.False(t, result.Valid)
			assert.NotEmpty(t, result.Error)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"lowercases scheme and host", "HTTPS://API.Example.COM/Path", "https://api.example.com/Path", false},
		{"strips default https port", "https://example.com:443/x", "https://example.com/x", false},
		{"strips default http port", "http://example.com:80/x", "http://example.com/x", false},
		{"keeps explicit port", "https://example.com:8443/x", "https://example.com:8443/x", false},
		{"empty path becomes slash", "https://example.com", "https://example.com/", false},
		{"sorts query pairs", "https://example.com/?b=2&a=1", "https://example.com/?a=1&b=2", false},
		{"drops fragment", "https://example.com/x#section", "https://example.com/x", false},
		{"relative url rejected", "/v1/resource", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func encodeEventHeader(t *testing.T, event nostr.Event) string {
	t.Helper()
	b, err := json.Marshal(&event)
	require.NoError(t, err)
	return Scheme + " " + base64.StdEncoding.EncodeToString(b)
}
