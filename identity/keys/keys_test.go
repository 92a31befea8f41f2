package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPubHex  = "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d"
	testPubNpub = "npub1sn0wdenkukak0d9dfczzeacvhkrgz92ak56egt7vdgzn8pv2wfqqhrjdv9"
	testSecHex  = "67dea2ed018072d675f5415ecfaed7d2597555e202d85b3d65ea4e58d2d92ffa"
	testSecNsec = "nsec1vl029mgpspedva04g90vltkh6fvh240zqtv9k0t9af8935ke9laqsnlfe5"
	// the secp256k1 group order
	curveOrder = "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"
)

func TestPubkeyRoundTrip(t *testing.T) {
	npub, err := EncodePubkey(testPubHex)
	require.NoError(t, err)
	assert.Equal(t, testPubNpub, npub)
	hexkey, err := DecodePubkey(npub)
	require.NoError(t, err)
	assert.Equal(t, testPubHex, hexkey)
}

func TestPrivkeyRoundTrip(t *testing.T) {
	nsec, err := EncodePrivkey(testSecHex)
	require.NoError(t, err)
	assert.Equal(t, testSecNsec, nsec)
	hexkey, err := DecodePrivkey(nsec)
	require.NoError(t, err)
	assert.Equal(t, testSecHex, hexkey)
}

func TestEventIDRoundTrip(t *testing.T) {
	id := strings.Repeat("aa", 32)
	note, err := EncodeEventID(id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(note, "note1"))
	got, err := DecodeEventID(note)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestEncodePreconditions(t *testing.T) {
	_, err := EncodePubkey("abc")
	assert.Error(t, err)
	_, err = EncodePubkey(strings.Repeat("zz", 32))
	assert.Error(t, err)
	_, err = EncodePubkey(strings.Repeat("aa", 31))
	assert.Error(t, err)
}

func TestDecodeWrongPrefix(t *testing.T) {
	_, err := DecodePubkey(testSecNsec)
	assert.Error(t, err)
	_, err = DecodePrivkey(testPubNpub)
	assert.Error(t, err)
}

func TestIsValidPrivkey(t *testing.T) {
	tests := []struct {
		name   string
		hexkey string
		want   bool
	}{
		{"valid key", testSecHex, true},
		{"zero scalar", strings.Repeat("00", 32), false},
		{"curve order", curveOrder, false},
		{"order minus one", "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364140", true},
		{"too short", "01", false},
		{"not hex", strings.Repeat("zz", 32), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPrivkey(tt.hexkey))
		})
	}
}

func TestIsValidEncodedForms(t *testing.T) {
	assert.True(t, IsValidEncodedPubkey(testPubNpub))
	assert.True(t, IsValidEncodedPrivkey(testSecNsec))
	assert.False(t, IsValidEncodedPubkey(testSecNsec))
	assert.False(t, IsValidEncodedPrivkey(testPubNpub))
	assert.False(t, IsValidEncodedPubkey("npub1qqqqqqqq"))
}

func TestParseKey(t *testing.T) {
	got, err := ParseKey(testPubHex)
	require.NoError(t, err)
	assert.Equal(t, testPubHex, got)

	got, err = ParseKey(strings.ToUpper(testPubHex))
	require.NoError(t, err)
	assert.Equal(t, testPubHex, got)

	got, err = ParseKey(testPubNpub)
	require.NoError(t, err)
	assert.Equal(t, testPubHex, got)

	_, err = ParseKey("not a key")
	assert.Error(t, err)
}

func TestGenerateKeypair(t *testing.T) {
	w, err := GenerateKeypair()
	require.NoError(t, err)
	assert.True(t, IsValidPrivkey(w.PrivateKey))
	assert.True(t, IsValidPubkey(w.Account))
}

func TestImportKeypair(t *testing.T) {
	fromHex, err := ImportKeypair(testSecHex)
	require.NoError(t, err)
	fromNsec, err := ImportKeypair(testSecNsec)
	require.NoError(t, err)
	assert.Equal(t, fromHex.Account, fromNsec.Account)
	assert.Equal(t, testSecHex, fromHex.PrivateKey)

	_, err = ImportKeypair(strings.Repeat("00", 32))
	assert.Error(t, err)
}

func TestProfilePointerRoundTrip(t *testing.T) {
	p := ProfilePointer{
		PublicKey: testPubHex,
		Relays:    []string{"wss://r.x.com", "wss://djbas.sadkb.com"},
	}
	encoded, err := EncodeProfilePointer(p)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "nprofile1"))
	prefix, decoded, err := DecodePointer(encoded)
	require.NoError(t, err)
	assert.Equal(t, ProfilePointerPrefix, prefix)
	assert.Equal(t, p, decoded.(ProfilePointer))
}

func TestEventPointerRoundTrip(t *testing.T) {
	p := EventPointer{
		ID:     strings.Repeat("ab", 32),
		Relays: []string{"wss://relay.example.com"},
		Author: testPubHex,
		Kind:   1,
	}
	encoded, err := EncodeEventPointer(p)
	require.NoError(t, err)
	prefix, decoded, err := DecodePointer(encoded)
	require.NoError(t, err)
	assert.Equal(t, EventPointerPrefix, prefix)
	assert.Equal(t, p, decoded.(EventPointer))
}

func TestEntityPointerRoundTrip(t *testing.T) {
	p := EntityPointer{
		PublicKey:  testPubHex,
		Kind:       30023,
		Identifier: "banana",
		Relays:     []string{"wss://relay.nostr.example.mydomain.example.com"},
	}
	encoded, err := EncodeEntityPointer(p)
	require.NoError(t, err)
	prefix, decoded, err := DecodePointer(encoded)
	require.NoError(t, err)
	assert.Equal(t, EntityPointerPrefix, prefix)
	assert.Equal(t, p, decoded.(EntityPointer))
}

func TestEncodePointerOversizedRecords(t *testing.T) {
	_, err := EncodeEntityPointer(EntityPointer{
		PublicKey:  testPubHex,
		Kind:       30023,
		Identifier: strings.Repeat("a", 300),
	})
	require.Error(t, err, "an identifier that cannot fit a tlv record must fail the encode, not vanish")

	_, err = EncodeProfilePointer(ProfilePointer{
		PublicKey: testPubHex,
		Relays:    []string{"wss://" + strings.Repeat("r", 300) + ".example.com"},
	})
	assert.Error(t, err)
}

func TestDecodePointerBareKeys(t *testing.T) {
	prefix, decoded, err := DecodePointer(testPubNpub)
	require.NoError(t, err)
	assert.Equal(t, PubkeyPrefix, prefix)
	assert.Equal(t, testPubHex, decoded.(string))
}
