package actors

import (
	"io"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nostrid/engine/library"
)

func testConfig(t *testing.T) {
	t.Helper()
	config := viper.New()
	config.Set("rootDir", t.TempDir()+"/")
	InitConfig(config)
	SetConfig(config)
}

func TestFlatFileRoundTrip(t *testing.T) {
	testConfig(t)
	_, ok := Open("engine", "missing")
	assert.False(t, ok)

	Write("engine", "trip", []byte("payload"))
	file, ok := Open("engine", "trip")
	require.True(t, ok)
	defer file.Close()
	b, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))
}

func TestWalletPersistsThroughFlatFileStore(t *testing.T) {
	testConfig(t)
	original := makeNewWallet()
	require.NoError(t, SetWallet(original))

	// drop the in-memory wallet so MyWallet has to restore it from disk
	currentWalletMutex.Lock()
	currentWallet = library.Wallet{}
	currentWalletMutex.Unlock()

	restored := MyWallet()
	assert.Equal(t, original, restored)

	file, ok := Open("engine", "wallet")
	require.True(t, ok, "the wallet belongs in the flat file store")
	file.Close()
}

func TestGetProfileFromKind0(t *testing.T) {
	event := nostr.Event{Kind: 0, Content: `{"name":"bob","lud16":"bob@wallet.example.com"}`}
	profile, ok := GetProfileFromKind0(event)
	require.True(t, ok)
	assert.Equal(t, "bob", profile.Name)
	assert.Equal(t, "bob@wallet.example.com", profile.Lud16)

	_, ok = GetProfileFromKind0(nostr.Event{Kind: 1, Content: `{}`})
	assert.False(t, ok)
	_, ok = GetProfileFromKind0(nostr.Event{Kind: 0, Content: "not json"})
	assert.False(t, ok)
}

func TestGetLightningAddressFromKind0(t *testing.T) {
	addr, ok := GetLightningAddressFromKind0(nostr.Event{Kind: 0, Content: `{"lud16":"bob@wallet.example.com"}`})
	require.True(t, ok)
	assert.Equal(t, "bob@wallet.example.com", addr)

	_, ok = GetLightningAddressFromKind0(nostr.Event{Kind: 0, Content: `{"lud16":"not a lightning address"}`})
	assert.False(t, ok)
}

func TestLud06RoundTrip(t *testing.T) {
	lud06, ok := Lud16ToLud06("bob@wallet.example.com")
	require.True(t, ok)
	url, err := DecodeLud06(lud06)
	require.NoError(t, err)
	assert.Equal(t, "https://wallet.example.com/.well-known/lnurlp/bob", url)
}

func TestTerminateChanAccessor(t *testing.T) {
	ch := make(chan struct{})
	SetTerminateChan(ch)
	assert.Equal(t, ch, GetTerminateChan())
}
