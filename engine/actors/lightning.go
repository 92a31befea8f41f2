package actors

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/fiatjaf/go-lnurl"
	"github.com/nbd-wtf/go-nostr"
	"nostrid/engine/library"
)

// GetProfileFromKind0 parses the profile fields out of a kind 0 event.
func GetProfileFromKind0(event nostr.Event) (library.Profile, bool) {
	var profile library.Profile
	if event.Kind != 0 || len(event.Content) == 0 {
		return profile, false
	}
	err := json.Unmarshal([]byte(event.Content), &profile)
	if err != nil {
		return profile, false
	}
	return profile, true
}

// GetLightningAddressFromKind0 returns the lud16 address if the event's
// profile carries a parseable one.
func GetLightningAddressFromKind0(event nostr.Event) (string, bool) {
	profile, ok := GetProfileFromKind0(event)
	if !ok {
		return "", false
	}
	addr, err := mail.ParseAddress(profile.Lud16)
	if err != nil {
		return "", false
	}
	return strings.Trim(addr.String(), "<>"), true
}

func lud16ToUrl(address string) (s string, e error) {
	split := strings.Split(address, "@")
	if len(split) != 2 {
		return "", fmt.Errorf("invalid lightning address")
	}
	return "https://" + strings.Trim(split[1], "<>") + "/.well-known/lnurlp/" + strings.Trim(split[0], "<>"), e
}

func urlToLud06(url string) (string, error) {
	return lnurl.Encode(url)
}

// Lud16ToLud06 converts a lightning address to its bech32 lnurl-pay form.
// This is a pure conversion, nothing goes over the wire.
func Lud16ToLud06(lud16 string) (string, bool) {
	url, err := lud16ToUrl(lud16)
	if err != nil {
		library.LogCLI(err, 2)
		return "", false
	}
	lud06, err := urlToLud06(url)
	if err != nil {
		library.LogCLI(err, 2)
		return "", false
	}
	if len(lud06) > 0 {
		return lud06, true
	}
	return "", false
}

// DecodeLud06 validates a lud06 string by decoding it back to its pay URL.
func DecodeLud06(lud06 string) (string, error) {
	url, err := lnurl.LNURLDecode(lud06)
	if err != nil {
		return "", err
	}
	return url, nil
}
