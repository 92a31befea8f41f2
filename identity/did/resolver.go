package did

import (
	"context"
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"nostrid/engine/actors"
	"nostrid/engine/library"
	"nostrid/identity/nip05"
)

// Resolution error codes, per the DID resolution contract.
const (
	ErrorInvalidDid = "invalidDid"
	ErrorNotFound   = "notFound"
)

// ProfileFetcher is the external collaborator that looks up a pubkey's
// profile, typically from a kind 0 event on the owner's relays.
type ProfileFetcher func(ctx context.Context, pubkey library.Account) (*library.Profile, error)

// KindZeroFetcher builds a ProfileFetcher over a set of kind 0 metadata
// events, typically the latest ones gathered from the owner's relays. A
// profile's lightning address only survives if it parses as one, so garbage
// lud16 strings in a kind 0 never reach the document.
func KindZeroFetcher(events ...nostr.Event) ProfileFetcher {
	return func(ctx context.Context, pubkey library.Account) (*library.Profile, error) {
		for _, event := range events {
			if !strings.EqualFold(event.PubKey, pubkey) {
				continue
			}
			profile, ok := actors.GetProfileFromKind0(event)
			if !ok {
				continue
			}
			if addr, ok := actors.GetLightningAddressFromKind0(event); ok {
				profile.Lud16 = addr
			} else {
				profile.Lud16 = ""
			}
			return &profile, nil
		}
		return nil, fmt.Errorf("no kind 0 event for %s", pubkey)
	}
}

type ResolveOptions struct {
	// FetchProfile enriches the document with profile-derived services. A
	// fetch failure fails resolution with notFound; leave nil for a bare
	// document.
	FetchProfile ProfileFetcher
	// Verifier checks the profile's nip05 identifier against the DID's key.
	// An unverified identifier is simply omitted, never an error.
	Verifier *nip05.Verifier
	Relays   []string
}

type ResolutionResult struct {
	DIDDocument *Document          `json:"didDocument"`
	Metadata    ResolutionMetadata `json:"didResolutionMetadata"`
}

type ResolutionMetadata struct {
	ContentType string `json:"contentType,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Resolve validates the DID and regenerates its document. It always returns
// a result, never an error: a malformed DID yields invalidDid and a failed
// collaborator fetch yields notFound, both with a nil document.
func Resolve(ctx context.Context, didString string, opts ResolveOptions) ResolutionResult {
	pubkey, err := ToPubkey(didString)
	if err != nil {
		return ResolutionResult{Metadata: ResolutionMetadata{Error: ErrorInvalidDid}}
	}
	var profile *library.Profile
	if opts.FetchProfile != nil {
		profile, err = opts.FetchProfile(ctx, pubkey)
		if err != nil {
			return ResolutionResult{Metadata: ResolutionMetadata{Error: ErrorNotFound}}
		}
	}
	var identifier *library.Identifier
	if profile != nil && len(profile.Nip05) > 0 && opts.Verifier != nil {
		identifier = opts.Verifier.Verify(ctx, profile.Nip05, pubkey)
	}
	doc, err := GenerateDocument(pubkey, GenerateOptions{
		Profile:    profile,
		Identifier: identifier,
		Relays:     opts.Relays,
	})
	if err != nil {
		return ResolutionResult{Metadata: ResolutionMetadata{Error: ErrorInvalidDid}}
	}
	return ResolutionResult{
		DIDDocument: doc,
		Metadata:    ResolutionMetadata{ContentType: "application/did+json"},
	}
}
