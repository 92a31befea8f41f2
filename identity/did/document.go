package did

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"nostrid/engine/actors"
	"nostrid/engine/library"
	"nostrid/identity/keys"
	"nostrid/identity/nip05"
)

const (
	ContextDIDv1           = "https://www.w3.org/ns/did/v1"
	VerificationMethodType = "SchnorrSecp256k1VerificationKey2019"

	ServiceRelayList        = "NostrRelayList"
	ServiceIdentifier       = "Nip05Verification"
	ServiceLightningAddress = "LightningAddress"
	ServiceLightningPay     = "LightningPayment"
	ServiceWebsite          = "LinkedWebsite"
)

type Document struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	AlsoKnownAs        []string             `json:"alsoKnownAs,omitempty"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
	AssertionMethod    []string             `json:"assertionMethod,omitempty"`
	Service            []Service            `json:"service,omitempty"`
}

type VerificationMethod struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Controller   string `json:"controller"`
	PublicKeyHex string `json:"publicKeyHex"`
}

type Service struct {
	ID              string      `json:"id"`
	Type            string      `json:"type"`
	ServiceEndpoint interface{} `json:"serviceEndpoint"`
}

// GenerateOptions carry the optional data a document is enriched with.
// Absent data produces no entry, never a placeholder.
type GenerateOptions struct {
	Profile    *library.Profile
	Identifier *library.Identifier
	Relays     []string
}

// GenerateDocument builds the DID document for a pubkey. One verification
// method bound to the raw key, authentication and assertionMethod referencing
// it, alsoKnownAs carrying the npub and any verified identifier, then service
// entries in insertion order: relays, identifier, payment, website.
func GenerateDocument(pubkey library.Account, opts GenerateOptions) (*Document, error) {
	id, err := FromPubkey(pubkey)
	if err != nil {
		return nil, err
	}
	pubkey = strings.ToLower(pubkey)
	npub, err := keys.EncodePubkey(pubkey)
	if err != nil {
		return nil, err
	}
	keyID := id + "#key-0"
	doc := &Document{
		Context: []string{ContextDIDv1},
		ID:      id,
		VerificationMethod: []VerificationMethod{{
			ID:           keyID,
			Type:         VerificationMethodType,
			Controller:   id,
			PublicKeyHex: pubkey,
		}},
		Authentication:  []string{keyID},
		AssertionMethod: []string{keyID},
	}
	doc.AlsoKnownAs = append(doc.AlsoKnownAs, "nostr:"+npub)
	identifierVerified := opts.Identifier != nil && opts.Identifier.Verified
	if identifierVerified {
		doc.AlsoKnownAs = append(doc.AlsoKnownAs, opts.Identifier.String())
	}
	if len(opts.Relays) > 0 {
		doc.Service = append(doc.Service, Service{
			ID:              id + "#relays",
			Type:            ServiceRelayList,
			ServiceEndpoint: opts.Relays,
		})
	}
	if identifierVerified {
		doc.Service = append(doc.Service, Service{
			ID:              id + "#nip05",
			Type:            ServiceIdentifier,
			ServiceEndpoint: nip05Endpoint(opts.Identifier),
		})
	}
	if opts.Profile != nil {
		if len(opts.Profile.Lud16) > 0 {
			doc.Service = append(doc.Service, Service{
				ID:              id + "#lud16",
				Type:            ServiceLightningAddress,
				ServiceEndpoint: opts.Profile.Lud16,
			})
		}
		lud06 := opts.Profile.Lud06
		if len(lud06) == 0 && len(opts.Profile.Lud16) > 0 {
			if derived, ok := actors.Lud16ToLud06(opts.Profile.Lud16); ok {
				lud06 = derived
			}
		}
		if len(lud06) > 0 {
			doc.Service = append(doc.Service, Service{
				ID:              id + "#lud06",
				Type:            ServiceLightningPay,
				ServiceEndpoint: lud06,
			})
		}
		if len(opts.Profile.Website) > 0 {
			doc.Service = append(doc.Service, Service{
				ID:              id + "#website",
				Type:            ServiceWebsite,
				ServiceEndpoint: opts.Profile.Website,
			})
		}
	}
	return doc, nil
}

func nip05Endpoint(identifier *library.Identifier) string {
	return nip05.WellKnownURL(identifier.Domain, identifier.LocalPart)
}

// VerifyDocument checks a document against the pubkey it claims to describe
// and returns every violated invariant, not just the first one.
func VerifyDocument(doc *Document, expected library.Account) []string {
	var violations []string
	if doc == nil {
		return []string{"document is nil"}
	}
	expectedDid, err := FromPubkey(expected)
	if err != nil {
		violations = append(violations, fmt.Sprintf("expected pubkey is invalid: %s", err.Error()))
		return violations
	}
	if doc.ID != expectedDid {
		violations = append(violations, fmt.Sprintf("document id %s does not match expected %s", doc.ID, expectedDid))
	}
	if len(doc.Context) == 0 {
		violations = append(violations, "document has no @context")
	}
	var matched bool
	for _, vm := range doc.VerificationMethod {
		if strings.EqualFold(vm.PublicKeyHex, expected) {
			matched = true
		}
	}
	if !matched {
		violations = append(violations, "no verification method is bound to the expected pubkey")
	}
	if len(doc.Authentication) == 0 {
		violations = append(violations, "document has no authentication methods")
	} else {
		vmIDs := make([]string, 0, len(doc.VerificationMethod))
		for _, vm := range doc.VerificationMethod {
			vmIDs = append(vmIDs, vm.ID)
		}
		var referenced bool
		for _, auth := range doc.Authentication {
			if slices.Contains(vmIDs, auth) {
				referenced = true
			}
		}
		if !referenced {
			violations = append(violations, "authentication does not reference any verification method")
		}
	}
	return violations
}
