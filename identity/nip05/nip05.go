package nip05

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"nostrid/engine/library"
	"nostrid/identity/keys"
)

// DefaultFetchTimeout bounds the well-known document fetch.
const DefaultFetchTimeout = time.Second * 10

var (
	localPartPattern = regexp.MustCompile(`^[a-z0-9\-_.]+$`)
	domainPattern    = regexp.MustCompile(`^[a-z0-9][a-z0-9\-.]*\.[a-z]{2,}$`)
)

// WellKnownResponse is the wire format of /.well-known/nostr.json.
type WellKnownResponse struct {
	Names  map[string]library.Account `json:"names"`
	Relays map[string][]string        `json:"relays,omitempty"`
}

// Verifier resolves name@domain identifiers against the domain's well-known
// document. The zero value is not usable, construct with New.
type Verifier struct {
	cache   *Cache
	client  *http.Client
	timeout time.Duration
}

func New(cache *Cache) *Verifier {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	return &Verifier{
		cache:   cache,
		client:  &http.Client{},
		timeout: DefaultFetchTimeout,
	}
}

// SetClient swaps the HTTP client, mostly so tests can point fetches at a
// stub transport.
func (v *Verifier) SetClient(client *http.Client) {
	if client != nil {
		v.client = client
	}
}

func (v *Verifier) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		v.timeout = timeout
	}
}

func (v *Verifier) Cache() *Cache {
	return v.cache
}

// ParseIdentifier splits a name@domain identifier. A bare domain is the
// wildcard identifier _@domain. Nothing here touches the network.
func ParseIdentifier(input string) (*library.Identifier, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if len(input) == 0 {
		return nil, fmt.Errorf("empty identifier")
	}
	localPart := "_"
	domain := input
	if strings.Contains(input, "@") {
		parts := strings.Split(input, "@")
		if len(parts) != 2 {
			return nil, fmt.Errorf("identifier must contain at most one @")
		}
		localPart = parts[0]
		domain = parts[1]
	}
	if !localPartPattern.MatchString(localPart) {
		return nil, fmt.Errorf("invalid local part %s", localPart)
	}
	if !domainPattern.MatchString(domain) {
		return nil, fmt.Errorf("invalid domain %s", domain)
	}
	return &library.Identifier{LocalPart: localPart, Domain: domain}, nil
}

// Verify resolves an identifier to a verified Identifier, consulting the
// cache first. A nil return always means "unverified", whether the cause was
// a parse failure, a transport failure, a missing name or a key mismatch.
// When expected is non-empty the resolved key must equal it (case
// insensitive) or the result is discarded.
func (v *Verifier) Verify(ctx context.Context, identifier string, expected library.Account) *library.Identifier {
	return v.verify(ctx, identifier, expected, false)
}

// Refresh bypasses the cache for this call and overwrites whatever was
// stored for the identifier.
func (v *Verifier) Refresh(ctx context.Context, identifier string, expected library.Account) *library.Identifier {
	return v.verify(ctx, identifier, expected, true)
}

func (v *Verifier) verify(ctx context.Context, identifier string, expected library.Account, skipCache bool) *library.Identifier {
	parsed, err := ParseIdentifier(identifier)
	if err != nil {
		return nil
	}
	key := parsed.String()
	if !skipCache {
		if cached, ok := v.cache.get(key); ok {
			return matchExpected(cached, expected)
		}
	}
	result := v.resolve(ctx, parsed)
	v.cache.put(key, result)
	return matchExpected(result, expected)
}

func matchExpected(result *library.Identifier, expected library.Account) *library.Identifier {
	if result == nil {
		return nil
	}
	if len(expected) > 0 && !strings.EqualFold(result.Pubkey, expected) {
		return nil
	}
	return result
}

// resolve fetches the well-known document and matches the local part. Any
// transport error, bad status or malformed body collapses to nil.
func (v *Verifier) resolve(ctx context.Context, parsed *library.Identifier) *library.Identifier {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, WellKnownURL(parsed.Domain, parsed.LocalPart), nil)
	if err != nil {
		return nil
	}
	resp, err := v.client.Do(req)
	if err != nil {
		library.LogCLI(fmt.Sprintf("well-known fetch for %s failed: %s", parsed.String(), err.Error()), 3)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}
	var doc WellKnownResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil
	}
	if doc.Names == nil {
		return nil
	}
	pubkey, ok := doc.Names[parsed.LocalPart]
	if !ok || !keys.IsValidPubkey(strings.ToLower(pubkey)) {
		return nil
	}
	return &library.Identifier{
		LocalPart:  parsed.LocalPart,
		Domain:     parsed.Domain,
		Pubkey:     strings.ToLower(pubkey),
		Relays:     doc.Relays[pubkey],
		Verified:   true,
		VerifiedAt: time.Now().Unix(),
	}
}

func WellKnownURL(domain, localPart string) string {
	return "https://" + domain + "/.well-known/nostr.json?name=" + localPart
}
