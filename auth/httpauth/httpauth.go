package httpauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"golang.org/x/exp/slices"
	"nostrid/engine/library"
)

// Kind is the ephemeral event kind reserved for HTTP authorization.
const Kind = 27235

// Scheme is the Authorization header scheme token.
const Scheme = "Nostr"

// DefaultWindow is the accepted skew around "now" for the event timestamp.
// Much tighter than a challenge TTL since this authenticates one in-flight
// request, not a handshake.
const DefaultWindow = time.Second * 60

type Result struct {
	Valid  bool            `json:"valid"`
	Pubkey library.Account `json:"pubkey,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BuildHeader signs a (url, method, payload hash) tuple and renders it as an
// Authorization header value. Pass the raw request body as payload, or nil
// for bodyless requests.
func BuildHeader(rawURL, method string, payload []byte, signer library.Signer) (string, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}
	tags := nostr.Tags{
		nostr.Tag{"u", normalized},
		nostr.Tag{"method", strings.ToUpper(method)},
	}
	if len(payload) > 0 {
		tags = append(tags, nostr.Tag{"payload", library.Sha256Sum(payload)})
	}
	event := nostr.Event{
		PubKey:    signer.Account(),
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      Kind,
		Tags:      tags,
	}
	if err := signer.Sign(&event); err != nil {
		return "", err
	}
	b, err := json.Marshal(&event)
	if err != nil {
		return "", err
	}
	return Scheme + " " + base64.StdEncoding.EncodeToString(b), nil
}

// VerifyHeader checks an Authorization header against the request it arrived
// on. Pass the request body as payload when there is one; when the event
// carries a payload tag it must match. Success authenticates the signing key
// for this single request only.
func VerifyHeader(header, rawURL, method string, payload []byte) Result {
	event, err := decodeHeader(header)
	if err != nil {
		return Result{Error: err.Error()}
	}
	if event.Kind != Kind {
		return Result{Error: fmt.Sprintf("wrong event kind %d, want %d", event.Kind, Kind)}
	}
	now := time.Now().Unix()
	created := int64(event.CreatedAt)
	window := int64(DefaultWindow.Seconds())
	if created < now-window || created > now+window {
		return Result{Error: "event timestamp outside the acceptance window"}
	}
	if ok, err := event.CheckSignature(); !ok {
		reason := "signature verification failed"
		if err != nil {
			reason = err.Error()
		}
		return Result{Error: reason}
	}
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return Result{Error: err.Error()}
	}
	uTag, ok := library.GetFirstTag(event, "u")
	if !ok {
		return Result{Error: "event has no u tag"}
	}
	tagNormalized, err := NormalizeURL(uTag)
	if err != nil || tagNormalized != normalized {
		return Result{Error: "u tag does not match the request url"}
	}
	methodTag, ok := library.GetFirstTag(event, "method")
	if !ok || !strings.EqualFold(methodTag, method) {
		return Result{Error: "method tag does not match the request method"}
	}
	if payloadTag, ok := library.GetFirstTag(event, "payload"); ok {
		if len(payload) == 0 || !strings.EqualFold(payloadTag, library.Sha256Sum(payload)) {
			return Result{Error: "payload tag does not match the request body"}
		}
	} else if len(payload) > 0 {
		return Result{Error: "request has a body but the event has no payload tag"}
	}
	return Result{Valid: true, Pubkey: event.PubKey}
}

func decodeHeader(header string) (nostr.Event, error) {
	var event nostr.Event
	if !strings.HasPrefix(header, Scheme+" ") {
		return event, fmt.Errorf("authorization header does not start with the %s scheme", Scheme)
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, Scheme+" "))
	if err != nil {
		return event, fmt.Errorf("authorization header is not valid base64: %s", err.Error())
	}
	if err := json.Unmarshal(b, &event); err != nil {
		return event, fmt.Errorf("authorization header does not contain an event: %s", err.Error())
	}
	return event, nil
}

// NormalizeURL pins the comparison form used on both sides: lowercase scheme
// and host, default ports stripped, empty path rendered as /, query pairs
// sorted bytewise, fragment dropped.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() || len(u.Host) == 0 {
		return "", fmt.Errorf("url must be absolute with a host")
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if scheme == "http" {
		host = strings.TrimSuffix(host, ":80")
	}
	if scheme == "https" {
		host = strings.TrimSuffix(host, ":443")
	}
	path := u.EscapedPath()
	if len(path) == 0 {
		path = "/"
	}
	normalized := scheme + "://" + host + path
	if len(u.RawQuery) > 0 {
		pairs := strings.Split(u.RawQuery, "&")
		slices.SortFunc(pairs, func(a, b string) bool {
			return a < b
		})
		normalized += "?" + strings.Join(pairs, "&")
	}
	return normalized, nil
}
