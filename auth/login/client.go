package login

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"nostrid/auth/challenge"
	"nostrid/engine/library"
)

// Client drives the login exchange from the holder's side: request a
// challenge, sign it, post the proof.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    &http.Client{},
	}
}

func (c *Client) RequestChallenge(ctx context.Context) (challenge.Challenge, error) {
	var issued challenge.Challenge
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/challenge", nil)
	if err != nil {
		return issued, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return issued, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return issued, fmt.Errorf("challenge endpoint returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&issued); err != nil {
		return issued, err
	}
	if len(issued.Challenge) == 0 {
		return issued, fmt.Errorf("server issued an empty challenge")
	}
	return issued, nil
}

// Login runs the whole exchange with the given signer. The identifier is an
// optional nip05 claim the server may verify and attach to the session.
func (c *Client) Login(ctx context.Context, signer library.Signer, relay, identifier string) (LoginResponse, error) {
	var response LoginResponse
	issued, err := c.RequestChallenge(ctx)
	if err != nil {
		return response, err
	}
	event, err := challenge.Respond(issued, relay, signer)
	if err != nil {
		return response, err
	}
	body, err := json.Marshal(LoginRequest{
		Pubkey:      event.PubKey,
		SignedEvent: event,
		Identifier:  identifier,
	})
	if err != nil {
		return response, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return response, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return response, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return response, err
	}
	return response, nil
}
