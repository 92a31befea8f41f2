package login

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"nostrid/auth/challenge"
	"nostrid/engine/library"
	"nostrid/identity/keys"
	"nostrid/identity/nip05"
)

// Server implements the login exchange: POST /challenge issues a challenge,
// POST /login consumes a signed response. It also serves the host's own
// /.well-known/nostr.json when names are registered, so a deployment is its
// own nip05 provider.
type Server struct {
	mutex    *deadlock.Mutex
	issued   map[string]challenge.Challenge
	verifier *nip05.Verifier
	tokens   TokenIssuer
	ttl      time.Duration
	relay    string
	names    map[string]library.Account
	relays   map[library.Account][]string
}

type LoginRequest struct {
	Pubkey      library.Account `json:"pubkey"`
	SignedEvent nostr.Event     `json:"signedEvent"`
	Identifier  string          `json:"identifier,omitempty"`
}

type User struct {
	Pubkey     library.Account     `json:"pubkey"`
	Npub       string              `json:"npub,omitempty"`
	Identifier *library.Identifier `json:"identifier,omitempty"`
}

type LoginResponse struct {
	Success      bool   `json:"success"`
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Error        string `json:"error,omitempty"`
}

func NewServer(verifier *nip05.Verifier, tokens TokenIssuer, challengeTTL time.Duration, relay string) *Server {
	if tokens == nil {
		tokens = NewMemoryTokenIssuer()
	}
	if challengeTTL <= 0 {
		challengeTTL = challenge.DefaultTTL
	}
	return &Server{
		mutex:    &deadlock.Mutex{},
		issued:   make(map[string]challenge.Challenge),
		verifier: verifier,
		tokens:   tokens,
		ttl:      challengeTTL,
		relay:    relay,
		names:    make(map[string]library.Account),
		relays:   make(map[library.Account][]string),
	}
}

// RegisterName publishes a name in the well-known document served by this
// server.
func (s *Server) RegisterName(localPart string, pubkey library.Account, relays []string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.names[localPart] = pubkey
	if len(relays) > 0 {
		s.relays[pubkey] = relays
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/challenge", s.handleChallenge)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/.well-known/nostr.json", s.handleWellKnown)
	return mux
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, err := challenge.IssueWithTTL(s.relay, s.ttl)
	if err != nil {
		http.Error(w, "could not issue challenge", http.StatusInternalServerError)
		return
	}
	s.mutex.Lock()
	s.sweepExpired()
	s.issued[c.Challenge] = c
	s.mutex.Unlock()
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, LoginResponse{Error: "request body is not valid json"})
		return
	}
	tag, ok := library.GetFirstTag(req.SignedEvent, "challenge")
	if !ok {
		writeJSON(w, http.StatusUnauthorized, LoginResponse{Error: "signed event has no challenge tag"})
		return
	}
	s.mutex.Lock()
	c, ok := s.issued[tag]
	s.mutex.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, LoginResponse{Error: "unknown or already used challenge"})
		return
	}
	result := challenge.Verify(c, req.SignedEvent)
	if !result.Valid {
		writeJSON(w, http.StatusUnauthorized, LoginResponse{Error: result.Error})
		return
	}
	if len(req.Pubkey) > 0 && req.Pubkey != result.Pubkey {
		writeJSON(w, http.StatusUnauthorized, LoginResponse{Error: "claimed pubkey does not match the event signer"})
		return
	}
	// a challenge answers exactly one successful login
	s.mutex.Lock()
	delete(s.issued, c.Challenge)
	s.mutex.Unlock()

	user := &User{Pubkey: result.Pubkey}
	if npub, err := keys.EncodePubkey(result.Pubkey); err == nil {
		user.Npub = npub
	}
	if len(req.Identifier) > 0 && s.verifier != nil {
		// absence of verification enriches nothing, it never fails the login
		user.Identifier = s.verifier.Verify(r.Context(), req.Identifier, result.Pubkey)
	}
	access, refresh, err := s.tokens.Issue(result.Pubkey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, LoginResponse{Error: "could not issue tokens"})
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Success:      true,
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (s *Server) handleWellKnown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := r.URL.Query().Get("name")
	s.mutex.Lock()
	defer s.mutex.Unlock()
	doc := nip05.WellKnownResponse{Names: make(map[string]library.Account)}
	for localPart, pubkey := range s.names {
		if len(name) > 0 && localPart != name {
			continue
		}
		doc.Names[localPart] = pubkey
		if relays, ok := s.relays[pubkey]; ok {
			if doc.Relays == nil {
				doc.Relays = make(map[string][]string)
			}
			doc.Relays[pubkey] = relays
		}
	}
	writeJSON(w, http.StatusOK, doc)
}

// sweepExpired drops challenges nobody answered. Callers hold the mutex.
func (s *Server) sweepExpired() {
	now := time.Now().Unix()
	for key, c := range s.issued {
		if now > c.ExpiresAt {
			delete(s.issued, key)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		library.LogCLI(err.Error(), 2)
	}
}
