package login

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/sasha-s/go-deadlock"
	"nostrid/engine/library"
)

// TokenIssuer hands out session credentials once a login proof has been
// accepted. Anything beyond issuance (rotation, revocation storage) is the
// embedding application's concern.
type TokenIssuer interface {
	Issue(pubkey library.Account) (accessToken string, refreshToken string, err error)
}

// MemoryTokenIssuer issues random tokens and remembers which pubkey owns
// them. Good enough for a single process, swap it out for anything shared.
type MemoryTokenIssuer struct {
	mutex  *deadlock.Mutex
	access map[string]library.Account
}

func NewMemoryTokenIssuer() *MemoryTokenIssuer {
	return &MemoryTokenIssuer{
		mutex:  &deadlock.Mutex{},
		access: make(map[string]library.Account),
	}
}

func (m *MemoryTokenIssuer) Issue(pubkey library.Account) (string, string, error) {
	access, err := randomToken()
	if err != nil {
		return "", "", err
	}
	refresh, err := randomToken()
	if err != nil {
		return "", "", err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.access[access] = pubkey
	return access, refresh, nil
}

// Validate maps an access token back to the pubkey it was issued for.
func (m *MemoryTokenIssuer) Validate(accessToken string) (library.Account, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	pubkey, ok := m.access[accessToken]
	return pubkey, ok
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("could not gather randomness: %s", err.Error())
	}
	return hex.EncodeToString(b), nil
}
