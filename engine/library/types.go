package library

// Account is a 64 character hex encoded secp256k1 x-only pubkey.
type Account = string

type Sha256 = string

type Wallet struct {
	PrivateKey string
	Account    Account
}

// Profile is the subset of a kind 0 event's content that we care about.
type Profile struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	About       string `json:"about"`
	Picture     string `json:"picture"`
	Website     string `json:"website"`
	Nip05       string `json:"nip05"`
	Lud16       string `json:"lud16"`
	Lud06       string `json:"lud06"`
}

// Identifier is a name@domain identity claim and the result of resolving it
// against the domain's well-known document.
type Identifier struct {
	LocalPart  string   `json:"localPart"`
	Domain     string   `json:"domain"`
	Pubkey     Account  `json:"pubkey,omitempty"`
	Relays     []string `json:"relays,omitempty"`
	Verified   bool     `json:"verified"`
	VerifiedAt int64    `json:"verifiedAt,omitempty"`
}

func (i Identifier) String() string {
	return i.LocalPart + "@" + i.Domain
}
