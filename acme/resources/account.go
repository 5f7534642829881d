package resources

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cpu/acme01client/acme/keys"
)

// Account holds the account key pair the engine signs requests with, plus
// whatever the engine has learned about the server-side registration. An
// Account returned by NewAccount holds a freshly generated key pair that has
// not yet been registered (RegLink is empty); the zero value has no key.
//
// See spec.md section 3's "Account Key Pair" and "Registration" entries.
type Account struct {
	// PrivateKey is the RSA account key. The engine holds exactly one of
	// these for its lifetime.
	PrivateKey *rsa.PrivateKey
	// RegLink is the server-assigned URL identifying this account, populated
	// from the Location header of a successful new-reg response.
	RegLink string
	// Contact mirrors the account's registered contact addresses.
	Contact []string
	// PublicKey is the server-confirmed view of the account's public key,
	// taken from the "key" field of a reg response. Key authorizations are
	// computed against this field, not against PrivateKey.Public(), per
	// spec.md section 3's invariant that the engine never fabricates it.
	PublicKey *rsa.PublicKey
}

// NewAccount generates a fresh RSA account key pair of the given bit size (0
// selects keys.DefaultBits). The account is not registered with any server.
func NewAccount(bits int) (*Account, error) {
	key, err := keys.NewSigner(bits)
	if err != nil {
		return nil, err
	}
	return &Account{PrivateKey: key}, nil
}

type rawAccount struct {
	RegLink    string
	Contact    []string
	PrivateKey []byte
}

// Save persists the account private key, RegLink and Contact to path, for
// reuse across invocations (the core itself never does this automatically;
// see spec.md section 3). PublicKey is not saved.
func (a *Account) Save(path string) error {
	raw := rawAccount{
		RegLink:    a.RegLink,
		Contact:    a.Contact,
		PrivateKey: keys.MarshalSigner(a.PrivateKey),
	}
	b, err := json.MarshalIndent(&raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

// RestoreAccount loads an Account previously written with Save.
func RestoreAccount(path string) (*Account, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw rawAccount
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	key, err := keys.UnmarshalSigner(raw.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &Account{
		PrivateKey: key,
		RegLink:    raw.RegLink,
		Contact:    raw.Contact,
	}, nil
}

func (a Account) String() string {
	if a.RegLink == "" {
		return "<unregistered account>"
	}
	return fmt.Sprintf("<account %s>", a.RegLink)
}
