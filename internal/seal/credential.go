package seal

import (
	"time"

	"github.com/dmitrijs2005/sealstream/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCredential is a short-lived, address-scoped authorization artifact
// presented to key servers when requesting key release. It is created fresh
// per decrypt attempt and lives only in process memory.
type SessionCredential struct {
	Address   string
	Namespace string
	ExpiresAt time.Time

	token string
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Address   string `json:"address"`
	Namespace string `json:"namespace"`
}

// NewSessionCredential creates a credential scoped to the given address and
// policy namespace, valid for ttl. Construction is pure and local; the
// credential does not touch the network until used by Decrypt. TTL must be
// positive.
func NewSessionCredential(address, namespace string, ttl time.Duration) (*SessionCredential, error) {
	if address == "" || namespace == "" || ttl <= 0 {
		return nil, common.ErrInvalidInput
	}

	now := time.Now()
	expires := now.Add(ttl)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Address:   address,
		Namespace: namespace,
	}

	// The signing secret is ephemeral: the quorum treats the token as an
	// opaque session artifact and binds it to the shard request it arrives
	// with, so nothing else ever needs to verify the signature.
	secret := common.GenerateRandByteArray(32)
	defer common.WipeByteArray(secret)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return nil, err
	}

	return &SessionCredential{
		Address:   address,
		Namespace: namespace,
		ExpiresAt: expires,
		token:     token,
	}, nil
}

// Expired reports whether the credential's TTL has elapsed.
func (c *SessionCredential) Expired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Token returns the opaque token presented to key servers.
func (c *SessionCredential) Token() string {
	return c.token
}
