package seal

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/sealstream/internal/common"
	"github.com/stretchr/testify/require"
)

func TestNewSessionCredential(t *testing.T) {
	cred, err := NewSessionCredential("0xabc", "0xpkg", 10*time.Minute)
	require.NoError(t, err)

	require.Equal(t, "0xabc", cred.Address)
	require.Equal(t, "0xpkg", cred.Namespace)
	require.NotEmpty(t, cred.Token())
	require.False(t, cred.Expired())
	require.WithinDuration(t, time.Now().Add(10*time.Minute), cred.ExpiresAt, time.Second)
}

func TestNewSessionCredentialValidation(t *testing.T) {
	_, err := NewSessionCredential("", "0xpkg", time.Minute)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewSessionCredential("0xabc", "", time.Minute)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewSessionCredential("0xabc", "0xpkg", 0)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewSessionCredential("0xabc", "0xpkg", -time.Minute)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSessionCredentialExpires(t *testing.T) {
	cred, err := NewSessionCredential("0xabc", "0xpkg", time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.True(t, cred.Expired())
}

func TestSessionCredentialsAreUnique(t *testing.T) {
	a, err := NewSessionCredential("0xabc", "0xpkg", time.Minute)
	require.NoError(t, err)
	b, err := NewSessionCredential("0xabc", "0xpkg", time.Minute)
	require.NoError(t, err)

	require.NotEqual(t, a.Token(), b.Token())
}
