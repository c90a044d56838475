package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonhe/hostwatch/internal/api"
	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault", "credentials.enc")
	s, err := Open(path, []byte("correct horse"))
	require.NoError(t, err)
	return s, path
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("fixed-salt-value")
	k1 := deriveKey([]byte("pass"), salt)
	k2 := deriveKey([]byte("pass"), salt)
	k3 := deriveKey([]byte("other"), salt)
	assert.Len(t, k1, keyLen)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestSealOpen(t *testing.T) {
	key := make([]byte, keyLen)
	sealed, err := seal(key, []byte("secret"))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(sealed, []byte("secret")))

	plain, err := open(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), plain)

	other := make([]byte, keyLen)
	other[0] = 1
	_, err = open(other, sealed)
	assert.Error(t, err)

	_, err = open(key, []byte("short"))
	assert.ErrorIs(t, err, errShortCiphertext)
}

func TestOpenCreatesFile(t *testing.T) {
	_, path := newTestStore(t)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestAddGetReopen(t *testing.T) {
	s, path := newTestStore(t)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Add(Credential{Name: " lab ", Username: "root", Password: "pw", Port: 2222}))

	got, err := s.Get("lab")
	require.NoError(t, err)
	assert.Equal(t, "root", got.Username)
	assert.Equal(t, 2222, got.Port)
	assert.Equal(t, 2024, got.AddedAt.Year())

	reopened, err := Open(path, []byte("correct horse"))
	require.NoError(t, err)
	got, err = reopened.Get("lab")
	require.NoError(t, err)
	assert.Equal(t, "pw", got.Password)
}

func TestOpenWrongPassphrase(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Add(Credential{Name: "a", Username: "u", Password: "p"}))

	_, err := Open(path, []byte("wrong"))
	assert.ErrorIs(t, err, ErrLocked)
	assert.True(t, hwerrors.IsCode(err, hwerrors.ErrConfig))
}

func TestAddValidation(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Add(Credential{Name: "a", Username: "u"})
	assert.True(t, hwerrors.IsCode(err, hwerrors.ErrValidation))

	err = s.Add(Credential{Name: "a", Username: "u", Password: "p", Port: 70000})
	assert.True(t, hwerrors.IsCode(err, hwerrors.ErrValidation))

	require.NoError(t, s.Add(Credential{Name: "a", Username: "u", Password: "p"}))
	assert.ErrorIs(t, s.Add(Credential{Name: "a", Username: "v", Password: "q"}), ErrDuplicate)
}

func TestListSortedWithoutPasswords(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Add(Credential{Name: "zeta", Username: "z", Password: "p"}))
	require.NoError(t, s.Add(Credential{Name: "alpha", Username: "a", Password: "p"}))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "zeta", list[1].Name)
}

func TestRemove(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Add(Credential{Name: "x", Username: "u", Password: "p"}))
	require.NoError(t, s.Remove("x"))

	_, err := s.Get("x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Remove("x"), ErrNotFound)
}

func TestApplyFillsOnlyEmptyFields(t *testing.T) {
	c := Credential{Username: "root", Password: "secret", Port: 2222}

	in := api.HostInput{IP: "10.0.0.1"}
	c.Apply(&in)
	assert.Equal(t, "root", in.Username)
	assert.Equal(t, "secret", in.Password)
	assert.Equal(t, 2222, in.Port)

	in = api.HostInput{Username: "admin", Port: 22}
	c.Apply(&in)
	assert.Equal(t, "admin", in.Username)
	assert.Equal(t, "secret", in.Password)
	assert.Equal(t, 22, in.Port)
}
