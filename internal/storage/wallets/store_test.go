package wallets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hodlboard/hodlboard/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "wallets.json"))
	require.NoError(t, err)
	return store
}

func TestStoreLoad(t *testing.T) {
	t.Run("missing file yields empty registry", func(t *testing.T) {
		store := newTestStore(t)
		cfg, err := store.Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsEmpty())
		assert.NotNil(t, cfg.APIs)
		assert.NotNil(t, cfg.Addresses)
	})

	t.Run("empty file yields empty registry", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wallets.json")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		store, err := NewStore(path)
		require.NoError(t, err)
		cfg, err := store.Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsEmpty())
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wallets.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		store, err := NewStore(path)
		require.NoError(t, err)
		_, err = store.Load()
		assert.Error(t, err)
	})
}

func TestStoreCredentials(t *testing.T) {
	t.Run("add assigns sequential ids", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.AddCredential("kraken", domain.Credential{APIKey: "a", APISecret: "a"})
		require.NoError(t, err)
		_, err = store.AddCredential("kraken", domain.Credential{APIKey: "b", APISecret: "b"})
		require.NoError(t, err)

		cfg, err := store.Load()
		require.NoError(t, err)
		require.Len(t, cfg.APIs["kraken"], 2)
		assert.Equal(t, 0, cfg.APIs["kraken"][0].ID)
		assert.Equal(t, 1, cfg.APIs["kraken"][1].ID)
		assert.NotZero(t, cfg.APIs["kraken"][0].TimeAdded)
	})

	t.Run("removing the last entry prunes the exchange", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.AddCredential("kraken", domain.Credential{APIKey: "a", APISecret: "a"})
		require.NoError(t, err)
		_, err = store.RemoveCredential("kraken", 0)
		require.NoError(t, err)

		cfg, err := store.Load()
		require.NoError(t, err)
		_, ok := cfg.APIs["kraken"]
		assert.False(t, ok)
	})

	t.Run("id reused after a gap closes", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.AddCredential("kraken", domain.Credential{APIKey: "a", APISecret: "a"})
		require.NoError(t, err)
		_, err = store.AddCredential("kraken", domain.Credential{APIKey: "b", APISecret: "b"})
		require.NoError(t, err)
		_, err = store.RemoveCredential("kraken", 1)
		require.NoError(t, err)

		cfg, err := store.AddCredential("kraken", domain.Credential{APIKey: "c", APISecret: "c"})
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.APIs["kraken"][1].ID)
	})
}

func TestStoreAddresses(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AddAddress("BTC", domain.AddressEntry{Address: "bc1qexample"})
	require.NoError(t, err)
	_, err = store.AddAddress("ETH", domain.AddressEntry{Address: "0xexample"})
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Len(t, cfg.Addresses["BTC"], 1)
	assert.Equal(t, "bc1qexample", cfg.Addresses["BTC"][0].Address)

	_, err = store.RemoveAddress("ETH", 0)
	require.NoError(t, err)

	cfg, err = store.Load()
	require.NoError(t, err)
	_, ok := cfg.Addresses["ETH"]
	assert.False(t, ok)
	assert.Len(t, cfg.Addresses["BTC"], 1)
}
