package appdb

import (
	"testing"

	"github.com/MinterTeam/minter-swap/config"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppDB(t *testing.T) *AppDB {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.SetRoot(t.TempDir())
	cfg.DBBackend = "memdb"

	appDB, err := NewAppDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = appDB.Close() })
	return appDB
}

func TestAppDB_LastHeight(t *testing.T) {
	appDB := newTestAppDB(t)

	height, err := appDB.GetLastHeight()
	require.NoError(t, err)
	assert.Zero(t, height)

	require.NoError(t, appDB.SetLastHeight(42))
	height, err = appDB.GetLastHeight()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), height)
}

func TestAppDB_Deployment(t *testing.T) {
	appDB := newTestAppDB(t)

	_, ok, err := appDB.GetDeployment()
	require.NoError(t, err)
	assert.False(t, ok)

	want := &Deployment{
		Wallet:    types.HexToAddress("Mx00000000000000000000000000000000000000a1"),
		FactoryV2: types.HexToAddress("Mx00000000000000000000000000000000000000f2"),
		Router02:  types.HexToAddress("Mx00000000000000000000000000000000000000b2"),
	}
	require.NoError(t, appDB.SetDeployment(want))

	got, ok, err := appDB.GetDeployment()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestAppDB_Versions(t *testing.T) {
	appDB := newTestAppDB(t)

	require.NoError(t, appDB.AddVersion("v1", 1))
	require.NoError(t, appDB.AddVersion("v1", 5))
	require.NoError(t, appDB.AddVersion("v2", 10))
	require.NoError(t, appDB.SaveVersions())

	versions, err := appDB.GetVersions()
	require.NoError(t, err)
	require.Len(t, versions, 2)

	tests := []struct {
		height uint64
		want   string
	}{
		{0, ""},
		{1, "v1"},
		{9, "v1"},
		{10, "v2"},
		{100, "v2"},
	}
	for _, tt := range tests {
		name, err := appDB.GetVersionName(tt.height)
		require.NoError(t, err)
		assert.Equal(t, tt.want, name, "height %d", tt.height)
	}
}
