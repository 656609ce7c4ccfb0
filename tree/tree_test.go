package tree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func TestMutableTreeVersions(t *testing.T) {
	memDB := db.NewMemDB()
	mtree, err := NewMutableTree(0, memDB, 1024)
	require.NoError(t, err)

	mtree.Set([]byte("a1"), []byte("x"))
	mtree.Set([]byte("a2"), []byte("y"))
	mtree.Set([]byte("b1"), []byte("z"))
	_, version, err := mtree.SaveVersion()
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	mtree.Remove([]byte("a2"))
	_, _, err = mtree.SaveVersion()
	require.NoError(t, err)

	var keys [][]byte
	mtree.IteratePrefix([]byte("a"), func(key []byte, value []byte) bool {
		keys = append(keys, key)
		return false
	})
	require.Len(t, keys, 1)
	require.True(t, bytes.Equal(keys[0], []byte("a1")))

	old, err := mtree.GetImmutableAtHeight(1)
	require.NoError(t, err)
	_, value := old.Get([]byte("a2"))
	require.Equal(t, []byte("y"), value)

	reopened, err := NewMutableTree(0, memDB, 1024)
	require.NoError(t, err)
	require.Equal(t, int64(2), reopened.Version())
	require.Equal(t, mtree.Hash(), reopened.Hash())
}

func TestPrefixEnd(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x03}, prefixEnd([]byte{0x01, 0x02}))
	require.Equal(t, []byte{0x02}, prefixEnd([]byte{0x01, 0xff}))
	require.Nil(t, prefixEnd([]byte{0xff, 0xff}))
}
