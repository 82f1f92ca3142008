// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDB(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	key, value := []byte("key"), []byte("value")

	has, err := db.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))

	require.NoError(t, db.Put(key, value))

	got, err := db.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	require.NoError(t, db.Delete(key))
	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))
}
