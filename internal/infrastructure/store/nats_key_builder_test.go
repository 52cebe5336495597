// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilder_EntityKey(t *testing.T) {
	kb := NewKeyBuilder("")

	assert.Equal(t, "occurrence/occ-123", kb.EntityKey(KeyPrefixOccurrence, "occ-123"))
	assert.Equal(t, "response/resp-123", kb.EntityKey(KeyPrefixResponse, "resp-123"))
}

func TestKeyBuilder_EntityKeyWithPrefix(t *testing.T) {
	kb := NewKeyBuilder("rehearsals")

	assert.Equal(t, "rehearsals/band/band-123", kb.EntityKey(KeyPrefixBand, "band-123"))
}

func TestKeyBuilder_IndexKey(t *testing.T) {
	kb := NewKeyBuilder("")

	key := kb.IndexKey(KeyPrefixIndexBandDate, "band-1", "2026-09-15")
	assert.Equal(t, "index/band-date/band-1/2026-09-15", key)

	key = kb.IndexKey(KeyPrefixIndexUserOccurrence, "user-1", "occ-1")
	assert.Equal(t, "index/user-occurrence/user-1/occ-1", key)
}

func TestKeyBuilder_EncodeDecodeRoundTrip(t *testing.T) {
	kb := NewKeyBuilder("")

	keys := []string{
		"occurrence/occ-123",
		"index/band-date/band-1/2026-09-15",
		"index/user-occurrence/user@example.com/occ-1",
	}

	for _, key := range keys {
		encoded, err := kb.EncodeKey(key)
		require.NoError(t, err)
		assert.NotContains(t, encoded, "/")

		decoded, err := kb.DecodeKey(encoded)
		require.NoError(t, err)
		assert.Equal(t, "/"+key, decoded)
	}
}

func TestKeyBuilder_EncodeKeyPreservesWildcards(t *testing.T) {
	kb := NewKeyBuilder("")

	encoded, err := kb.EncodeKey("occurrence/*")
	require.NoError(t, err)
	assert.Contains(t, encoded, "*")
}

func TestKeyBuilder_EntityKeyEncoded(t *testing.T) {
	kb := NewKeyBuilder("")

	encoded := kb.EntityKeyEncoded(KeyPrefixOccurrence, "occ-123")

	decoded, err := kb.DecodeKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, "/occurrence/occ-123", decoded)
}

func TestKeyBuilder_DecodeKeyRejectsGarbage(t *testing.T) {
	kb := NewKeyBuilder("")

	_, err := kb.DecodeKey("not base64!!")
	assert.Error(t, err)
}
