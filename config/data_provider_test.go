/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeyErr(t *testing.T) {
	errTooSmall := errors.New("should be >= 1")

	wrapped := WrapKeyErr("cache.shardCount", errTooSmall)
	require.EqualError(t, wrapped, "cache.shardCount: should be >= 1")
	require.ErrorIs(t, wrapped, errTooSmall)
}

func TestWrapKeyErrIfNeeded(t *testing.T) {
	errBadValue := errors.New("must be greater than 0")

	require.NoError(t, WrapKeyErrIfNeeded("cache.maxEntries", nil))

	wrapped := WrapKeyErrIfNeeded("cache.maxEntries", errBadValue)
	require.EqualError(t, wrapped, "cache.maxEntries: must be greater than 0")
	require.ErrorIs(t, wrapped, errBadValue)
}
