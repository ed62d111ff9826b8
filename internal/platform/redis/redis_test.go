package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgv/pkg/platform/sentinel"
)

func TestNewWithoutURLDisablesClient(t *testing.T) {
	client, err := New("")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewBadURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}

func TestNewUnreachableServer(t *testing.T) {
	// Port 1 is never a Redis server; the ping fails immediately.
	_, err := New("redis://127.0.0.1:1")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
