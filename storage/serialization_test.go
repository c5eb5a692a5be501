package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalJSON_Malformed(t *testing.T) {
	var out []string
	err := UnmarshalJSON([]byte("{not json"), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalJSON_Unsupported(t *testing.T) {
	_, err := MarshalJSON(make(chan int))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestJSONRoundTrip(t *testing.T) {
	bs, err := MarshalJSON([]string{"customer", "orders"})
	require.NoError(t, err)

	var out []string
	require.NoError(t, UnmarshalJSON(bs, &out))
	assert.Equal(t, []string{"customer", "orders"}, out)
}
