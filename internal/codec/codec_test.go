package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLeavesSmallBodyUnchanged(t *testing.T) {
	body := `{"command":"ping"}`
	out, err := Encode(body)
	require.NoError(t, err)
	assert.Equal(t, body, out)
}

func TestDecodeIsIdentityOnJSONPrefixedBody(t *testing.T) {
	body := `  {"command":"ping","big":"` + strings.Repeat("x", MaxSQSMessageBytes) + `"}`
	out, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, body, out)
}

func TestDecodeIsIdentityOnEmptyBody(t *testing.T) {
	out, err := Decode("")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestEncodeDecodeRoundTripsOversizeBody(t *testing.T) {
	body := `{"payload":"` + strings.Repeat("a", MaxSQSMessageBytes) + `"}`
	require.GreaterOrEqual(t, len(body), MaxSQSMessageBytes)

	encoded, err := Encode(body)
	require.NoError(t, err)
	assert.NotEqual(t, body, encoded)
	assert.False(t, strings.HasPrefix(strings.TrimSpace(encoded), "{"))

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, body, decoded)
}

func TestDecodeRejectsGarbageBase58(t *testing.T) {
	_, err := Decode("not-valid-base58-!!!")
	assert.Error(t, err)
}
