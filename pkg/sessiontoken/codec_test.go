package sessiontoken

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("secret", "todo")

	token, err := codec.Encode("session-1")
	require.NoError(t, err)

	id, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestCodec_RejectsTampering(t *testing.T) {
	codec := NewCodec("secret", "todo")
	token, err := codec.Encode("session-1")
	require.NoError(t, err)

	_, err = NewCodec("other", "todo").Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewCodec("secret", "someone-else").Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = codec.Decode(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = codec.Decode("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_RejectsUnsignedTokens(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{ID: "s"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewCodec("secret", "").Decode(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_RejectsMissingID(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "todo"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewCodec("secret", "todo").Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
