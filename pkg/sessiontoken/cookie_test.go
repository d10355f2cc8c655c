package sessiontoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestCookie_WriteRead(t *testing.T) {
	c := &Cookie{Name: "SESSION", Codec: NewCodec("secret", "todo")}

	var out fasthttp.RequestCtx
	require.NoError(t, c.Write(&out, "session-1", time.Now().Add(time.Hour)))

	written := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(written)
	written.SetKey("SESSION")
	require.True(t, out.Response.Header.Cookie(written))
	assert.True(t, written.HTTPOnly())
	assert.Equal(t, fasthttp.CookieSameSiteLaxMode, written.SameSite())

	var in fasthttp.RequestCtx
	in.Request.Header.SetCookieBytesKV([]byte("SESSION"), written.Value())
	id, err := c.Read(&in)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestCookie_ReadMissing(t *testing.T) {
	c := &Cookie{Name: "SESSION", Codec: NewCodec("secret", "todo")}
	var in fasthttp.RequestCtx
	_, err := c.Read(&in)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCookie_Clear(t *testing.T) {
	c := &Cookie{Name: "SESSION", Codec: NewCodec("secret", "todo")}
	var out fasthttp.RequestCtx
	c.Clear(&out)

	cleared := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cleared)
	cleared.SetKey("SESSION")
	require.True(t, out.Response.Header.Cookie(cleared))
	assert.Empty(t, cleared.Value())
	assert.True(t, cleared.Expire().Before(time.Now()))
}
