package sessiontoken

import (
	"time"

	"github.com/valyala/fasthttp"
)

// Cookie reads and writes the signed session cookie.
type Cookie struct {
	Name   string
	Secure bool
	Codec  *Codec
}

// Write sets the cookie carrying sessionID until expires.
func (c *Cookie) Write(ctx *fasthttp.RequestCtx, sessionID string, expires time.Time) error {
	value, err := c.Codec.Encode(sessionID)
	if err != nil {
		return err
	}
	cookie := c.base()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetValue(value)
	cookie.SetExpire(expires)
	ctx.Response.Header.SetCookie(cookie)
	return nil
}

// Read returns the session id from the request cookie.
func (c *Cookie) Read(ctx *fasthttp.RequestCtx) (string, error) {
	return c.Codec.Decode(string(ctx.Request.Header.Cookie(c.Name)))
}

// Clear instructs the client to drop the cookie.
func (c *Cookie) Clear(ctx *fasthttp.RequestCtx) {
	cookie := c.base()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(cookie)
}

func (c *Cookie) base() *fasthttp.Cookie {
	cookie := fasthttp.AcquireCookie()
	cookie.SetKey(c.Name)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(c.Secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	return cookie
}
