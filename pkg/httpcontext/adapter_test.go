package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/todo/domain"
)

func TestAdapter_AttachPropagatesRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set("X-Request-ID", "abc")
	rc.Request.Header.SetUserAgent("tests")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
	assert.Equal(t, "abc", string(rc.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "tests", ctx.Value(KeyUserAgent))
}

func TestAdapter_AttachGeneratesRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	_, cancel := NewAdapter(0).Attach(&rc)
	defer cancel()
	assert.Len(t, string(rc.Response.Header.Peek("X-Request-ID")), 36)
}

func TestSessionValue(t *testing.T) {
	var rc fasthttp.RequestCtx
	_, ok := SessionFrom(&rc)
	assert.False(t, ok)

	WithSession(&rc, &domain.Session{ID: "s1", UserID: "u1"})
	session, ok := SessionFrom(&rc)
	require.True(t, ok)
	assert.Equal(t, "u1", session.UserID)
}
