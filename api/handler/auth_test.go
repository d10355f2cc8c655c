package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/sessiontoken"
	"github.com/fastygo/todo/repository/memory"
	authUC "github.com/fastygo/todo/usecase/auth"
)

// unavailableSessions fails every write, as a down session store would.
type unavailableSessions struct{}

var errStoreDown = errors.New("session store unavailable")

func (unavailableSessions) Get(context.Context, string) (*domain.Session, error) {
	return nil, errStoreDown
}
func (unavailableSessions) Save(context.Context, *domain.Session) error { return errStoreDown }
func (unavailableSessions) Delete(context.Context, string) error { return errStoreDown }
func (unavailableSessions) Extend(context.Context, string, time.Duration) error { return errStoreDown }

func TestAuthHandler_RegisterSucceedsWithoutSession(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	store := memory.NewStore()
	uc := authUC.New(store.Users(), unavailableSessions{}, authUC.NewBcryptHasher(bcrypt.MinCost), time.Hour, nil)
	cookie := &sessiontoken.Cookie{Name: "SESSION", Codec: sessiontoken.NewCodec("secret", "todo")}
	h := NewAuthHandler(uc, cookie, nil, zap.New(core))

	var ctx fasthttp.RequestCtx
	ctx.Request.SetBodyString(`{"username":"alice","password":"secret1"}`)
	h.Register(&ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"success":true`)
	assert.Contains(t, string(ctx.Response.Body()), `"username":"alice"`)

	written := &fasthttp.Cookie{}
	written.SetKey("SESSION")
	assert.False(t, ctx.Response.Header.Cookie(written), "no cookie without a stored session")
	assert.Equal(t, 1, logs.FilterMessage("user registered but session could not be started").Len())

	exists, err := store.Users().ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}
