package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/session"
)

type fakeAuthAPI struct {
	gotCreds model.Credentials

	token    model.Token
	loginErr error

	account model.Account
	regErr  error
}

var _ AuthAPI = (*fakeAuthAPI)(nil)

func (f *fakeAuthAPI) Register(_ context.Context, c model.Credentials) (model.Account, error) {
	f.gotCreds = c
	return f.account, f.regErr
}

func (f *fakeAuthAPI) Login(_ context.Context, c model.Credentials) (model.Token, error) {
	f.gotCreds = c
	return f.token, f.loginErr
}

var _ TokenHolder = (*session.Session)(nil)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(session.NewMemStore())
	require.NoError(t, err)
	return s
}

func TestAuth_LoginStoresToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := &fakeAuthAPI{token: model.Token{AccessToken: "tok", TokenType: "bearer"}}
	sess := newSession(t)
	a := NewAuth(api, sess, zaptest.NewLogger(t))

	creds := model.Credentials{Email: "a@b.c", Password: "pw"}
	require.NoError(t, a.Login(ctx, creds))
	require.Equal(t, creds, api.gotCreds)
	require.Equal(t, "tok", sess.Token())

	st := a.Snapshot()
	require.True(t, st.Authenticated)
	require.Empty(t, st.Error)
	require.False(t, st.Busy)

	require.NoError(t, a.Logout())
	require.False(t, a.Snapshot().Authenticated)
	require.Empty(t, sess.Token())
}

func TestAuth_LoginFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := &fakeAuthAPI{loginErr: errs.ErrAuth}
	sess := newSession(t)
	a := NewAuth(api, sess, zaptest.NewLogger(t))

	require.ErrorIs(t, a.Login(ctx, model.Credentials{Email: "x", Password: "y"}), errs.ErrAuth)
	st := a.Snapshot()
	require.Equal(t, MsgLoginFailed, st.Error)
	require.False(t, st.Authenticated)

	api.loginErr = nil
	require.ErrorIs(t, a.Login(ctx, model.Credentials{}), errs.ErrAuth, "empty token is rejected")
	require.Empty(t, sess.Token())
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := &fakeAuthAPI{account: model.Account{ID: 3, Email: "a@b.c", IsActive: true}}
	a := NewAuth(api, newSession(t), nil)

	acc, err := a.Register(ctx, model.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	require.EqualValues(t, 3, acc.ID)
	require.False(t, a.Snapshot().Authenticated, "register does not log in")

	api.regErr = errs.ErrNetwork
	_, err = a.Register(ctx, model.Credentials{Email: "a@b.c", Password: "pw"})
	require.ErrorIs(t, err, errs.ErrNetwork)
	require.Equal(t, MsgRegisterFailed, a.Snapshot().Error)
}
