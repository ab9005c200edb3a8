package controller

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

// User-facing messages left in AuthState.Error after a failed action.
const (
	MsgLoginFailed    = "Login failed"
	MsgRegisterFailed = "Registration failed"
)

// AuthAPI is the subset of the backend adapter used for authentication.
type AuthAPI interface {
	Register(ctx context.Context, creds model.Credentials) (model.Account, error)
	Login(ctx context.Context, creds model.Credentials) (model.Token, error)
}

// TokenHolder keeps the access token between requests. *session.Session implements it.
type TokenHolder interface {
	Login(token string) error
	Logout() error
	Authenticated() bool
}

// AuthState is a copy of the auth controller state.
type AuthState struct {
	Authenticated bool
	Busy          bool
	Error         string
}

// Auth drives register/login/logout and keeps the session current.
type Auth struct {
	api  AuthAPI
	sess TokenHolder
	log  *zap.Logger

	mu   sync.Mutex
	busy bool
	msg  string
}

// NewAuth wires the adapter and session together.
func NewAuth(api AuthAPI, sess TokenHolder, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{api: api, sess: sess, log: log}
}

// Snapshot returns the current state; it is safe to call while an action runs.
func (a *Auth) Snapshot() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AuthState{Authenticated: a.sess.Authenticated(), Busy: a.busy, Error: a.msg}
}

func (a *Auth) begin() {
	a.mu.Lock()
	a.busy, a.msg = true, ""
	a.mu.Unlock()
}

func (a *Auth) finish(msg string) {
	a.mu.Lock()
	a.busy, a.msg = false, msg
	a.mu.Unlock()
}

// Login exchanges credentials for a token and stores it in the session.
func (a *Auth) Login(ctx context.Context, creds model.Credentials) error {
	a.begin()
	tok, err := a.api.Login(ctx, creds)
	if err == nil && tok.AccessToken == "" {
		err = errors.Join(errs.ErrAuth, errors.New("empty access token"))
	}
	if err == nil {
		err = a.sess.Login(tok.AccessToken)
	}
	if err != nil {
		a.log.Error("login", zap.String("email", creds.Email), zap.Error(err))
		a.finish(MsgLoginFailed)
		return err
	}
	a.finish("")
	return nil
}

// Register creates an account. It does not log in.
func (a *Auth) Register(ctx context.Context, creds model.Credentials) (model.Account, error) {
	a.begin()
	acc, err := a.api.Register(ctx, creds)
	if err != nil {
		a.log.Error("register", zap.String("email", creds.Email), zap.Error(err))
		a.finish(MsgRegisterFailed)
		return model.Account{}, err
	}
	a.finish("")
	return acc, nil
}

// Logout clears the session token.
func (a *Auth) Logout() error {
	if err := a.sess.Logout(); err != nil {
		a.log.Error("logout", zap.Error(err))
		return err
	}
	a.finish("")
	return nil
}
