package authgate

import (
	"context"
	"errors"
	"testing"

	"github.com/AtRiskMedia/storefront-go/internal/sync/notify"
	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authClient implements only the auth half of remote.Client; the
// embedded nil interface panics on anything else.
type authClient struct {
	remote.Client

	session   *remote.Session
	signInErr error
	signUpErr error
	listener  func(remote.AuthEvent)
	unsubbed  bool
}

func (c *authClient) Session(context.Context) (*remote.Session, error) { return c.session, nil }

func (c *authClient) SignIn(_ context.Context, email, _ string) (*remote.Session, error) {
	if c.signInErr != nil {
		return nil, c.signInErr
	}
	c.session = &remote.Session{UserID: "u1", Email: email, Token: "t"}
	c.listener(remote.AuthEvent{Kind: remote.SignedIn, Session: c.session})
	return c.session, nil
}

func (c *authClient) SignUp(context.Context, string, string) error { return c.signUpErr }

func (c *authClient) SignOut(context.Context) error {
	c.session = nil
	c.listener(remote.AuthEvent{Kind: remote.SignedOut})
	return nil
}

func (c *authClient) OnAuthChange(fn func(remote.AuthEvent)) func() {
	c.listener = fn
	return func() { c.unsubbed = true }
}

func TestGateInitFromExistingSession(t *testing.T) {
	client := &authClient{session: &remote.Session{UserID: "u1", Email: "a@b.vn"}}
	g := New(client)
	assert.False(t, g.IsAuthenticated())

	g.Init(context.Background())
	assert.True(t, g.IsAuthenticated())
	assert.Equal(t, "a@b.vn", g.Email())
}

func TestGateSignInAndOut(t *testing.T) {
	client := &authClient{}
	rec := &notify.Recorder{}
	g := New(client, WithNotifier(rec))
	g.Init(context.Background())

	var transitions []bool
	g.OnChange(func(authed bool) { transitions = append(transitions, authed) })

	require.True(t, g.SignIn(context.Background(), "a@b.vn", "secret1"))
	assert.True(t, g.IsAuthenticated())
	assert.Equal(t, notify.Success(notify.MsgSignedIn), rec.Last())

	require.NoError(t, g.SignOut(context.Background()))
	assert.False(t, g.IsAuthenticated())
	assert.Equal(t, notify.Success(notify.MsgSignedOut), rec.Last())

	assert.Equal(t, []bool{true, false}, transitions)

	g.Close()
	assert.True(t, client.unsubbed)
}

func TestGateSignInMapsErrors(t *testing.T) {
	client := &authClient{signInErr: remote.ErrInvalidCredentials}
	rec := &notify.Recorder{}
	g := New(client, WithNotifier(rec))

	assert.False(t, g.SignIn(context.Background(), "a@b.vn", "bad"))
	assert.Equal(t, notify.Failure(notify.TitleLoginError, notify.MsgInvalidCredentials), rec.Last())
	assert.False(t, g.IsAuthenticated())

	client.signInErr = errors.New("connection refused")
	assert.False(t, g.SignIn(context.Background(), "a@b.vn", "bad"))
	assert.Equal(t, notify.MsgSignInFailed, rec.Last().Message)
}

func TestGateSignUp(t *testing.T) {
	client := &authClient{}
	rec := &notify.Recorder{}
	g := New(client, WithNotifier(rec))

	assert.True(t, g.SignUp(context.Background(), "new@b.vn", "secret1"))
	assert.Equal(t, notify.Success(notify.MsgSignedUp), rec.Last())
	assert.False(t, g.IsAuthenticated())

	client.signUpErr = errors.New("user exists")
	assert.False(t, g.SignUp(context.Background(), "new@b.vn", "secret1"))
	assert.Equal(t, notify.Failure(notify.TitleSignUpError, notify.MsgSignUpFailed), rec.Last())
}
