package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/cryptox"
)

func TestPing_EchoesRequest(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	ret := h.Ping(context.Background(), "ping . abc\n")
	assert.True(t, ret.Success)
	assert.Equal(t, "pong: ping . abc", ret.Payload)
}

func TestRegister_MintsToken(t *testing.T) {
	h, repos, _ := newTestHandlers(t)

	req := makeReq(t, "register", nil, map[string]string{"user_name": "alice", "password": "pw123"})
	ret := h.Register(context.Background(), req)

	require.True(t, ret.Success, ret.Payload)
	require.NotNil(t, ret.Control)
	assert.NotEmpty(t, ret.Control.Jwt)
	assert.Greater(t, ret.Control.Exp, time.Now().Unix())

	claims, err := ret.Control.Validate([]byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserName)

	u := repos.u.byName["alice"]
	require.NotNil(t, u)
	assert.True(t, cryptox.VerifyPassword(u.PasswordDigest, u.Salt, []byte("pw123")))
}

func TestRegister_DuplicateFails(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	req := makeReq(t, "register", nil, map[string]string{"user_name": "alice", "password": "pw123"})
	require.True(t, h.Register(context.Background(), req).Success)

	ret := h.Register(context.Background(), req)
	assert.False(t, ret.Success)
	assert.Equal(t, common.ErrorUserAlreadyExists.Error(), ret.Payload)
	assert.Nil(t, ret.Control)
}

func TestRegister_EmptyCredentialsFail(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	req := makeReq(t, "register", nil, map[string]string{"user_name": "", "password": "pw123"})
	ret := h.Register(context.Background(), req)
	assert.False(t, ret.Success)
}

func TestLogin_Success(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	reg := makeReq(t, "register", nil, map[string]string{"user_name": "alice", "password": "pw123"})
	require.True(t, h.Register(context.Background(), reg).Success)

	req := makeReq(t, "login", nil, map[string]string{"user_name": "alice", "password": "pw123"})
	ret := h.Login(context.Background(), req)

	require.True(t, ret.Success, ret.Payload)
	require.NotNil(t, ret.Control)

	claims, err := ret.Control.Validate([]byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserName)
}

func TestLogin_WrongPasswordAndMissingUserLookAlike(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	reg := makeReq(t, "register", nil, map[string]string{"user_name": "alice", "password": "pw123"})
	require.True(t, h.Register(context.Background(), reg).Success)

	wrongPw := h.Login(context.Background(),
		makeReq(t, "login", nil, map[string]string{"user_name": "alice", "password": "nope"}))
	missing := h.Login(context.Background(),
		makeReq(t, "login", nil, map[string]string{"user_name": "ghost", "password": "nope"}))

	assert.False(t, wrongPw.Success)
	assert.False(t, missing.Success)
	assert.Equal(t, wrongPw.Payload, missing.Payload)
}

func TestRefresh_ExtendsWindow(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	cb := validCB(t)
	oldExp := cb.Exp

	ret := h.Refresh(context.Background(), makeReq(t, "refresh", cb, struct{}{}))
	require.True(t, ret.Success, ret.Payload)
	require.NotNil(t, ret.Control)
	assert.GreaterOrEqual(t, ret.Control.Exp, oldExp)

	_, err := ret.Control.Validate([]byte(testSecret))
	assert.NoError(t, err)
}

func TestRefresh_ExpiredTokenRejected(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	ret := h.Refresh(context.Background(), makeReq(t, "refresh", expiredCB(t), struct{}{}))
	assert.False(t, ret.Success)
	assert.Equal(t, "jwt expired", ret.Payload)
	assert.Nil(t, ret.Control)
}

func TestRefresh_NoTokenRejected(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	ret := h.Refresh(context.Background(), makeReq(t, "refresh", nil, struct{}{}))
	assert.False(t, ret.Success)
	assert.Contains(t, ret.Payload, "invalid jwt")
}
