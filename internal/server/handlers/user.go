package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/cryptox"
	"github.com/dmitrijs2005/rfile/internal/server/models"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
)

// Ping is the unauthenticated liveness probe. It echoes the raw request so
// clients can verify framing end to end.
func (h *Handlers) Ping(ctx context.Context, req string) protocol.Return {
	return protocol.OkPayload("pong: " + strings.TrimRight(req, "\r\n"))
}

type registerReq struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// Register creates a user account and returns a fresh session token.
func (h *Handlers) Register(ctx context.Context, req string) protocol.Return {
	_, content, err := protocol.ParseInput[registerReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}
	if content.UserName == "" || content.Password == "" {
		return protocol.Failed("user_name and password are required")
	}

	digest, salt, err := cryptox.HashPassword([]byte(content.Password))
	if err != nil {
		h.logger.Error(ctx, "password hashing failed", "error", err)
		return protocol.Failed(common.ErrorInternal.Error())
	}

	repo := h.repos.Users(h.db)
	user := &models.User{UserName: content.UserName, PasswordDigest: digest, Salt: salt}
	if _, err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorUserAlreadyExists) {
			return protocol.Failed(common.ErrorUserAlreadyExists.Error())
		}
		h.logger.Error(ctx, "user create failed", "error", err)
		return protocol.Failed(err.Error())
	}

	cb, err := protocol.NewControlBlock(content.UserName, h.jwtSecret, h.tokenValidity)
	if err != nil {
		h.logger.Error(ctx, "token issue failed", "error", err)
		return protocol.Failed(common.ErrorInternal.Error())
	}

	h.logger.Info(ctx, "Registered", "user_name", content.UserName)
	return protocol.OkBlock(cb)
}

type loginReq struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a fresh session token. Missing
// users and wrong passwords are indistinguishable to the caller.
func (h *Handlers) Login(ctx context.Context, req string) protocol.Return {
	_, content, err := protocol.ParseInput[loginReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	repo := h.repos.Users(h.db)
	user, err := repo.GetByUserName(ctx, content.UserName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return protocol.Failed(common.ErrorUnauthorized.Error())
		}
		h.logger.Error(ctx, "user lookup failed", "error", err)
		return protocol.Failed(common.ErrorInternal.Error())
	}

	if !cryptox.VerifyPassword(user.PasswordDigest, user.Salt, []byte(content.Password)) {
		return protocol.Failed(common.ErrorUnauthorized.Error())
	}

	cb, err := protocol.NewControlBlock(content.UserName, h.jwtSecret, h.tokenValidity)
	if err != nil {
		h.logger.Error(ctx, "token issue failed", "error", err)
		return protocol.Failed(common.ErrorInternal.Error())
	}

	return protocol.OkBlock(cb)
}

type refreshReq struct{}

// Refresh re-mints the caller's session token with a fresh window. The
// admission gate applies: an expired token cannot be refreshed here.
func (h *Handlers) Refresh(ctx context.Context, req string) protocol.Return {
	cb, _, err := protocol.ParseInput[refreshReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	if ret := h.authorize(&cb); ret != nil {
		return *ret
	}

	if err := cb.Refresh(h.jwtSecret, h.tokenValidity); err != nil {
		return protocol.Failed(fmt.Sprintf("invalid jwt: %v", err))
	}

	return protocol.OkBlock(cb)
}
