// Package protocol implements the wire format of the transfer protocol:
// single-line requests and responses of the form
//
//	<method> <control_block|.> <base64 payload>
//	<true|false> <control_block|.> <base64 payload|empty>
//
// plus the control block (session credential) carried in the middle field.
package protocol

import (
	"time"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/server/auth"
)

// ControlBlock is the session credential attached to authenticated requests.
// On the wire it is base64 of this struct's JSON form; the literal "." means
// no control block was supplied.
type ControlBlock struct {
	Jwt string `json:"jwt"`
	Exp int64  `json:"exp"`
}

// NewControlBlock mints a control block for userName.
func NewControlBlock(userName string, secretKey []byte, validity time.Duration) (ControlBlock, error) {
	token, exp, err := auth.IssueToken(userName, secretKey, validity)
	if err != nil {
		return ControlBlock{}, err
	}
	return ControlBlock{Jwt: token, Exp: exp}, nil
}

// Validate checks the embedded token. It returns the claims when the token
// is valid and unexpired, common.ErrTokenExpired when it is genuine but
// stale, and the underlying parse error when it is malformed or forged.
// An empty control block classifies as malformed.
func (cb *ControlBlock) Validate(secretKey []byte) (*auth.Claims, error) {
	if cb.Jwt == "" {
		return nil, common.ErrInvalidToken
	}
	return auth.ValidateToken(cb.Jwt, secretKey)
}

// Refresh replaces the embedded token with a freshly minted one for the same
// user name. The old token's signature must verify; its expiry is ignored.
func (cb *ControlBlock) Refresh(secretKey []byte, validity time.Duration) error {
	token, exp, err := auth.RefreshToken(cb.Jwt, secretKey, validity)
	if err != nil {
		return err
	}
	cb.Jwt = token
	cb.Exp = exp
	return nil
}
