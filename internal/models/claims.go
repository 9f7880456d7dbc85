package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a signed bearer token: subject identity and
// role only, no secret material. The live account status is re-checked on
// every request, so the role here is advisory until the gate resolves it.
type SessionClaims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
