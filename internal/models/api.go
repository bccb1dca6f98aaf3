package models

import "github.com/golang-jwt/jwt/v5"

// Pagination carries the standard paging metadata of list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// AuthClaims are the JWT claims this API expects on bearer tokens. Tokens are
// issued by the external account service; this API only validates them.
type AuthClaims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
