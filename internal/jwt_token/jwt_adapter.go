package jwttoken

import (
	"lifeline/internal/platform/middleware"
)

// JWTServiceAdapter bridges the JWT service to the middleware.TokenValidator
// interface so the middleware package stays free of jwt imports.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID:  claims.UserID,
		IsAdmin: claims.IsAdmin,
	}, nil
}
