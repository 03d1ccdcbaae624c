package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/middleware"
)

// MockIssuer is the issuer put on mock claims.
const MockIssuer = "https://box-erp.test.auth0.com/"

// MockValidatedClaims builds the claims EnsureValidToken would store for subject.
func MockValidatedClaims(subject string, scopes ...string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  MockIssuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// MockAuth stands in for the token middleware and authenticates every request as subject.
func MockAuth(subject string, scopes ...string) gin.HandlerFunc {
	claims := MockValidatedClaims(subject, scopes...)
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, subject)
		c.Set(middleware.ClaimsKey, claims)
		c.Next()
	}
}
