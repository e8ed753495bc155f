package middleware

import (
	"context"
	"errors"

	"github.com/Dosada05/tennis-roundrobin/utils"
)

type contextKey string

const userContextKey contextKey = "user"

func withClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

func GetClaimsFromContext(ctx context.Context) (*utils.Claims, error) {
	claims, ok := ctx.Value(userContextKey).(*utils.Claims)
	if !ok || claims == nil {
		return nil, errors.New("user claims not found in context or invalid type")
	}
	return claims, nil
}

func GetUserRoleFromContext(ctx context.Context) (string, error) {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}
