package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/mytournaments/services"
	"github.com/golang-jwt/jwt/v4"
)

// Имена claims совпадают с теми, что выдаёт AuthService.
const (
	jwtClaimUserID = services.ClaimUserID
	jwtClaimEmail  = services.ClaimEmail
)

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context or invalid type")
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	switch v := claims[jwtClaimUserID].(type) {
	case float64:
		if v != float64(int(v)) || v <= 0 {
			return 0, fmt.Errorf("invalid user ID value in '%s' claim: %v", jwtClaimUserID, v)
		}
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("invalid user ID value in '%s' claim: %q", jwtClaimUserID, v)
		}
		return id, nil
	case nil:
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: %T", jwtClaimUserID, v)
	}
}

func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", false
	}
	email, ok := claims[jwtClaimEmail].(string)
	return email, ok
}

// IsAuthenticated reports whether a verified token was attached to ctx.
func IsAuthenticated(ctx context.Context) bool {
	_, err := GetUserIDFromContext(ctx)
	return err == nil
}
