package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var errEmptyBearer = errors.New("bearer token is empty")

// InspectBearer reads sub and exp from a backend token without verifying its signature;
// the gateway is not the issuer and never trusts these values for authorization.
// Tokens that are not JWTs are accepted and yield a zero BearerInfo.
func InspectBearer(token string) (BearerInfo, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return BearerInfo{}, errEmptyBearer
	}
	if strings.Count(token, ".") != 2 {
		return BearerInfo{}, nil
	}

	claims := &BackendClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return BearerInfo{}, nil
	}

	info := BearerInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// StripBearer removes the "Bearer " prefix from an Authorization header value.
func StripBearer(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("bearer "):])
	return token, token != ""
}
