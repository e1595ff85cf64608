// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidAuthorizationHeader is returned for malformed Authorization headers.
var ErrInvalidAuthorizationHeader = errors.New("invalid authorization header")

// ParseBearerToken extracts the token from a "Bearer <token>" header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrInvalidAuthorizationHeader
	}
	return parts[1], nil
}

// TokenExpiry returns the exp claim of a JWT without verifying its signature.
// The client never holds the signing key; the service verifies the token.
// ok is false when the token carries no exp claim.
func TokenExpiry(tokenString string) (exp time.Time, ok bool, err error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false, err
	}

	claims, valid := token.Claims.(jwt.MapClaims)
	if !valid {
		return time.Time{}, false, errors.New("invalid token claims")
	}

	date, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, err
	}
	if date == nil {
		return time.Time{}, false, nil
	}
	return date.Time, true, nil
}

// TokenExpired reports whether tokenString expires before now+leeway.
// Tokens that cannot be parsed are reported as expired; tokens without an
// exp claim never expire.
func TokenExpired(tokenString string, now time.Time, leeway time.Duration) bool {
	exp, ok, err := TokenExpiry(tokenString)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return !now.Add(leeway).Before(exp)
}

// TokenSubject returns the sub claim of a JWT without verifying its signature.
func TokenSubject(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	return claims.GetSubject()
}
