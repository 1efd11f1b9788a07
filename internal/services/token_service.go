package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yoockh/cvstudio/internal/utils"
)

type TokenService interface {
	Issue(userID string) (string, error)
	// Verify returns the user id carried in "sub".
	Verify(raw string) (string, error)
}

type tokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret, issuer string, ttl time.Duration) TokenService {
	return &tokenService{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

func (s *tokenService) Issue(userID string) (string, error) {
	const op = "TokenService.Issue"

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return signed, nil
}

func (s *tokenService) Verify(raw string) (string, error) {
	const op = "TokenService.Verify"

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", utils.E(utils.CodeUnauthorized, op, "Access denied. No token provided.", utils.ErrUnauthenticated)
	}

	claims := &jwt.RegisteredClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", utils.E(utils.CodeUnauthorized, op, "Token expired", utils.ErrTokenExpired)
	case err != nil || tok == nil || !tok.Valid:
		return "", utils.E(utils.CodeUnauthorized, op, "Invalid token", utils.ErrInvalidToken)
	case claims.Subject == "":
		return "", utils.E(utils.CodeUnauthorized, op, "Invalid token", utils.ErrInvalidToken)
	}
	return claims.Subject, nil
}
