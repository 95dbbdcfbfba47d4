package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/config"
	"github.com/marketloop/marketloop-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "marketloop",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()

	payload := AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleSeller,
		Email:  "seller@example.com",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleSeller {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Email != "seller@example.com" {
		t.Fatalf("email mismatch: %s", claims.Email)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer mismatch: %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(now) {
		t.Fatalf("expiry not set in the future")
	}
}

func TestMintAccessTokenValidatesInput(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "marketloop", ExpirationMinutes: 30}
	now := time.Now().UTC()

	cases := []struct {
		name    string
		cfg     config.JWTConfig
		payload AccessTokenPayload
		want    string
	}{
		{
			name:    "missing secret",
			cfg:     config.JWTConfig{Issuer: "marketloop", ExpirationMinutes: 30},
			payload: AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleBuyer},
			want:    "jwt secret is required",
		},
		{
			name:    "missing issuer",
			cfg:     config.JWTConfig{Secret: "secret", ExpirationMinutes: 30},
			payload: AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleBuyer},
			want:    "jwt issuer is required",
		},
		{
			name:    "invalid role",
			cfg:     cfg,
			payload: AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRole("wizard")},
			want:    "invalid user role",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MintAccessToken(tc.cfg, now, tc.payload)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "marketloop", ExpirationMinutes: 30}
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleBuyer,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := config.JWTConfig{Secret: "other", Issuer: "marketloop", ExpirationMinutes: 30}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected signature validation to fail")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "marketloop", ExpirationMinutes: 1}
	token, err := MintAccessToken(cfg, time.Now().UTC().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleBuyer,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}
