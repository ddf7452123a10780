package auth_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thereayou/planora/pkg/auth"
)

func TestGenerateVerify(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate("ext-123")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "ext-123" {
		t.Fatalf("subject = %q, want ext-123", claims.Subject)
	}

	expiry, err := manager.Expiry(token)
	if err != nil {
		t.Fatalf("Expiry failed: %v", err)
	}
	if time.Until(expiry) > time.Hour || time.Until(expiry) < 50*time.Minute {
		t.Fatalf("unexpected expiry: %v", expiry)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewJWTManager("secret-a", time.Hour).Generate("ext-123")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := auth.NewJWTManager("secret-b", time.Hour).Verify(token); err == nil {
		t.Fatal("expected verification to fail with wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", -time.Minute)

	token, err := manager.Generate("ext-123")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := manager.Verify(token); err == nil {
		t.Fatal("expected verification to fail for expired token")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"lowercase scheme", "bearer abc", "abc", false},
		{"missing header", "", "", true},
		{"wrong scheme", "Basic abc", "", true},
		{"no token", "Bearer", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			got, err := auth.ExtractTokenFromHeader(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("token = %q, want %q", got, tt.want)
			}
		})
	}
}
