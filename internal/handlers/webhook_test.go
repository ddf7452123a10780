package handlers_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/database"
	"github.com/thereayou/planora/internal/handlers"
	"github.com/thereayou/planora/internal/services"
)

const webhookSecret = "whsec-test"

func newWebhookRouter(store *database.MemoryDatabase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	users := services.NewUserService(store, zap.NewNop())
	handler := handlers.NewWebhookHandler(users, webhookSecret, zap.NewNop())

	r := gin.New()
	r.POST("/webhooks/identity", handler.HandleIdentityEvent)
	return r
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestIdentityWebhookCreatesUser(t *testing.T) {
	store := database.NewMemoryDatabase()
	router := newWebhookRouter(store)

	body := []byte(`{
		"type": "user.created",
		"data": {
			"id": "ext-42",
			"first_name": "Ada",
			"last_name": "Lovelace",
			"image_url": "https://img.example.com/ada.png",
			"email_addresses": [{"email_address": "ada@example.com"}]
		}
	}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", sign(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	user, err := store.GetUserByExternalID("ext-42")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Name != "Ada Lovelace" || user.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestIdentityWebhookRejectsBadSignature(t *testing.T) {
	store := database.NewMemoryDatabase()
	router := newWebhookRouter(store)

	body := []byte(`{"type":"user.created","data":{"id":"ext-1","email_addresses":[{"email_address":"a@b.c"}]}}`)

	tests := []struct {
		name      string
		signature string
	}{
		{"missing signature", ""},
		{"wrong signature", "deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body))
			if tt.signature != "" {
				req.Header.Set("X-Webhook-Signature", tt.signature)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}

	if _, err := store.GetUserByExternalID("ext-1"); err == nil {
		t.Fatal("user must not be created on rejected webhook")
	}
}

func TestIdentityWebhookIgnoresOtherEvents(t *testing.T) {
	store := database.NewMemoryDatabase()
	router := newWebhookRouter(store)

	body := []byte(`{"type":"session.created","data":{"id":"ext-9"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", sign(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if _, err := store.GetUserByExternalID("ext-9"); err == nil {
		t.Fatal("ignored event must not create a user")
	}
}
