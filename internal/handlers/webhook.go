package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/services"
)

// WebhookHandler принимает события identity-провайдера и синхронизирует
// локальную таблицу пользователей
type WebhookHandler struct {
	users  *services.UserService
	secret string
	logger *zap.Logger
}

func NewWebhookHandler(users *services.UserService, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{users: users, secret: secret, logger: logger}
}

// HandleIdentityEvent обрабатывает вебхук user.created / user.updated.
// Подпись тела — HMAC-SHA256 в заголовке X-Webhook-Signature (hex).
func (h *WebhookHandler) HandleIdentityEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		h.logger.Warn("identity webhook with invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var payload struct {
		Type string `json:"type"`
		Data struct {
			ID             string `json:"id"`
			FirstName      string `json:"first_name"`
			LastName       string `json:"last_name"`
			ImageURL       string `json:"image_url"`
			EmailAddresses []struct {
				EmailAddress string `json:"email_address"`
			} `json:"email_addresses"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	switch payload.Type {
	case "user.created", "user.updated":
	default:
		// Остальные типы событий подтверждаем, не обрабатывая
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	emails := make([]string, 0, len(payload.Data.EmailAddresses))
	for _, e := range payload.Data.EmailAddresses {
		emails = append(emails, e.EmailAddress)
	}

	user, err := h.users.UpsertFromIdentity(services.IdentityEvent{
		ExternalID: payload.Data.ID,
		Emails:     emails,
		FirstName:  payload.Data.FirstName,
		LastName:   payload.Data.LastName,
		AvatarURL:  payload.Data.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
