package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/thereayou/planora/internal/handlers"
	"github.com/thereayou/planora/internal/middleware"
	"github.com/thereayou/planora/internal/services"
	"github.com/thereayou/planora/pkg/auth"
)

type routerDeps struct {
	events       *handlers.EventHandler
	agenda       *handlers.AgendaHandler
	participants *handlers.ParticipantHandler
	presence     *handlers.PresenceHandler
	chat         *handlers.ChatHandler
	users        *handlers.UserHandler
	webhooks     *handlers.WebhookHandler
	websocket    *handlers.WebSocketHandler
	jwtManager   *auth.JWTManager
	redis        *redis.Client
	userService  *services.UserService
}

func APIEndpoints(r *gin.Engine, d routerDeps) {
	// Вебхуки identity-провайдера: подпись проверяется в хендлере
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/identity", d.webhooks.HandleIdentityEvent)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.jwtManager, d.redis, d.userService))
	{
		api.GET("/me", d.users.GetMe)
		api.GET("/users/lookup", d.users.FindByEmail)

		events := api.Group("/events")
		{
			events.POST("", d.events.CreateEvent)
			events.GET("", d.events.GetEvents)
			events.GET("/:id", d.events.GetEvent)
			events.PATCH("/:id", d.events.UpdateEvent)
			events.DELETE("/:id", d.events.DeleteEvent)

			events.POST("/:id/agenda", d.agenda.CreateAgendaItem)
			events.PUT("/:id/agenda/reorder", d.agenda.ReorderAgendaItems)

			events.GET("/:id/participants", d.participants.GetParticipants)
			events.POST("/:id/participants", d.participants.AddParticipant)
			events.GET("/:id/participants/me", d.participants.GetMyParticipant)
			events.PATCH("/:id/participants/:participantId", d.participants.UpdateParticipantRole)
			events.DELETE("/:id/participants/:participantId", d.participants.RemoveParticipant)

			events.POST("/:id/presence", d.presence.UpdatePresence)
			events.GET("/:id/presence", d.presence.GetActiveParticipants)

			events.POST("/:id/chat", d.chat.SendMessage)
			events.GET("/:id/chat", d.chat.GetMessages)
		}

		agenda := api.Group("/agenda")
		{
			agenda.PATCH("/:id", d.agenda.UpdateAgendaItem)
			agenda.DELETE("/:id", d.agenda.DeleteAgendaItem)
			agenda.POST("/:id/vote", d.agenda.Vote)
		}
	}

	ws := r.Group("/ws")
	ws.Use(middleware.WSAuthMiddleware(d.jwtManager, d.redis, d.userService))
	{
		ws.GET("", d.websocket.HandleWebSocket)
	}
}
