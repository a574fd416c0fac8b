package router

import (
	"context"

	"food_order_chat_service/internal/chat/app"
	"food_order_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes mounts the chat websocket entries and the REST surface.
// Everything goes through the JWT middleware; the staff routes add a role
// check on top.
func RegisterRoutes(r *fiber.App, ctx context.Context, wsHandler *app.ChatWebsocketHandler, httpHandler *app.ChatHTTPHandler) {
	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws/customer", websocket.New(func(c *websocket.Conn) {
		wsHandler.HandleCustomer(ctx, c)
	}))
	r.Get("/ws/staff", websocket.New(func(c *websocket.Conn) {
		wsHandler.HandleStaff(ctx, c)
	}))

	chat := r.Group("/api/chat")
	chat.Get("/history", httpHandler.CustomerHistory)
	chat.Get("/unread", httpHandler.CustomerUnread)

	staff := chat.Group("/staff", middlewares.StaffOnly())
	staff.Get("/inbox", httpHandler.StaffInbox)
	staff.Get("/dashboard", httpHandler.StaffDashboard)
	staff.Get("/customers", httpHandler.ChattedCustomers)
	staff.Get("/customers/:customerID/unread", httpHandler.CustomerUnreadStatus)
	staff.Get("/stats", httpHandler.Stats)
	staff.Post("/conversations/:id/deactivate", httpHandler.Deactivate)
	staff.Post("/conversations/:id/reactivate", httpHandler.Reactivate)
	staff.Post("/conversations/:id/notes", httpHandler.AddNote)
	staff.Get("/conversations/:id/notes", httpHandler.Notes)
}
