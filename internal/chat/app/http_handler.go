package app

import (
	"strconv"
	"time"

	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/internal/chat/repository"
	errprocess "food_order_chat_service/pkg/err"
	"food_order_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// ChatHTTPHandler REST surface next to the websocket: history pages,
// unread counters, the staff dashboard and conversation lifecycle
type ChatHTTPHandler struct {
	historyUC      *HistoryUseCase
	unreadUC       *UnreadUseCase
	conversationUC *ConversationUseCase
	presence       repository.PresenceRegistry
}

// NewChatHTTPHandler create ChatHTTPHandler
func NewChatHTTPHandler(
	historyUC *HistoryUseCase,
	unreadUC *UnreadUseCase,
	conversationUC *ConversationUseCase,
	presence repository.PresenceRegistry,
) *ChatHTTPHandler {
	return &ChatHTTPHandler{
		historyUC:      historyUC,
		unreadUC:       unreadUC,
		conversationUC: conversationUC,
		presence:       presence,
	}
}

func httpStatus(err error) int {
	switch errprocess.Kind(err) {
	case "validation_error":
		return fiber.StatusBadRequest
	case "auth_error":
		return fiber.StatusUnauthorized
	case "authorization_error":
		return fiber.StatusForbidden
	case "not_found":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(httpStatus(err)).JSON(fiber.Map{
		"success": false,
		"kind":    errprocess.Kind(err),
		"error":   err.Error(),
	})
}

func ok(c *fiber.Ctx, payload fiber.Map) error {
	payload["success"] = true
	return c.JSON(payload)
}

// CustomerHistory GET /api/chat/history?page=1
func (h *ChatHTTPHandler) CustomerHistory(c *fiber.Ctx) error {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)
	page, _ := strconv.Atoi(c.Query("page", "1"))

	views, err := h.historyUC.CustomerHistory(c.Context(), userID, page)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"messages": views})
}

// CustomerUnread GET /api/chat/unread
func (h *ChatHTTPHandler) CustomerUnread(c *fiber.Ctx) error {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)

	messages, err := h.unreadUC.CustomerUnreadMessages(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{
		"unread_count": len(messages),
		"messages":     messages,
	})
}

// StaffInbox GET /api/chat/staff/inbox?page=1
func (h *ChatHTTPHandler) StaffInbox(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))

	views, err := h.historyUC.StaffInbox(c.Context(), page)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"messages": views})
}

// StaffDashboard GET /api/chat/staff/dashboard
func (h *ChatHTTPHandler) StaffDashboard(c *fiber.Ctx) error {
	summary, err := h.unreadUC.StaffDashboard(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{
		"online_customer_count": h.presence.OnlineCustomerCount(),
		"total_unread":          summary.TotalUnread,
		"conversations":         summary.Conversations,
	})
}

// CustomerUnreadStatus GET /api/chat/staff/customers/:customerID/unread
func (h *ChatHTTPHandler) CustomerUnreadStatus(c *fiber.Ctx) error {
	customerID := c.Params("customerID")
	if customerID == "" {
		return fail(c, errprocess.Validation("customerID required"))
	}

	count, err := h.unreadUC.CustomerUnreadForStaff(c.Context(), customerID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{
		"customer_id":  customerID,
		"unread_count": count,
		"has_unread":   count > 0,
	})
}

// ChattedCustomers GET /api/chat/staff/customers
func (h *ChatHTTPHandler) ChattedCustomers(c *fiber.Ctx) error {
	ids, err := h.historyUC.ChattedCustomers(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"customer_ids": ids})
}

// Stats GET /api/chat/staff/stats?from=2026-01-01&to=2026-02-01
func (h *ChatHTTPHandler) Stats(c *fiber.Ctx) error {
	from, err := parseDay(c.Query("from"), time.Now().AddDate(0, 0, -7))
	if err != nil {
		return fail(c, errprocess.Validation("invalid from date"))
	}
	to, err := parseDay(c.Query("to"), time.Now())
	if err != nil {
		return fail(c, errprocess.Validation("invalid to date"))
	}

	stats, err := h.historyUC.Stats(c.Context(), from, to)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"stats": stats})
}

// Deactivate POST /api/chat/staff/conversations/:id/deactivate
func (h *ChatHTTPHandler) Deactivate(c *fiber.Ctx) error {
	return h.setConversationStatus(c, domain.ConversationInactive)
}

// Reactivate POST /api/chat/staff/conversations/:id/reactivate
func (h *ChatHTTPHandler) Reactivate(c *fiber.Ctx) error {
	return h.setConversationStatus(c, domain.ConversationActive)
}

func (h *ChatHTTPHandler) setConversationStatus(c *fiber.Ctx, status domain.ConversationStatus) error {
	id, err := conversationID(c)
	if err != nil {
		return fail(c, err)
	}
	staffID, _ := c.Locals(middlewares.TokenUserID).(string)
	role, _ := c.Locals(middlewares.TokenRole).(string)

	if status == domain.ConversationActive {
		err = h.conversationUC.Reactivate(c.Context(), id, staffID, role)
	} else {
		err = h.conversationUC.Deactivate(c.Context(), id, staffID, role)
	}
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"conversation_id": id, "status": string(status)})
}

// AddNote POST /api/chat/staff/conversations/:id/notes
func (h *ChatHTTPHandler) AddNote(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return fail(c, err)
	}

	var body struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, errprocess.Validation("invalid body"))
	}

	staffID, _ := c.Locals(middlewares.TokenUserID).(string)
	role, _ := c.Locals(middlewares.TokenRole).(string)

	if err := h.conversationUC.AddNote(c.Context(), id, staffID, role, body.Note); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"conversation_id": id})
}

// Notes GET /api/chat/staff/conversations/:id/notes
func (h *ChatHTTPHandler) Notes(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return fail(c, err)
	}
	role, _ := c.Locals(middlewares.TokenRole).(string)

	notes, err := h.conversationUC.Notes(c.Context(), id, role)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"conversation_id": id, "notes": notes})
}

func conversationID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errprocess.Validation("invalid conversation id: " + raw)
	}
	return uint(id), nil
}

func parseDay(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}
