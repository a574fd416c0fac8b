package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/internal/chat/repository"
	errprocess "food_order_chat_service/pkg/err"
	"food_order_chat_service/pkg/logger"
	"food_order_chat_service/pkg/middlewares"
	"food_order_chat_service/pkg/token"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatWebsocketHandler entry point of every live chat connection. One
// logical task per connection: it registers presence, subscribes the
// outbound channels, dispatches the canonical envelope and converts every
// rejection into a structured error event. No error closes the connection.
type ChatWebsocketHandler struct {
	router       *MessageRouter
	visibilityUC *VisibilityUseCase
	unreadUC     *UnreadUseCase
	historyUC    *HistoryUseCase
	presence     repository.PresenceRegistry
	pubSub       repository.PubSub
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	router *MessageRouter,
	visibilityUC *VisibilityUseCase,
	unreadUC *UnreadUseCase,
	historyUC *HistoryUseCase,
	presence repository.PresenceRegistry,
	pubSub repository.PubSub,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		router:       router,
		visibilityUC: visibilityUC,
		unreadUC:     unreadUC,
		historyUC:    historyUC,
		presence:     presence,
		pubSub:       pubSub,
	}
}

// wsSession serialize writes; the read loop and the subscription
// goroutines both push frames onto the same connection
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) send(resp domain.WSResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Errorf("marshal response error:", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

// HandleCustomer websocket entry for customers
func (h *ChatWebsocketHandler) HandleCustomer(ctx context.Context, conn *websocket.Conn) {
	h.handleConnection(ctx, conn, domain.PartyCustomer)
}

// HandleStaff websocket entry for support staff
func (h *ChatWebsocketHandler) HandleStaff(ctx context.Context, conn *websocket.Conn) {
	h.handleConnection(ctx, conn, domain.PartyStaff)
}

func (h *ChatWebsocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn, party domain.Party) {
	userID, _ := conn.Locals(middlewares.TokenUserID).(string)
	role, _ := conn.Locals(middlewares.TokenRole).(string)
	session := &wsSession{conn: conn}

	if party == domain.PartyStaff && !token.IsStaff(role) {
		session.send(domain.WSResponse{
			Action: string(domain.ChatError),
			Error:  "staff role required",
			Payload: map[string]interface{}{
				"kind": errprocess.Kind(errprocess.ErrAuth),
			},
		})
		conn.Close()
		return
	}

	logger.Log.Info("websocket connected",
		zap.String("userID", userID),
		zap.String("party", string(party)),
	)

	sessionID := uuid.New().String()
	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		// unregister is idempotent; a duplicate disconnect is a no-op
		h.presence.Unregister(sessionID)
		logger.Log.Info("websocket closed", zap.String("userID", userID))
		conn.Close()
		cancel()
	}()

	h.presence.Register(userID, party, sessionID)

	// fiber handles close/ping/pong internally, hook them out for logging
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("received pong", zap.String("userID", userID))
		return nil
	})
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	h.subscribeChannels(ctxClose, session, userID, party)
	h.sendWelcome(ctx, session, userID, party)

	// keepalive ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
					logger.Log.Errorf("ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			session.send(errorResponse("", errprocess.Validation("unsupported message type")))
			continue
		}
		h.dispatch(ctx, session, userID, role, party, message)
	}
}

// subscribeChannels wire the outbound push channels of this identity: the
// private channel, the shared staff broadcast for staff, and the shared
// role error channel filtered down to this identity
func (h *ChatWebsocketHandler) subscribeChannels(ctx context.Context, session *wsSession, userID string, party domain.Party) {
	deliver := func(resp domain.WSResponse) {
		session.send(resp)
	}

	if party == domain.PartyStaff {
		h.pubSub.Subscribe(ctx, repository.StaffChannel(userID), deliver)
		h.pubSub.Subscribe(ctx, repository.StaffBroadcastChannel, deliver)
		h.pubSub.Subscribe(ctx, repository.StaffErrorChannel, h.filteredDeliver(userID, deliver))
		return
	}
	h.pubSub.Subscribe(ctx, repository.CustomerChannel(userID), deliver)
	h.pubSub.Subscribe(ctx, repository.CustomerErrorChannel, h.filteredDeliver(userID, deliver))
}

// filteredDeliver the error channels are shared; only forward events
// addressed to this identity
func (h *ChatWebsocketHandler) filteredDeliver(userID string, deliver func(domain.WSResponse)) func(domain.WSResponse) {
	return func(resp domain.WSResponse) {
		if resp.Payload == nil {
			return
		}
		if target, _ := resp.Payload["target_id"].(string); target == userID {
			deliver(resp)
		}
	}
}

// sendWelcome presence-welcome payload: staff get the pool dashboard,
// customers their own unread count
func (h *ChatWebsocketHandler) sendWelcome(ctx context.Context, session *wsSession, userID string, party domain.Party) {
	session.send(h.welcomeEvent(ctx, userID, party))
}

// welcomeEvent build the welcome payload; a failed unread lookup leaves
// the count out instead of blocking the welcome
func (h *ChatWebsocketHandler) welcomeEvent(ctx context.Context, userID string, party domain.Party) domain.WSResponse {
	resp := domain.WSResponse{
		Action:  string(domain.Welcome),
		Success: true,
		Payload: map[string]interface{}{},
	}

	if party == domain.PartyStaff {
		resp.Payload["online_customer_count"] = h.presence.OnlineCustomerCount()
		summary, err := h.unreadUC.StaffDashboard(ctx)
		if err != nil {
			logger.Log.Errorf("staff welcome unread lookup failed:", err)
		} else {
			resp.Payload["unread_count"] = summary.TotalUnread
			resp.Payload["conversations"] = summary.Conversations
		}
	} else {
		count, err := h.unreadUC.CustomerUnread(ctx, userID)
		if err != nil {
			logger.Log.Errorf("customer welcome unread lookup failed:", err)
		} else {
			resp.Payload["unread_count"] = count
		}
	}

	return resp
}

func (h *ChatWebsocketHandler) dispatch(ctx context.Context, session *wsSession, userID, role string, party domain.Party, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		session.send(errorResponse("", errprocess.Validation("malformed envelope")))
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	var err error

	switch req.Action {
	case string(domain.SendMessage):
		if party == domain.PartyCustomer {
			var sent *domain.Message
			sent, err = h.router.SendCustomerMessage(ctx, userID, req.Content, req.ReplyTo)
			if err == nil {
				resp.Success = true
				resp.Payload["message_id"] = sent.MessageID
			}
		} else {
			var sent []domain.Message
			sent, err = h.router.SendStaffMessage(ctx, userID, req.Content, req.ReplyTo, req.RecipientID)
			if err == nil {
				resp.Success = true
				ids := make([]string, 0, len(sent))
				for _, m := range sent {
					ids = append(ids, m.MessageID)
				}
				resp.Payload["message_ids"] = ids
			}
		}

	case string(domain.MarkRead):
		err = h.visibilityUC.MarkRead(ctx, req.MessageID, userID, role)
		resp.Success = err == nil

	case string(domain.DeleteMessage):
		err = h.visibilityUC.SoftDelete(ctx, req.MessageID, party, userID, role)
		resp.Success = err == nil

	case string(domain.RestoreMessage):
		err = h.visibilityUC.Restore(ctx, req.MessageID, party, userID, role)
		resp.Success = err == nil

	case string(domain.GetHistory):
		var views []domain.MessageView
		if party == domain.PartyCustomer {
			views, err = h.historyUC.CustomerHistory(ctx, userID, req.Page)
		} else {
			views, err = h.historyUC.StaffInbox(ctx, req.Page)
		}
		if err == nil {
			resp.Success = true
			resp.Payload["messages"] = views
		}

	case string(domain.GetUnread):
		if party == domain.PartyCustomer {
			var count int64
			count, err = h.unreadUC.CustomerUnread(ctx, userID)
			if err == nil {
				resp.Success = true
				resp.Payload["unread_count"] = count
			}
		} else {
			var summary *domain.UnreadSummary
			summary, err = h.unreadUC.StaffDashboard(ctx)
			if err == nil {
				resp.Success = true
				resp.Payload["unread_count"] = summary.TotalUnread
				resp.Payload["conversations"] = summary.Conversations
			}
		}

	default:
		err = errprocess.Validation("unknown action: " + req.Action)
	}

	if err != nil {
		resp = errorResponse(req.Action, err)
		logger.Log.Error("websocket err",
			zap.String("userID", userID),
			zap.String("action", req.Action),
			zap.String("err", resp.Error),
		)
		h.publishError(userID, party, resp)
	}
	session.send(resp)
}

// publishError mirror the error event on the role's shared error channel
func (h *ChatWebsocketHandler) publishError(userID string, party domain.Party, resp domain.WSResponse) {
	channel := repository.CustomerErrorChannel
	if party == domain.PartyStaff {
		channel = repository.StaffErrorChannel
	}
	event := domain.WSResponse{
		Action:  string(domain.ChatError),
		Payload: map[string]interface{}{},
		Error:   resp.Error,
	}
	for k, v := range resp.Payload {
		event.Payload[k] = v
	}
	event.Payload["target_id"] = userID
	if err := h.pubSub.Publish(channel, event); err != nil {
		logger.Log.Errorf("error event publish failed:", err)
	}
}

func errorResponse(action string, err error) domain.WSResponse {
	return domain.WSResponse{
		Action:  action,
		Success: false,
		Payload: map[string]interface{}{
			"kind": errprocess.Kind(err),
		},
		Error: err.Error(),
	}
}
