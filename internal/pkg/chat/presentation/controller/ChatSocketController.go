package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go-courier/internal/infrastructure/auth"
	cport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/infrastructure/realtime"
	chat "go-courier/internal/pkg/chat/application/domain"
	"go-courier/internal/pkg/chat/application/usecase"
	chatrepo "go-courier/internal/pkg/chat/persistence/repository/port"
	chatbot "go-courier/internal/pkg/chatbot/port"
	notification "go-courier/internal/pkg/notification/application/domain"
	notifusecase "go-courier/internal/pkg/notification/application/usecase"
	user "go-courier/internal/pkg/user/application/domain"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	defaultReadTimeout = 60 * time.Second
	presenceTTL        = 60 * time.Second
	botReplyTimeout    = 20 * time.Second
	previewRuneLimit   = 120
)

// ChatSocketController is the session gateway: it authenticates the upgrade,
// owns the session lifecycle in the registry, drives presence transitions,
// and dispatches every realtime event to its use case.
type ChatSocketController struct {
	registry realtime.SessionRegistry
	verifier *auth.Verifier
	cache    cport.Cache
	users    userrepo.UserRepository

	sendMessageUC   *usecase.SendMessageUseCase
	chatbotReplyUC  *usecase.ChatbotReplyUseCase
	editMessageUC   *usecase.EditMessageUseCase
	deleteMessageUC *usecase.DeleteMessageUseCase
	markReadUC      *usecase.MarkMessageReadUseCase
	createConvUC    *usecase.CreateConversationUseCase
	getConvsUC      *usecase.GetConversationsUseCase
	getRecentUC     *usecase.GetRecentConversationsUseCase
	joinRoomsUC     *usecase.JoinUserRoomsUseCase

	scheduler *notifusecase.ScheduleNotificationUseCase

	logger          *slog.Logger
	inflightTimeout time.Duration
}

func NewChatSocketController(
	repo chatrepo.ChatRepository,
	users userrepo.UserRepository,
	responder chatbot.Responder,
	registry realtime.SessionRegistry,
	verifier *auth.Verifier,
	cache cport.Cache,
	scheduler *notifusecase.ScheduleNotificationUseCase,
	logger *slog.Logger,
) *ChatSocketController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatSocketController{
		registry:        registry,
		verifier:        verifier,
		cache:           cache,
		users:           users,
		sendMessageUC:   usecase.NewSendMessageUseCase(repo, users),
		chatbotReplyUC:  usecase.NewChatbotReplyUseCase(repo, users, responder),
		editMessageUC:   usecase.NewEditMessageUseCase(repo),
		deleteMessageUC: usecase.NewDeleteMessageUseCase(repo),
		markReadUC:      usecase.NewMarkMessageReadUseCase(repo, users),
		createConvUC:    usecase.NewCreateConversationUseCase(repo),
		getConvsUC:      usecase.NewGetConversationsUseCase(repo),
		getRecentUC:     usecase.NewGetRecentConversationsUseCase(users),
		joinRoomsUC:     usecase.NewJoinUserRoomsUseCase(repo),
		scheduler:       scheduler,
		logger:          logger,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origin allow-list is a deployment concern, handled at the edge proxy
		return true
	},
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type errorData struct {
	Code    string `json:"code"`
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

type sendMessageData struct {
	ConversationID string          `json:"conversationId"`
	Content        string          `json:"content"`
	Attachments    []attachmentDTO `json:"attachments,omitempty"`
}

type editMessageData struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
	Content        string `json:"content"`
}

type deleteMessageData struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
}

type typingData struct {
	ConversationID string `json:"conversationId"`
}

type markReadData struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
}

type createConversationData struct {
	Kind           string   `json:"kind"`
	Name           string   `json:"name,omitempty"`
	ParticipantIDs []string `json:"participantIds"`
}

type pageData struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Handle upgrades the HTTP request and runs the session until the client
// disconnects. Query parameter "token" (or a bearer header) must carry a
// valid access token; the subject claim becomes the session's user id.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		userID, err := ctl.verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()

		first := ctl.registry.Register(conn)
		defer func() {
			last := ctl.registry.Unregister(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			if last {
				ctl.goOffline(userID)
			}
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			ctl.refreshPresence(userID)
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if first {
			ctl.goOnline(userID)
		}
		ctl.joinRooms(conn)
		ctl.send(conn, realtime.EventConnected, map[string]string{
			"sessionId": conn.SessionID(),
			"userId":    userID,
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "", "invalid_message", "malformed frame")
				continue
			}
			ctl.dispatch(conn, frame)
		}
	}
}

func (ctl *ChatSocketController) dispatch(conn *realtime.Connection, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
	defer cancel()

	switch frame.Event {
	case realtime.EventSendMessage:
		ctl.handleSendMessage(ctx, conn, frame.Data)
	case realtime.EventEditMessage:
		ctl.handleEditMessage(ctx, conn, frame.Data)
	case realtime.EventDeleteMessage:
		ctl.handleDeleteMessage(ctx, conn, frame.Data)
	case realtime.EventTyping:
		ctl.handleTyping(conn, frame.Data, realtime.EventUserTyping)
	case realtime.EventStopTyping:
		ctl.handleTyping(conn, frame.Data, realtime.EventUserStoppedTyping)
	case realtime.EventMarkMessageRead:
		ctl.handleMarkRead(ctx, conn, frame.Data)
	case realtime.EventCreateConversation:
		ctl.handleCreateConversation(ctx, conn, frame.Data)
	case realtime.EventGetConversations:
		ctl.handleGetConversations(ctx, conn, frame.Data)
	case realtime.EventGetRecentConversations:
		ctl.handleGetRecent(ctx, conn, frame.Data)
	default:
		ctl.replyError(conn, frame.Event, "invalid_message", "unknown event")
	}
}

func (ctl *ChatSocketController) handleSendMessage(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) {
	var p sendMessageData
	if err := json.Unmarshal(raw, &p); err != nil {
		ctl.replyError(conn, realtime.EventSendMessage, "invalid_message", "malformed payload")
		return
	}

	attachments := make([]chat.Attachment, 0, len(p.Attachments))
	for _, a := range p.Attachments {
		attachments = append(attachments, chat.Attachment{URL: a.URL, MimeType: a.MimeType, Size: a.Size})
	}

	res, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: p.ConversationID,
		SenderID:       conn.UserID(),
		Content:        p.Content,
		Attachments:    attachments,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, realtime.EventSendMessage, err)
		return
	}

	dto := toMessageDTO(*res.Message)
	ctl.send(conn, realtime.EventMessageSent, dto)
	ctl.broadcast(res.Conversation.ID, realtime.EventNewMessage, dto, conn.SessionID())

	ctl.scheduleMessageNotifications(ctx, res.Conversation, res.Message)

	if res.Conversation.RequiresBotResponse() {
		go ctl.botReply(conn, res.Conversation, res.Message.Content)
	}
}

// botReply runs detached from the triggering frame so a slow responder never
// stalls the session's read loop. The reply lands in the room like any other
// message; the apology path still surfaces an error frame to the asker, after
// the apology is visible.
func (ctl *ChatSocketController) botReply(conn *realtime.Connection, conv *chat.Conversation, question string) {
	ctx, cancel := context.WithTimeout(context.Background(), botReplyTimeout)
	defer cancel()

	msg, err := ctl.chatbotReplyUC.Execute(ctx, conv, question)
	if err != nil && msg == nil {
		ctl.logger.Error("chatbot reply failed", "conversationId", conv.ID, "err", err)
		ctl.replyError(conn, realtime.EventSendMessage, "external_service", "assistant temporarily unavailable")
		return
	}
	ctl.broadcast(conv.ID, realtime.EventNewMessage, toMessageDTO(*msg), "")
	if err != nil {
		ctl.logger.Warn("responder unavailable, apology persisted", "conversationId", conv.ID, "err", err)
		ctl.replyError(conn, realtime.EventSendMessage, "external_service", "assistant temporarily unavailable")
	}
}

func (ctl *ChatSocketController) handleEditMessage(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) {
	var p editMessageData
	if err := json.Unmarshal(raw, &p); err != nil {
		ctl.replyError(conn, realtime.EventEditMessage, "invalid_message", "malformed payload")
		return
	}

	err := ctl.editMessageUC.Execute(ctx, usecase.EditMessageInput{
		MessageID:      p.MessageID,
		ConversationID: p.ConversationID,
		SenderID:       conn.UserID(),
		Content:        p.Content,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, realtime.EventEditMessage, err)
		return
	}

	data := map[string]string{
		"conversationId": p.ConversationID,
		"messageId":      p.MessageID,
		"content":        strings.TrimSpace(p.Content),
		"editedBy":       conn.UserID(),
	}
	ctl.send(conn, realtime.EventMessageEdited, data)
	ctl.broadcast(p.ConversationID, realtime.EventMessageEdited, data, conn.SessionID())
}

func (ctl *ChatSocketController) handleDeleteMessage(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) {
	var p deleteMessageData
	if err := json.Unmarshal(raw, &p); err != nil {
		ctl.replyError(conn, realtime.EventDeleteMessage, "invalid_message", "malformed payload")
		return
	}

	err := ctl.deleteMessageUC.Execute(ctx, usecase.DeleteMessageInput{
		MessageID:      p.MessageID,
		ConversationID: p.ConversationID,
		SenderID:       conn.UserID(),
	})
	if err != nil {
		ctl.replyUseCaseError(conn, realtime.EventDeleteMessage, err)
		return
	}

	data := map[string]string{
		"conversationId": p.ConversationID,
		"messageId":      p.MessageID,
		"deletedBy":      conn.UserID(),
	}
	ctl.send(conn, realtime.EventMessageDeleted, data)
	ctl.broadcast(p.ConversationID, realtime.EventMessageDeleted, data, conn.SessionID())
}

// handleTyping relays ephemeral typing signals. Nothing is persisted and no
// ack is sent; room subscription already proves membership.
func (ctl *ChatSocketController) handleTyping(conn *realtime.Connection, raw json.RawMessage, event string) {
	var p typingData
	if err := json.Unmarshal(raw, &p); err != nil || p.ConversationID == "" {
		return
	}
	payload, err := realtime.Encode(event, map[string]string{
		"conversationId": p.ConversationID,
		"userId":         conn.UserID(),
	})
	if err != nil {
		return
	}
	ctl.registry.BroadcastExceptUser(p.ConversationID, payload, conn.UserID())
}

func (ctl *ChatSocketController) handleMarkRead(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) {
	var p markReadData
	if err := json.Unmarshal(raw, &p); err != nil {
		ctl.replyError(conn, realtime.EventMarkMessageRead, "invalid_message", "malformed payload")
		return
	}

	res, err := ctl.markReadUC.Execute(ctx, usecase.MarkMessageReadInput{
		ConversationID: p.ConversationID,
		UserID:         conn.UserID(),
		MessageID:      p.MessageID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, realtime.EventMarkMessageRead, err)
		return
	}

	ctl.send(conn, realtime.EventMessageMarkedRead, map[string]interface{}{
		"conversationId": p.ConversationID,
		"messageId":      p.MessageID,
		"alreadyRead":    !res.Added,
	})

	if !res.Added {
		return
	}
	payload, err := realtime.Encode(realtime.EventMessageRead, map[string]interface{}{
		"conversationId": p.ConversationID,
		"messageId":      p.MessageID,
		"userId":         conn.UserID(),
		"readAt":         res.LastSeen,
	})
	if err != nil {
		return
	}
	ctl.registry.BroadcastExceptUser(p.ConversationID, payload, conn.UserID())
}

func (ctl *ChatSocketController) handleCreateConversation(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) {
	var p createConversationData
	if err := json.Unmarshal(raw, &p); err != nil {
		ctl.replyError(conn, realtime.EventCreateConversation, "invalid_message", "malformed payload")
		return
	}

	conv, err := ctl.createConvUC.Execute(ctx, usecase.CreateConversationInput{
		CreatorID:      conn.UserID(),
		Kind:           chat.ConversationKind(p.Kind),
		Name:           p.Name,
		ParticipantIDs: p.ParticipantIDs,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, realtime.EventCreateConversation, err)
		return
	}

	dto := toConversationDTO(*conv)
	for _, part := range conv.Participants {
		ctl.registry.SubscribeUser(part.UserID, conv.ID)
	}
	ctl.send(conn, realtime.EventConversationCreated, dto)

	payload, encErr := realtime.Encode(realtime.EventConversationCreated, dto)
	if encErr != nil {
		return
	}
	for _, id := range conv.OtherParticipantIDs(conn.UserID()) {
		if id == chat.BotUserID {
			continue
		}
		ctl.registry.NotifyUser(id, payload)
	}
}

func (ctl *ChatSocketController) handleGetConversations(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) {
	var p pageData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			ctl.replyError(conn, realtime.EventGetConversations, "invalid_message", "malformed payload")
			return
		}
	}
	convs, err := ctl.getConvsUC.Execute(ctx, usecase.GetConversationsInput{
		UserID: conn.UserID(),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, realtime.EventGetConversations, err)
		return
	}
	ctl.send(conn, realtime.EventConversationSnapshot, toConversationDTOs(convs))
}

func (ctl *ChatSocketController) handleGetRecent(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) {
	var p pageData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			ctl.replyError(conn, realtime.EventGetRecentConversations, "invalid_message", "malformed payload")
			return
		}
	}
	entries, err := ctl.getRecentUC.Execute(ctx, usecase.GetRecentConversationsInput{
		UserID: conn.UserID(),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, realtime.EventGetRecentConversations, err)
		return
	}
	ctl.send(conn, realtime.EventRecentSnapshot, toRecentDTOs(entries))
}

// joinRooms subscribes a fresh session to every conversation its user
// belongs to, so room broadcasts reach it without a client-side join step.
func (ctl *ChatSocketController) joinRooms(conn *realtime.Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
	defer cancel()

	ids, err := ctl.joinRoomsUC.Execute(ctx, conn.UserID())
	if err != nil {
		ctl.logger.Error("room catch-up failed", "userId", conn.UserID(), "err", err)
		ctl.replyError(conn, "", "internal_error", "room subscription failed")
		return
	}
	for _, id := range ids {
		ctl.registry.Subscribe(conn, id)
	}
}

// scheduleMessageNotifications enqueues delivery jobs for participants with
// no live session. Online participants already received the room broadcast;
// muted conversations are skipped entirely.
func (ctl *ChatSocketController) scheduleMessageNotifications(ctx context.Context, conv *chat.Conversation, msg *chat.Message) {
	if ctl.scheduler == nil {
		return
	}

	offline := make([]string, 0, len(conv.Participants))
	for _, id := range conv.OtherParticipantIDs(msg.SenderID) {
		if id == chat.BotUserID || ctl.registry.IsOnline(id) {
			continue
		}
		offline = append(offline, id)
	}
	if len(offline) == 0 {
		return
	}

	projections, err := ctl.users.GetMany(ctx, offline)
	if err != nil {
		ctl.logger.Warn("recipient projections unavailable, skipping notifications", "conversationId", conv.ID, "err", err)
		return
	}

	now := time.Now().UTC()
	for i := range projections {
		u := &projections[i]
		if rc, ok := u.Recent(conv.ID); ok && rc.NotificationsMuted(now) {
			continue
		}
		ctl.scheduler.Execute(ctx, notification.Job{
			UserID:  u.ID,
			Type:    "newMessage",
			Content: messagePreview(msg),
			Metadata: map[string]string{
				"conversationId": conv.ID,
				"messageId":      msg.ID,
				"senderId":       msg.SenderID,
			},
		})
	}
}

func (ctl *ChatSocketController) goOnline(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
	defer cancel()

	now := time.Now().UTC()
	if err := ctl.users.SetPresence(ctx, userID, "online", now); err != nil {
		ctl.logger.Warn("presence write failed", "userId", userID, "err", err)
	}
	if err := ctl.cache.Set(ctx, user.PresenceCacheKey(userID), "online", presenceTTL); err != nil {
		ctl.logger.Warn("presence heartbeat write failed", "userId", userID, "err", err)
	}
	ctl.broadcastStatus(userID, "online", now)
}

func (ctl *ChatSocketController) goOffline(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
	defer cancel()

	now := time.Now().UTC()
	if err := ctl.users.SetPresence(ctx, userID, "offline", now); err != nil {
		ctl.logger.Warn("presence write failed", "userId", userID, "err", err)
	}
	if _, err := ctl.cache.Del(ctx, user.PresenceCacheKey(userID)); err != nil {
		ctl.logger.Warn("presence heartbeat delete failed", "userId", userID, "err", err)
	}
	ctl.broadcastStatus(userID, "offline", now)
}

func (ctl *ChatSocketController) refreshPresence(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ctl.cache.Expire(ctx, user.PresenceCacheKey(userID), presenceTTL); err != nil {
		ctl.logger.Debug("presence heartbeat refresh failed", "userId", userID, "err", err)
	}
}

func (ctl *ChatSocketController) broadcastStatus(userID, status string, at time.Time) {
	payload, err := realtime.Encode(realtime.EventUserStatus, map[string]interface{}{
		"userId":     userID,
		"status":     status,
		"lastSeenAt": at,
	})
	if err != nil {
		return
	}
	ctl.registry.BroadcastAll(payload, userID)
}

func (ctl *ChatSocketController) send(conn *realtime.Connection, event string, data interface{}) {
	payload, err := realtime.Encode(event, data)
	if err != nil {
		ctl.logger.Error("frame encode failed", "event", event, "err", err)
		return
	}
	_ = conn.Send(payload)
}

func (ctl *ChatSocketController) broadcast(room, event string, data interface{}, excludeSessionID string) {
	payload, err := realtime.Encode(event, data)
	if err != nil {
		ctl.logger.Error("frame encode failed", "event", event, "err", err)
		return
	}
	ctl.registry.Broadcast(room, payload, excludeSessionID)
}

func (ctl *ChatSocketController) replyUseCaseError(conn *realtime.Connection, event string, err error) {
	switch {
	case errors.Is(err, chat.ErrNotParticipant), errors.Is(err, chat.ErrNotSender):
		ctl.replyError(conn, event, "unauthorized", err.Error())
	case errors.Is(err, chat.ErrNotFound):
		ctl.replyError(conn, event, "not_found", err.Error())
	case errors.Is(err, chat.ErrLastOwner):
		ctl.replyError(conn, event, "conflict", err.Error())
	case errors.Is(err, chat.ErrExternalService):
		ctl.replyError(conn, event, "external_service", "assistant temporarily unavailable")
	case errors.Is(err, usecase.ErrPersistence):
		ctl.logger.Error("persistence failure", "event", event, "err", err)
		ctl.replyError(conn, event, "internal_error", "temporary storage failure")
	default:
		ctl.replyError(conn, event, "invalid_message", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, event, code, message string) {
	payload, err := realtime.Encode(realtime.EventError, errorData{Code: code, Event: event, Message: message})
	if err != nil {
		return
	}
	_ = conn.Send(payload)
}

// messagePreview is the notification body: the content clipped to a readable
// length, or a placeholder for attachment-only messages.
func messagePreview(msg *chat.Message) string {
	if msg.Content == "" {
		return "Sent an attachment"
	}
	if utf8.RuneCountInString(msg.Content) <= previewRuneLimit {
		return msg.Content
	}
	runes := []rune(msg.Content)
	return string(runes[:previewRuneLimit]) + "…"
}
