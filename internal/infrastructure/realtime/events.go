package realtime

import "encoding/json"

// Wire event names. Request events arrive from clients; each is answered with
// its response event, and side effects reach other sessions as broadcasts.
const (
	// client -> server
	EventSendMessage            = "sendMessage"
	EventEditMessage            = "editMessage"
	EventDeleteMessage          = "deleteMessage"
	EventTyping                 = "typing"
	EventStopTyping             = "stopTyping"
	EventMarkMessageRead        = "markMessageRead"
	EventCreateConversation     = "createConversation"
	EventGetConversations       = "getConversations"
	EventGetRecentConversations = "getRecentConversations"

	// server -> sender (responses)
	EventConnected            = "connected"
	EventMessageSent          = "messageSent"
	EventMessageEdited        = "messageEdited"
	EventMessageDeleted       = "messageDeleted"
	EventMessageMarkedRead    = "messageMarkedRead"
	EventConversationCreated  = "conversationCreated"
	EventConversationSnapshot = "conversations"
	EventRecentSnapshot       = "recentConversations"

	// server -> room / global (broadcasts)
	EventNewMessage         = "newMessage"
	EventParticipantAdded   = "participantAdded"
	EventParticipantRemoved = "participantRemoved"
	EventUserTyping         = "userTyping"
	EventUserStoppedTyping  = "userStoppedTyping"
	EventMessageRead        = "messageRead"
	EventUserStatus         = "userStatus"
	EventNewNotification    = "newNotification"
	EventNotificationCount  = "notificationCount"
	EventError              = "error"
)

// Frame is the envelope every socket payload travels in.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Encode marshals an event frame. Marshal failures are programming errors
// (all payloads are plain structs), so the error is surfaced for logging and
// the caller skips the emit.
func Encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Frame{Event: event, Data: data})
}
