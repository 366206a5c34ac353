package chat

import "errors"

// Domain-level errors for chat behaviors. The socket edge maps these to coded
// error frames; they are always surfaced to the caller, never swallowed.
var (
	ErrNotParticipant      = errors.New("chat: sender is not a participant in the conversation")
	ErrNotSender           = errors.New("chat: only the sender may modify a message")
	ErrInvalidMessage      = errors.New("chat: message is missing required fields")
	ErrEmptyMessage        = errors.New("chat: empty message (no content or attachment)")
	ErrInvalidConversation = errors.New("chat: conversation shape is invalid for its kind")
	ErrLastOwner           = errors.New("chat: group owner cannot be removed while other participants remain")
	ErrNotFound            = errors.New("chat: not found")
	ErrExternalService     = errors.New("chat: external responder failed")
)
