package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// MongoChatRepository persists conversations and messages in two collections.
// Ids are application-minted uuids so domain types stay plain strings.
type MongoChatRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewMongoChatRepository(db *mongo.Database) *MongoChatRepository {
	return &MongoChatRepository{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
}

var _ repository.ChatRepository = (*MongoChatRepository)(nil)

func (r *MongoChatRepository) CreateConversation(ctx context.Context, c chat.Conversation) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := r.conversations.InsertOne(ctx, c); err != nil {
		return "", fmt.Errorf("mongo: insert conversation: %w", err)
	}
	return c.ID, nil
}

func (r *MongoChatRepository) GetConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	var c chat.Conversation
	err := r.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, chat.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: get conversation: %w", err)
	}
	return &c, nil
}

func (r *MongoChatRepository) FindDM(ctx context.Context, userA, userB string) (*chat.Conversation, error) {
	filter := bson.M{
		"kind":                chat.KindDM,
		"archived":            false,
		"participants.userId": bson.M{"$all": bson.A{userA, userB}},
	}
	var c chat.Conversation
	err := r.conversations.FindOne(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find dm: %w", err)
	}
	return &c, nil
}

func (r *MongoChatRepository) ListConversations(ctx context.Context, userID string, page, limit int) ([]chat.Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "metadata.lastActivity", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.conversations.Find(ctx, bson.M{"participants.userId": userID, "archived": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list conversations: %w", err)
	}
	defer cur.Close(ctx)

	var out []chat.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode conversations: %w", err)
	}
	return out, nil
}

func (r *MongoChatRepository) ListConversationIDs(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := r.conversations.Find(ctx, bson.M{"participants.userId": userID, "archived": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list conversation ids: %w", err)
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode conversation id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *MongoChatRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	n, err := r.conversations.CountDocuments(ctx, bson.M{
		"_id":                 conversationID,
		"archived":            false,
		"participants.userId": userID,
	})
	if err != nil {
		return false, fmt.Errorf("mongo: participant check: %w", err)
	}
	return n > 0, nil
}

func (r *MongoChatRepository) AddParticipant(ctx context.Context, conversationID string, p chat.Participant) error {
	// Conditional push: only when the user is not already a member, so a
	// retried job cannot duplicate the entry.
	res, err := r.conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID, "participants.userId": bson.M{"$ne": p.UserID}},
		bson.M{"$push": bson.M{"participants": p}},
	)
	if err != nil {
		return fmt.Errorf("mongo: add participant: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.conversations.CountDocuments(ctx, bson.M{"_id": conversationID})
		if err != nil {
			return fmt.Errorf("mongo: add participant: %w", err)
		}
		if n == 0 {
			return chat.ErrNotFound
		}
		// already a member
	}
	return nil
}

func (r *MongoChatRepository) RemoveParticipant(ctx context.Context, conversationID, userID string) error {
	res, err := r.conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$pull": bson.M{"participants": bson.M{"userId": userID}}},
	)
	if err != nil {
		return fmt.Errorf("mongo: remove participant: %w", err)
	}
	if res.MatchedCount == 0 {
		return chat.ErrNotFound
	}
	return nil
}

func (r *MongoChatRepository) AdvanceParticipantLastSeen(ctx context.Context, conversationID, userID string, at time.Time) error {
	// $max keeps lastSeenAt monotonic under concurrent read receipts.
	_, err := r.conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$max": bson.M{"participants.$[p].lastSeenAt": at}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: bson.A{bson.M{"p.userId": userID}},
		}),
	)
	if err != nil {
		return fmt.Errorf("mongo: advance last seen: %w", err)
	}
	return nil
}

func (r *MongoChatRepository) InsertMessage(ctx context.Context, m chat.Message) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if _, err := r.messages.InsertOne(ctx, m); err != nil {
		return "", fmt.Errorf("mongo: insert message: %w", err)
	}
	return m.ID, nil
}

func (r *MongoChatRepository) GetMessage(ctx context.Context, id string) (*chat.Message, error) {
	var m chat.Message
	err := r.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, chat.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: get message: %w", err)
	}
	return &m, nil
}

func (r *MongoChatRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.messages.Find(ctx, bson.M{"conversationId": conversationID, "deleted": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list messages: %w", err)
	}
	defer cur.Close(ctx)

	var out []chat.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode messages: %w", err)
	}
	return out, nil
}

func (r *MongoChatRepository) BumpActivity(ctx context.Context, conversationID, lastMessageID string, at time.Time) error {
	res, err := r.conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{
			"$set": bson.M{"lastMessageId": lastMessageID, "metadata.lastActivity": at},
			"$inc": bson.M{"metadata.totalMessages": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("mongo: bump activity: %w", err)
	}
	if res.MatchedCount == 0 {
		return chat.ErrNotFound
	}
	return nil
}

func (r *MongoChatRepository) AppendEdit(ctx context.Context, messageID, conversationID, senderID, content string, at time.Time) error {
	res, err := r.messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "conversationId": conversationID, "senderId": senderID, "deleted": false},
		bson.M{
			"$set":  bson.M{"content": content},
			"$push": bson.M{"editHistory": chat.Edit{Content: content, EditedAt: at}},
		},
	)
	if err != nil {
		return fmt.Errorf("mongo: append edit: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.classifyMiss(ctx, messageID, senderID)
	}
	return nil
}

func (r *MongoChatRepository) SoftDeleteMessage(ctx context.Context, messageID, conversationID, senderID string, at time.Time) error {
	res, err := r.messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "conversationId": conversationID, "senderId": senderID, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "deletedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("mongo: soft delete message: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.classifyMiss(ctx, messageID, senderID)
	}
	return nil
}

func (r *MongoChatRepository) AppendReadReceipt(ctx context.Context, messageID, userID string, at time.Time) (bool, error) {
	// Filtered push keeps at most one readBy entry per user even under
	// concurrent duplicate calls.
	res, err := r.messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "readBy.userId": bson.M{"$ne": userID}},
		bson.M{
			"$push": bson.M{"readBy": chat.ReadReceipt{UserID: userID, ReadAt: at}},
			"$set":  bson.M{"status": chat.StatusRead},
		},
	)
	if err != nil {
		return false, fmt.Errorf("mongo: append read receipt: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	n, err := r.messages.CountDocuments(ctx, bson.M{"_id": messageID})
	if err != nil {
		return false, fmt.Errorf("mongo: append read receipt: %w", err)
	}
	if n == 0 {
		return false, chat.ErrNotFound
	}
	return false, nil // already recorded
}

// classifyMiss distinguishes "message vanished" from "caller is not the
// author" after a zero-match author-scoped update.
func (r *MongoChatRepository) classifyMiss(ctx context.Context, messageID, senderID string) error {
	var m chat.Message
	err := r.messages.FindOne(ctx, bson.M{"_id": messageID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return chat.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mongo: classify miss: %w", err)
	}
	if m.SenderID != senderID {
		return chat.ErrNotSender
	}
	return chat.ErrNotFound
}
