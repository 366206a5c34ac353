package adapter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	user "go-courier/internal/pkg/user/application/domain"
	repository "go-courier/internal/pkg/user/persistence/repository/port"
)

// MongoUserRepository persists the per-user projection (presence, push token,
// recent conversations) in the users collection.
type MongoUserRepository struct {
	users *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: db.Collection("users")}
}

var _ repository.UserRepository = (*MongoUserRepository)(nil)

func (r *MongoUserRepository) Get(ctx context.Context, userID string) (*user.User, error) {
	var u user.User
	err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: get user: %w", err)
	}
	return &u, nil
}

func (r *MongoUserRepository) GetMany(ctx context.Context, userIDs []string) ([]user.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("mongo: get users: %w", err)
	}
	defer cur.Close(ctx)

	var out []user.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode users: %w", err)
	}
	return out, nil
}

func (r *MongoUserRepository) SetPresence(ctx context.Context, userID string, status user.PresenceStatus, lastSeen time.Time) error {
	_, err := r.users.UpdateByID(ctx, userID,
		bson.M{"$set": bson.M{"presenceStatus": status, "lastSeenAt": lastSeen}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo: set presence: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) SetPushToken(ctx context.Context, userID, token string) error {
	update := bson.M{"$set": bson.M{"pushToken": token}}
	if token == "" {
		update = bson.M{"$unset": bson.M{"pushToken": ""}}
	}
	if _, err := r.users.UpdateByID(ctx, userID, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("mongo: set push token: %w", err)
	}
	return nil
}

// ApplyMessageFanout runs the whole unread fan-out as one unordered BulkWrite.
// A positional update on a participant whose projection lacks the conversation
// entry matches nothing rather than failing, so membership is resolved with a
// single pre-read and the write carries an explicit branch per group.
func (r *MongoUserRepository) ApplyMessageFanout(ctx context.Context, in repository.FanoutInput) error {
	concerned := append(append([]string{}, in.RecipientIDs...), in.SenderID)
	have, err := r.usersHoldingEntry(ctx, concerned, in.ConversationID)
	if err != nil {
		return err
	}

	if _, err := r.users.BulkWrite(ctx, fanoutModels(in, have), options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongo: fanout bulk write: %w", err)
	}
	return nil
}

// fanoutModels builds the BulkWrite branches from prior knowledge of which
// users already carry a projection entry: a positional $inc for recipients
// holding one, an entry upsert per recipient missing it, and the sender's
// reset last.
func fanoutModels(in repository.FanoutInput, have map[string]bool) []mongo.WriteModel {
	var haveRecipients, missingRecipients []string
	for _, id := range in.RecipientIDs {
		if have[id] {
			haveRecipients = append(haveRecipients, id)
		} else {
			missingRecipients = append(missingRecipients, id)
		}
	}

	models := make([]mongo.WriteModel, 0, len(missingRecipients)+2)

	if len(haveRecipients) > 0 {
		models = append(models, mongo.NewUpdateManyModel().
			SetFilter(bson.M{"_id": bson.M{"$in": haveRecipients}}).
			SetUpdate(bson.M{
				"$inc": bson.M{"recentConversations.$[rc].unreadCount": 1},
				"$set": bson.M{"recentConversations.$[rc].lastActivity": in.At},
			}).
			SetArrayFilters(options.ArrayFilters{
				Filters: bson.A{bson.M{"rc.conversationId": in.ConversationID}},
			}))
	}

	for _, id := range missingRecipients {
		entry := user.RecentConversation{
			ConversationID: in.ConversationID,
			UnreadCount:    1,
			LastActivity:   in.At,
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$push": bson.M{"recentConversations": entry}}).
			SetUpsert(true))
	}

	return append(models, resetModel(in.SenderID, in.ConversationID, in.MessageID, in.At, have[in.SenderID]))
}

func (r *MongoUserRepository) ResetUnread(ctx context.Context, userID, conversationID, lastReadMessageID string, at time.Time) error {
	has, err := r.usersHoldingEntry(ctx, []string{userID}, conversationID)
	if err != nil {
		return err
	}
	model := resetModel(userID, conversationID, lastReadMessageID, at, has[userID])
	if _, err := r.users.BulkWrite(ctx, []mongo.WriteModel{model}); err != nil {
		return fmt.Errorf("mongo: reset unread: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) RecentConversations(ctx context.Context, userID string, page, limit int) ([]user.RecentConversation, error) {
	u, err := r.Get(ctx, userID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entries := append([]user.RecentConversation{}, u.RecentConversations...)
	sortRecent(entries)

	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(entries) {
		return nil, nil
	}
	end := start + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], nil
}

func (r *MongoUserRepository) SetPinned(ctx context.Context, userID, conversationID string, pinned bool) error {
	return r.setRecentField(ctx, userID, conversationID, bson.M{
		"recentConversations.$[rc].isPinned": pinned,
	})
}

func (r *MongoUserRepository) SetMuted(ctx context.Context, userID, conversationID string, muted bool, until *time.Time) error {
	fields := bson.M{
		"recentConversations.$[rc].isMuted":    muted,
		"recentConversations.$[rc].mutedUntil": until,
	}
	return r.setRecentField(ctx, userID, conversationID, fields)
}

// setRecentField is the two-branch upsert shared by pin/mute: positional
// update when the entry exists, entry insert when it does not.
func (r *MongoUserRepository) setRecentField(ctx context.Context, userID, conversationID string, fields bson.M) error {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID, "recentConversations.conversationId": conversationID},
		bson.M{"$set": fields},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: bson.A{bson.M{"rc.conversationId": conversationID}},
		}),
	)
	if err != nil {
		return fmt.Errorf("mongo: update recent entry: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	entry := user.RecentConversation{ConversationID: conversationID, LastActivity: time.Now().UTC()}
	for k, v := range fields {
		switch k {
		case "recentConversations.$[rc].isPinned":
			entry.IsPinned = v.(bool)
		case "recentConversations.$[rc].isMuted":
			entry.IsMuted = v.(bool)
		case "recentConversations.$[rc].mutedUntil":
			if t, ok := v.(*time.Time); ok {
				entry.MutedUntil = t
			}
		}
	}
	_, err = r.users.UpdateOne(ctx,
		bson.M{"_id": userID, "recentConversations.conversationId": bson.M{"$ne": conversationID}},
		bson.M{"$push": bson.M{"recentConversations": entry}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo: insert recent entry: %w", err)
	}
	return nil
}

// usersHoldingEntry returns which of the given users already carry a
// recentConversations entry for the conversation.
func (r *MongoUserRepository) usersHoldingEntry(ctx context.Context, userIDs []string, conversationID string) (map[string]bool, error) {
	cur, err := r.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": userIDs}, "recentConversations.conversationId": conversationID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo: resolve projection membership: %w", err)
	}
	defer cur.Close(ctx)

	have := make(map[string]bool, len(userIDs))
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode membership: %w", err)
		}
		have[doc.ID] = true
	}
	return have, cur.Err()
}

// resetModel builds the write that zeroes unread state for one user, picking
// the positional-update or entry-insert branch from prior knowledge.
func resetModel(userID, conversationID, lastReadMessageID string, at time.Time, hasEntry bool) mongo.WriteModel {
	if hasEntry {
		return mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": userID}).
			SetUpdate(bson.M{"$set": bson.M{
				"recentConversations.$[rc].unreadCount":       0,
				"recentConversations.$[rc].lastReadMessageId": lastReadMessageID,
				"recentConversations.$[rc].lastActivity":      at,
			}}).
			SetArrayFilters(options.ArrayFilters{
				Filters: bson.A{bson.M{"rc.conversationId": conversationID}},
			})
	}
	entry := user.RecentConversation{
		ConversationID:    conversationID,
		UnreadCount:       0,
		LastReadMessageID: lastReadMessageID,
		LastActivity:      at,
	}
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": userID}).
		SetUpdate(bson.M{"$push": bson.M{"recentConversations": entry}}).
		SetUpsert(true)
}

// sortRecent orders pinned entries first, then by recent activity.
func sortRecent(entries []user.RecentConversation) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return a.LastActivity.After(b.LastActivity)
	})
}
