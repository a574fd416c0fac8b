package repository

import (
	"context"
	"fmt"
	"time"

	"food_order_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition durable message storage with per-party
// visibility and reply linkage
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	FindByMessageID(ctx context.Context, messageID string) (*domain.Message, error)
	// MarkRead set the read timestamp if unset; calling again is a no-op
	MarkRead(ctx context.Context, messageID string, readAt time.Time) error
	// SetVisibility move the visibility from the observed state to next;
	// reports false when another writer changed it first
	SetVisibility(ctx context.Context, messageID string, from, next domain.Visibility) (bool, error)
	// VisibleHistory page of a conversation as seen by party, newest first,
	// each message enriched with its reply target when present
	VisibleHistory(ctx context.Context, conversationID uint, party domain.Party, page, size int) ([]domain.MessageView, error)
	// FindUnread unread messages directed at party in one conversation
	FindUnread(ctx context.Context, conversationID uint, party domain.Party) ([]domain.Message, error)
	// CustomerMessages staff view of all customer messages, newest first
	CustomerMessages(ctx context.Context, page, size int) ([]domain.MessageView, error)
	CountUnread(ctx context.Context, conversationID uint, party domain.Party) (int64, error)
	// UnreadByConversation staff unread counts grouped by conversation
	UnreadByConversation(ctx context.Context) ([]domain.ConversationUnreadInfo, error)
	MessagesInRange(ctx context.Context, from, to time.Time) (*domain.MessageStats, error)
	// PurgeFullyHidden delete messages hidden by both parties and older
	// than the retention cutoff; returns the number removed
	PurgeFullyHidden(ctx context.Context, olderThan time.Time) (int64, error)
}

type chatMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &chatMessageRepository{
		coll: db.Collection("support_messages"),
	}
}

// EnsureMessageIndexes create the indexes the repository queries rely on
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("support_messages")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "message_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "sent_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "visibility", Value: 1}, {Key: "sent_at", Value: 1}},
		},
	})
	return err
}

// visibleFilter visibility values party still sees
func visibleFilter(party domain.Party) bson.M {
	hidden := domain.HiddenCustomer
	if party == domain.PartyStaff {
		hidden = domain.HiddenStaff
	}
	return bson.M{"$nin": bson.A{hidden, domain.HiddenBoth}}
}

// inboundDirection messages directed at party
func inboundDirection(party domain.Party) domain.Direction {
	if party == domain.PartyCustomer {
		return domain.StaffToCustomer
	}
	return domain.CustomerToStaff
}

func (r *chatMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *chatMessageRepository) FindByMessageID(ctx context.Context, messageID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.coll.FindOne(ctx, bson.M{"message_id": messageID}).Decode(&msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatMessageRepository) MarkRead(ctx context.Context, messageID string, readAt time.Time) error {
	// filter keeps the first read timestamp; a second call matches nothing
	filter := bson.M{"message_id": messageID, "read_at": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"read_at": readAt}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *chatMessageRepository) SetVisibility(ctx context.Context, messageID string, from, next domain.Visibility) (bool, error) {
	// filter on the observed state so two parties flagging the same
	// message concurrently cannot overwrite each other's flag
	filter := bson.M{"message_id": messageID, "visibility": from}
	update := bson.M{"$set": bson.M{"visibility": next}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *chatMessageRepository) VisibleHistory(ctx context.Context, conversationID uint, party domain.Party, page, size int) ([]domain.MessageView, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"visibility":      visibleFilter(party),
	}
	return r.findViews(ctx, filter, page, size)
}

func (r *chatMessageRepository) CustomerMessages(ctx context.Context, page, size int) ([]domain.MessageView, error) {
	filter := bson.M{
		"direction":  domain.CustomerToStaff,
		"visibility": visibleFilter(domain.PartyStaff),
	}
	return r.findViews(ctx, filter, page, size)
}

// findViews run a paginated query and attach reply context to each hit
func (r *chatMessageRepository) findViews(ctx context.Context, filter bson.M, page, size int) ([]domain.MessageView, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}}).
		SetSkip(int64(page-1) * int64(size)).
		SetLimit(int64(size))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}

	// second lookup pulls the reply targets of the page in one query
	replyIDs := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.ReplyTo != "" {
			replyIDs = append(replyIDs, m.ReplyTo)
		}
	}

	replies := map[string]domain.ReplyContext{}
	if len(replyIDs) > 0 {
		cur, err := r.coll.Find(ctx, bson.M{"message_id": bson.M{"$in": replyIDs}})
		if err != nil {
			return nil, err
		}
		var targets []domain.Message
		if err := cur.All(ctx, &targets); err != nil {
			return nil, err
		}
		for _, t := range targets {
			replies[t.MessageID] = domain.ReplyContext{
				MessageID: t.MessageID,
				SenderID:  t.SenderID,
				Content:   t.Content,
			}
		}
	}

	views := make([]domain.MessageView, 0, len(messages))
	for _, m := range messages {
		view := domain.MessageView{Message: m}
		if rc, ok := replies[m.ReplyTo]; ok {
			view.Reply = &rc
		}
		views = append(views, view)
	}
	return views, nil
}

func (r *chatMessageRepository) FindUnread(ctx context.Context, conversationID uint, party domain.Party) ([]domain.Message, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"direction":       inboundDirection(party),
		"read_at":         bson.M{"$exists": false},
		"visibility":      visibleFilter(party),
	}
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatMessageRepository) CountUnread(ctx context.Context, conversationID uint, party domain.Party) (int64, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"direction":       inboundDirection(party),
		"read_at":         bson.M{"$exists": false},
		"visibility":      visibleFilter(party),
	}
	return r.coll.CountDocuments(ctx, filter)
}

func (r *chatMessageRepository) UnreadByConversation(ctx context.Context) ([]domain.ConversationUnreadInfo, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "direction", Value: domain.CustomerToStaff},
			{Key: "read_at", Value: bson.D{{Key: "$exists", Value: false}}},
			{Key: "visibility", Value: bson.D{{Key: "$nin", Value: bson.A{domain.HiddenStaff, domain.HiddenBoth}}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$conversation_id"},
			{Key: "unread_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last_unread_at", Value: bson.D{{Key: "$max", Value: "$sent_at"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "last_unread_at", Value: -1},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate error: %w", err)
	}

	var results []domain.ConversationUnreadInfo
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}

	return results, nil
}

func (r *chatMessageRepository) MessagesInRange(ctx context.Context, from, to time.Time) (*domain.MessageStats, error) {
	rangeFilter := bson.M{"sent_at": bson.M{"$gte": from, "$lt": to}}

	total, err := r.coll.CountDocuments(ctx, rangeFilter)
	if err != nil {
		return nil, err
	}
	fromCustomers, err := r.coll.CountDocuments(ctx, bson.M{
		"sent_at":   bson.M{"$gte": from, "$lt": to},
		"direction": domain.CustomerToStaff,
	})
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "sent_at", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lt", Value: to}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$sent_at"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate error: %w", err)
	}
	var perDay []domain.DailyCount
	if err := cur.All(ctx, &perDay); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}

	return &domain.MessageStats{
		From:          from,
		To:            to,
		Total:         total,
		FromCustomers: fromCustomers,
		FromStaff:     total - fromCustomers,
		PerDay:        perDay,
	}, nil
}

func (r *chatMessageRepository) PurgeFullyHidden(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"visibility": domain.HiddenBoth,
		"sent_at":    bson.M{"$lt": olderThan},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
