package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/messagely/messaging-api/internal/core/domain"
)

const (
	collectionMessages = "messages"
	collectionCounters = "counters"
)

// MessageRepository implements ports.MessageRepository using MongoDB.
// Message ids are monotonic int64 values allocated from the counters
// collection; counterpart profiles are joined with $lookup at query time so
// listings reflect current account data.
type MessageRepository struct {
	db *mongo.Database
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{db: db}
}

// EnsureIndexes creates the sender/recipient indexes used by the directory
// queries.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.db.Collection(collectionMessages).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "from_username", Value: 1}}},
		{Keys: bson.D{{Key: "to_username", Value: 1}}},
	})
	return err
}

// nextID atomically allocates the next message id.
func (r *MessageRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.db.Collection(collectionCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": collectionMessages},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, storeErr("allocate message id", err)
	}
	return counter.Seq, nil
}

// Insert persists a new message document with a freshly allocated id.
func (r *MessageRepository) Insert(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	message.ID = id

	if _, err := r.db.Collection(collectionMessages).InsertOne(ctx, message); err != nil {
		return nil, storeErr("insert message", err)
	}
	return message, nil
}

// FindByID retrieves a single message by id.
func (r *MessageRepository) FindByID(ctx context.Context, id int64) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var message domain.Message
	err := r.db.Collection(collectionMessages).FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, storeErr("find message", err)
	}
	return &message, nil
}

// enrichedMessage is the shape produced by the $lookup pipelines below. The
// counterpart account document decodes straight into a Profile; its extra
// fields (password_hash included) are dropped by the projection.
type enrichedMessage struct {
	ID          int64          `bson:"_id"`
	Counterpart domain.Profile `bson:"counterpart"`
	Body        string         `bson:"body"`
	SentAt      time.Time      `bson:"sent_at"`
	ReadAt      *time.Time     `bson:"read_at"`
}

// lookupPipeline matches messages on matchField = username and joins the
// account referenced by joinField as "counterpart".
func lookupPipeline(matchField, joinField, username string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{matchField: username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionAccounts,
			"localField":   joinField,
			"foreignField": "username",
			"as":           "counterpart",
		}}},
		{{Key: "$unwind", Value: "$counterpart"}},
		{{Key: "$project", Value: bson.M{
			"_id":                    1,
			"body":                   1,
			"sent_at":                1,
			"read_at":                1,
			"counterpart.username":   1,
			"counterpart.first_name": 1,
			"counterpart.last_name":  1,
			"counterpart.phone":      1,
		}}},
	}
}

func (r *MessageRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]enrichedMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.db.Collection(collectionMessages).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr("query messages", err)
	}
	defer cursor.Close(ctx)

	rows := []enrichedMessage{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr("decode messages", err)
	}
	return rows, nil
}

// SentBy returns every message sent by username, each carrying the
// recipient's current profile. A username with no messages yields an empty
// slice.
func (r *MessageRepository) SentBy(ctx context.Context, username string) ([]domain.OutgoingMessage, error) {
	rows, err := r.aggregate(ctx, lookupPipeline("from_username", "to_username", username))
	if err != nil {
		return nil, err
	}

	out := make([]domain.OutgoingMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.OutgoingMessage{
			ID:     row.ID,
			ToUser: row.Counterpart,
			Body:   row.Body,
			SentAt: row.SentAt,
			ReadAt: row.ReadAt,
		})
	}
	return out, nil
}

// ReceivedBy returns every message received by username, each carrying the
// sender's current profile.
func (r *MessageRepository) ReceivedBy(ctx context.Context, username string) ([]domain.IncomingMessage, error) {
	rows, err := r.aggregate(ctx, lookupPipeline("to_username", "from_username", username))
	if err != nil {
		return nil, err
	}

	out := make([]domain.IncomingMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.IncomingMessage{
			ID:       row.ID,
			FromUser: row.Counterpart,
			Body:     row.Body,
			SentAt:   row.SentAt,
			ReadAt:   row.ReadAt,
		})
	}
	return out, nil
}

// MarkRead sets read_at on an unread message. The filter only matches while
// read_at is unset, so a replayed mark never moves the timestamp.
func (r *MessageRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.Collection(collectionMessages).UpdateOne(ctx,
		bson.M{"_id": id, "read_at": nil},
		bson.M{"$set": bson.M{"read_at": at.UTC()}},
	)
	if err != nil {
		return storeErr("mark read", err)
	}
	if res.MatchedCount == 0 {
		// Either the message does not exist or it is already read.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
