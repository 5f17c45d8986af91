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

const collectionAccounts = "accounts"

// AccountRepository implements ports.AccountRepository using MongoDB. The
// unique index on username is the single enforcement point for identity
// uniqueness; concurrent inserts of the same username resolve to exactly one
// success and one duplicate-key error.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

// EnsureIndexes creates the unique username index on the accounts collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Insert atomically creates the account document.
func (r *AccountRepository) Insert(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, storeErr("insert account", err)
	}
	return account, nil
}

// FindByUsername retrieves a full account row, password hash included.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var account domain.Account
	err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("find account", err)
	}
	return &account, nil
}

// TouchLastLogin sets last_login_at for an existing account. "No document
// matched" is the store's not-found signal.
func (r *AccountRepository) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"last_login_at": at.UTC()}},
	)
	if err != nil {
		return storeErr("touch last login", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAll returns every account's public profile, sorted by username so the
// order is stable within a call.
func (r *AccountRepository) ListAll(ctx context.Context) ([]domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "username", Value: 1}}).
			SetProjection(bson.M{"username": 1, "first_name": 1, "last_name": 1, "phone": 1}),
	)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	defer cursor.Close(ctx)

	profiles := []domain.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, storeErr("decode accounts", err)
	}
	return profiles, nil
}
