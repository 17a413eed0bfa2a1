// Package mongo keeps pending verifications in a MongoDB collection with a
// TTL index on the expiry timestamp.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/artem13815/colorfit/pkg/auth"
)

// DefaultCollectionName is the collection used when none is given.
const DefaultCollectionName = "pending_verifications"

type pendingDoc struct {
	Email     string    `bson:"email"`
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

// PendingRepository implements auth.PendingRepository.
type PendingRepository struct {
	coll *mongo.Collection
}

// NewPendingRepository ensures the unique email index and a TTL index that
// lets the server drop documents retention after expiresAt.
func NewPendingRepository(ctx context.Context, db *mongo.Database, collection string, retention time.Duration) (*PendingRepository, error) {
	if collection == "" {
		collection = DefaultCollectionName
	}
	coll := db.Collection(collection)
	if _, err := coll.Indexes().CreateMany(ctx, pendingIndexes(retention)); err != nil {
		return nil, fmt.Errorf("create pending indexes: %w", err)
	}
	return &PendingRepository{coll: coll}, nil
}

func pendingIndexes(retention time.Duration) []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention / time.Second)),
		},
	}
}

func emailFilter(email string) bson.M { return bson.M{"email": email} }

// consumeFilter matches the record only while it still carries code.
func consumeFilter(email, code string) bson.M { return bson.M{"email": email, "code": code} }

func toDoc(p auth.PendingVerification) pendingDoc {
	return pendingDoc{Email: p.Email, Code: p.Code, ExpiresAt: p.ExpiresAt, CreatedAt: p.CreatedAt}
}

func (d pendingDoc) pending() auth.PendingVerification {
	return auth.PendingVerification{
		Email:     d.Email,
		Code:      d.Code,
		ExpiresAt: d.ExpiresAt.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func (r *PendingRepository) Upsert(ctx context.Context, p auth.PendingVerification) error {
	_, err := r.coll.ReplaceOne(ctx, emailFilter(p.Email), toDoc(p), options.Replace().SetUpsert(true))
	return err
}

func (r *PendingRepository) Get(ctx context.Context, email string) (auth.PendingVerification, error) {
	var doc pendingDoc
	if err := r.coll.FindOne(ctx, emailFilter(email)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.PendingVerification{}, auth.ErrNotFound
		}
		return auth.PendingVerification{}, err
	}
	return doc.pending(), nil
}

func (r *PendingRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, consumeFilter(email, code))
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}
