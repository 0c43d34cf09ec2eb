package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CastRepo provides access to named archive content references.
type CastRepo struct {
	coll *mongo.Collection
}

// NewCastRepo creates a CastRepo backed by the casts collection.
func NewCastRepo(db *DB) *CastRepo {
	return &CastRepo{coll: db.Database.Collection(CollCasts)}
}

// Upsert stores a cast under its name, replacing any previous reference.
func (r *CastRepo) Upsert(ctx context.Context, name string, ref MessageRef) error {
	update := bson.M{"$set": bson.M{
		"name":       name,
		"ref":        ref,
		"created_at": time.Now(),
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"name": name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert cast: %w", err)
	}
	return nil
}

// Delete removes the cast with the given name. Returns ErrNotFound when
// no cast matched.
func (r *CastRepo) Delete(ctx context.Context, name string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("delete cast: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ByName returns the cast with the given button name, or ErrNotFound.
func (r *CastRepo) ByName(ctx context.Context, name string) (*Cast, error) {
	var c Cast
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cast: %w", err)
	}
	return &c, nil
}

// All returns every cast. The operator menu and the content bot keyboard
// are both regenerated from this query on demand.
func (r *CastRepo) All(ctx context.Context) ([]Cast, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("find casts: %w", err)
	}
	defer cur.Close(ctx)

	var casts []Cast
	if err := cur.All(ctx, &casts); err != nil {
		return nil, fmt.Errorf("decode casts: %w", err)
	}
	return casts, nil
}
