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

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("storage: not found")

// UserRepo provides access to the recipient registry.
type UserRepo struct {
	coll *mongo.Collection
}

// NewUserRepo creates a UserRepo backed by the users collection.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{coll: db.Database.Collection(CollUsers)}
}

// Get returns the user with the given Telegram id, or ErrNotFound.
func (r *UserRepo) Get(ctx context.Context, userID int64) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// Register upserts a user document, setting created_at only on first insert.
func (r *UserRepo) Register(ctx context.Context, u *User) error {
	update := bson.M{
		"$set": bson.M{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"username":   u.Username,
		},
		"$setOnInsert": bson.M{
			"created_at":        time.Now().Unix(),
			"profile_completed": false,
		},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"user_id": u.UserID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

// SetPhone stores the user's phone and marks the profile completed.
func (r *UserRepo) SetPhone(ctx context.Context, userID int64, phone string) error {
	update := bson.M{"$set": bson.M{"phone": phone, "profile_completed": true}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"user_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set phone: %w", err)
	}
	return nil
}

// AppendHistory appends one interaction entry to the user's history array.
func (r *UserRepo) AppendHistory(ctx context.Context, userID int64, entry HistoryEntry) error {
	update := bson.M{"$push": bson.M{"history": entry}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// SetHistory replaces the user's history array wholesale.
func (r *UserRepo) SetHistory(ctx context.Context, userID int64, entries []HistoryEntry) error {
	update := bson.M{"$set": bson.M{"history": entries}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("set history: %w", err)
	}
	return nil
}

// Delete removes the user document entirely. Returns ErrNotFound when
// no document matched.
func (r *UserRepo) Delete(ctx context.Context, userID int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IDsInRange returns ids of users whose registration timestamp lies in
// [start, end], both bounds inclusive, in Unix seconds.
func (r *UserRepo) IDsInRange(ctx context.Context, start, end int64) ([]int64, error) {
	filter := bson.M{"created_at": bson.M{"$gte": start, "$lte": end}}
	return r.ids(ctx, filter)
}

// TestIDs returns ids of users flagged with the given boolean attribute.
func (r *UserRepo) TestIDs(ctx context.Context, flag string) ([]int64, error) {
	return r.ids(ctx, bson.M{flag: true})
}

func (r *UserRepo) ids(ctx context.Context, filter bson.M) ([]int64, error) {
	proj := options.Find().SetProjection(bson.M{"user_id": 1})
	cur, err := r.coll.Find(ctx, filter, proj)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var out []int64
	for cur.Next(ctx) {
		var u User
		if err := cur.Decode(&u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		out = append(out, u.UserID)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// All returns every user document. Used by the backup exporter.
func (r *UserRepo) All(ctx context.Context) ([]User, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// ByIDs returns full user documents for the given id list via a single
// unordered bulk read.
func (r *UserRepo) ByIDs(ctx context.Context, ids []int64) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"user_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	defer cur.Close(ctx)

	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// Count returns the total number of registered users.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// HistoryBreakdown counts users per history step value, most frequent
// first, via an unwind/group aggregation.
func (r *UserRepo) HistoryBreakdown(ctx context.Context) ([]HistoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$history"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$history.value",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate history: %w", err)
	}
	defer cur.Close(ctx)

	var rows []HistoryCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode history counts: %w", err)
	}
	return rows, nil
}

// HistoryCount is one row of the history breakdown aggregation.
type HistoryCount struct {
	Value string `bson:"_id"`
	Count int    `bson:"count"`
}
