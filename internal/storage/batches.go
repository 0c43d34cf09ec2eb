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

// BatchRepo persists Batch records and per-recipient delivery logs.
// Concurrent fan-outs use distinct batch ids and never contend on the
// same Batch document, so no batch-level locking is needed.
type BatchRepo struct {
	batches *mongo.Collection
	logs    *mongo.Collection
}

// NewBatchRepo creates a BatchRepo backed by the broadcast collections.
func NewBatchRepo(db *DB) *BatchRepo {
	return &BatchRepo{
		batches: db.Database.Collection(CollBatches),
		logs:    db.Database.Collection(CollLogs),
	}
}

// CreateBatch inserts a new Batch record. The record must carry status
// processing and zero counters; it is written before any delivery log.
func (r *BatchRepo) CreateBatch(ctx context.Context, b *Batch) error {
	_, err := r.batches.InsertOne(ctx, b)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// CompleteBatch finalizes a batch with its tallies. Calling it twice
// overwrites the counters; the engine calls it at most once.
func (r *BatchRepo) CompleteBatch(ctx context.Context, batchID string, sent, failed int) error {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":       BatchStatusCompleted,
		"sent_count":   sent,
		"failed_count": failed,
		"finished_at":  now,
	}}
	res, err := r.batches.UpdateOne(ctx, bson.M{"batch_id": batchID}, update)
	if err != nil {
		return fmt.Errorf("complete batch: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBatch returns the batch with the given id, or ErrNotFound.
func (r *BatchRepo) GetBatch(ctx context.Context, batchID string) (*Batch, error) {
	var b Batch
	err := r.batches.FindOne(ctx, bson.M{"batch_id": batchID}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find batch: %w", err)
	}
	return &b, nil
}

// RecentBatches returns the most recently created batches, newest first.
func (r *BatchRepo) RecentBatches(ctx context.Context, limit int64) ([]Batch, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cur, err := r.batches.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find batches: %w", err)
	}
	defer cur.Close(ctx)

	var batches []Batch
	if err := cur.All(ctx, &batches); err != nil {
		return nil, fmt.Errorf("decode batches: %w", err)
	}
	return batches, nil
}

// MarkStaleBatches flips batches still in processing older than the given
// age to incomplete. Returns the number of batches swept. A batch can sit
// in processing forever after a crash mid fan-out; the sweep makes that
// state visible instead of silent.
func (r *BatchRepo) MarkStaleBatches(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	filter := bson.M{
		"status":     BatchStatusProcessing,
		"created_at": bson.M{"$lt": cutoff},
	}
	res, err := r.batches.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": BatchStatusIncomplete}})
	if err != nil {
		return 0, fmt.Errorf("mark stale batches: %w", err)
	}
	return res.ModifiedCount, nil
}

// AppendDeliveryLog records one successful delivery for the batch.
func (r *BatchRepo) AppendDeliveryLog(ctx context.Context, batchID string, recipientID int64, messageID int) error {
	entry := DeliveryLog{
		BatchID:     batchID,
		RecipientID: recipientID,
		MessageID:   messageID,
		SentAt:      time.Now(),
	}
	_, err := r.logs.InsertOne(ctx, &entry)
	if err != nil {
		return fmt.Errorf("insert delivery log: %w", err)
	}
	return nil
}

// DeliveryLogs returns all delivery logs for a batch in insertion order.
// An empty result is a valid terminal state, not an error.
func (r *BatchRepo) DeliveryLogs(ctx context.Context, batchID string) ([]DeliveryLog, error) {
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cur, err := r.logs.Find(ctx, bson.M{"batch_id": batchID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find delivery logs: %w", err)
	}
	defer cur.Close(ctx)

	var logs []DeliveryLog
	if err := cur.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("decode delivery logs: %w", err)
	}
	return logs, nil
}
