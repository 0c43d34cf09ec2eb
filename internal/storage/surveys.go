package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SurveyRepo provides access to surveys and their votes.
type SurveyRepo struct {
	coll *mongo.Collection
}

// NewSurveyRepo creates a SurveyRepo backed by the surveys collection.
func NewSurveyRepo(db *DB) *SurveyRepo {
	return &SurveyRepo{coll: db.Database.Collection(CollSurveys)}
}

// Create persists a survey before its fan-out starts. Re-sending the
// same survey overwrites the stored definition but keeps existing votes.
func (r *SurveyRepo) Create(ctx context.Context, s *Survey) error {
	update := bson.M{
		"$set": bson.M{
			"question": s.Question,
			"options":  s.Options,
		},
		"$setOnInsert": bson.M{
			"created_at": time.Now(),
		},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"survey_id": s.SurveyID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("create survey: %w", err)
	}
	return nil
}

// Get returns the survey with the given id, or ErrNotFound.
func (r *SurveyRepo) Get(ctx context.Context, surveyID string) (*Survey, error) {
	var s Survey
	err := r.coll.FindOne(ctx, bson.M{"survey_id": surveyID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find survey: %w", err)
	}
	return &s, nil
}

// All returns every survey, oldest first.
func (r *SurveyRepo) All(ctx context.Context) ([]Survey, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("find surveys: %w", err)
	}
	defer cur.Close(ctx)

	var surveys []Survey
	if err := cur.All(ctx, &surveys); err != nil {
		return nil, fmt.Errorf("decode surveys: %w", err)
	}
	return surveys, nil
}

// Vote records one user's choice. A repeat vote from the same user
// overwrites the previous one.
func (r *SurveyRepo) Vote(ctx context.Context, surveyID string, userID int64, optionID string) error {
	key := "votes." + strconv.FormatInt(userID, 10)
	res, err := r.coll.UpdateOne(ctx, bson.M{"survey_id": surveyID}, bson.M{"$set": bson.M{key: optionID}})
	if err != nil {
		return fmt.Errorf("record vote: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
