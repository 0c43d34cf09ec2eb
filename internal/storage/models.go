package storage

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	CollUsers   = "users"
	CollCasts   = "casts"
	CollSurveys = "surveys"
	CollBatches = "broadcast_batches"
	CollLogs    = "broadcast_logs"
)

// BatchStatus represents the processing state of a broadcast batch.
type BatchStatus string

const (
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	// BatchStatusIncomplete marks a batch that was still processing past
	// the staleness threshold, i.e. interrupted by a crash or outage.
	BatchStatusIncomplete BatchStatus = "incomplete"
)

// User is a registered bot user, the recipient registry entry.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           int64              `bson:"user_id"`
	FirstName        string             `bson:"first_name,omitempty"`
	LastName         string             `bson:"last_name,omitempty"`
	Username         string             `bson:"username,omitempty"`
	Phone            string             `bson:"phone,omitempty"`
	CreatedAt        int64              `bson:"created_at"` // Unix seconds
	ProfileCompleted bool               `bson:"profile_completed"`
	TestUser         bool               `bson:"test_user,omitempty"`
	History          []HistoryEntry     `bson:"history,omitempty"`
}

// HistoryEntry records one interaction step (a cast view, a wizard step).
type HistoryEntry struct {
	Value string `bson:"value"`
	At    int64  `bson:"at,omitempty"`
}

// Cast is a named piece of content stored in the archive channel and
// replayed to users by reference.
type Cast struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Ref       MessageRef         `bson:"ref"`
	CreatedAt time.Time          `bson:"created_at"`
}

// MessageRef is an opaque locator the messaging gateway can replay:
// a chat plus a message id within it. Raw payload bytes are never stored.
type MessageRef struct {
	ChatID    int64 `bson:"chat_id"`
	MessageID int   `bson:"message_id"`
}

// Survey is a question with inline options; votes map user id to option id.
type Survey struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SurveyID  string             `bson:"survey_id"`
	Question  string             `bson:"question"`
	Options   []SurveyOption     `bson:"options"`
	Votes     map[string]string  `bson:"votes,omitempty"` // user id (decimal string) -> option id
	CreatedAt time.Time          `bson:"created_at"`
}

// SurveyOption is one inline button with the reply shown after a vote.
type SurveyOption struct {
	OptionID string `bson:"id"`
	Text     string `bson:"text"`
	Reply    string `bson:"reply"`
}

// Window is an inclusive registration-time range in Unix seconds.
type Window struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

// Batch is one fan-out operation instance. Created with status processing
// and zero counters, mutated exactly once at completion, never again.
type Batch struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	BatchID     string             `bson:"batch_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	Window      *Window            `bson:"window,omitempty"`
	TargetCount int                `bson:"target_count"`
	Bundle      []MessageRef       `bson:"bundle"`
	Status      BatchStatus        `bson:"status"`
	SentCount   int                `bson:"sent_count"`
	FailedCount int                `bson:"failed_count"`
	FinishedAt  *time.Time         `bson:"finished_at,omitempty"`
}

// DeliveryLog records one successfully delivered message. Rows are kept
// as an audit trail; undo deletes the delivered message at the gateway,
// never the row.
type DeliveryLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	BatchID     string             `bson:"batch_id"`
	RecipientID int64              `bson:"recipient_id"`
	MessageID   int                `bson:"message_id"`
	SentAt      time.Time          `bson:"sent_at"`
}
