package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entities that can sit in the buffer. Both are append-only records, so the
// only replay operation is create.
const (
	EntityActivity     = "activity"
	EntityNotification = "notification"

	OperationCreate = "create"
)

// Item is a write that missed primary storage and waits for replay.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	LastError string          `json:"last_error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Operation == "" {
		i.Operation = OperationCreate
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
