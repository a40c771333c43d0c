package outboundq

import (
	"time"

	"github.com/google/uuid"
)

// Item is one agent reply waiting for gateway delivery. Replies are
// queued only when the gateway is unreachable at send time.
type Item struct {
	ID         string    `json:"id"`
	SessionKey string    `json:"session_key"`
	Body       string    `json:"body"`
	Retries    int       `json:"retries"`
	Timestamp  time.Time `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
