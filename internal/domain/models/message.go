// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message kinds.
const (
	MessageBroadcast = "broadcast"
	MessageDirect    = "direct"
)

// RedactedText replaces the displayed text of a message the classifier flagged.
const RedactedText = "**** [Message filtered for inappropriate content] ****"

// Message is one append-only chat entry. Broadcast messages have no Recipient.
//
// OriginalText is only populated when IsFiltered is true, and is stripped
// from responses to anyone other than the sender (see Message.ForViewer).
type Message struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind         string             `bson:"kind" json:"kind"`
	Text         string             `bson:"text" json:"text"`
	IsFiltered   bool               `bson:"is_filtered" json:"is_filtered"`
	OriginalText string             `bson:"original_text,omitempty" json:"original_text,omitempty"`
	Sender       Identity           `bson:"sender" json:"sender"`
	Recipient    *Identity          `bson:"recipient,omitempty" json:"recipient,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}

// ForViewer returns the message as it should be shown to viewerID.
func (m Message) ForViewer(viewerID string) Message {
	if m.IsFiltered && m.Sender.ExternalID != viewerID {
		m.OriginalText = ""
	}
	return m
}
