// internal/domain/models/feedback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is an append-only product feedback submission.
type Feedback struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Author          Identity           `bson:"author" json:"author"`
	IssueText       string             `bson:"issue_text" json:"issue_text"`
	ImprovementText string             `bson:"improvement_text" json:"improvement_text"`
	SubmittedAt     time.Time          `bson:"submitted_at" json:"submitted_at"`
}
