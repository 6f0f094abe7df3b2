// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the profile record for a signed-in student.
//
// NOTE:
//   - Records are keyed by ExternalID (the identity provider's user id) and
//     refreshed on every sign-in. They are never hard-deleted.
//   - Requests and messages carry an Identity snapshot copied at write time,
//     so profile edits do not reach back into older documents.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID    string             `bson:"external_id" json:"external_id"`
	Email         string             `bson:"email" json:"email"`
	DisplayName   string             `bson:"display_name" json:"display_name"`
	DisplayNameCI string             `bson:"display_name_ci" json:"-"` // lowercase, diacritics-stripped
	AvatarURL     string             `bson:"avatar_url" json:"avatar_url"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Snapshot returns the identity value object for this user.
func (u User) Snapshot() Identity {
	return Identity{
		ExternalID:  u.ExternalID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}
