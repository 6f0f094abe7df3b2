// internal/domain/models/identity.go
package models

// Identity is the denormalized {externalId, email, displayName} triple that
// callers present and that documents embed as creator/sender snapshots.
type Identity struct {
	ExternalID  string `bson:"external_id" json:"external_id"`
	Email       string `bson:"email" json:"email"`
	DisplayName string `bson:"display_name" json:"display_name"`
	AvatarURL   string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
}

// IsZero reports whether the identity carries no external id.
func (i Identity) IsZero() bool { return i.ExternalID == "" }
