// internal/domain/models/request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request categories.
const (
	CategorySports    = "sports"
	CategoryTeammate  = "teammate"
	CategoryTrip      = "trip"
	CategoryLostFound = "lost-found"
	CategoryRoommate  = "roommate"
)

// Categories lists every accepted category in display order.
var Categories = []string{CategorySports, CategoryTeammate, CategoryTrip, CategoryLostFound, CategoryRoommate}

// Request statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusPaused     = "paused"
)

// Statuses lists every recognized request status.
var Statuses = []string{StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled, StatusPaused}

// IsValidStatus reports whether s is a recognized request status.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsClosedStatus reports whether a request in status s no longer accepts joins.
func IsClosedStatus(s string) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Request is a user-created post seeking collaborators in one category.
//
// Exactly one of the detail pointers is set, matching Category. Creator is a
// snapshot taken at creation time and is never rewritten. InterestedUsers is
// embedded so a single read returns the whole roster with the request.
type Request struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`

	Sports    *SportsDetails    `bson:"sports,omitempty" json:"sports,omitempty"`
	Teammate  *TeammateDetails  `bson:"teammate,omitempty" json:"teammate,omitempty"`
	Trip      *TripDetails      `bson:"trip,omitempty" json:"trip,omitempty"`
	LostFound *LostFoundDetails `bson:"lost_found,omitempty" json:"lost_found,omitempty"`
	Roommate  *RoommateDetails  `bson:"roommate,omitempty" json:"roommate,omitempty"`

	Creator Identity `bson:"creator" json:"creator"`

	Status          string     `bson:"status" json:"status"`
	StatusReason    string     `bson:"status_reason,omitempty" json:"status_reason,omitempty"`
	StatusUpdatedAt *time.Time `bson:"status_updated_at,omitempty" json:"status_updated_at,omitempty"`
	StatusUpdatedBy string     `bson:"status_updated_by,omitempty" json:"status_updated_by,omitempty"`

	InterestedUsers []InterestEntry `bson:"interested_users" json:"interested_users"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Interest returns the entry for externalID and whether one exists.
func (r Request) Interest(externalID string) (InterestEntry, bool) {
	for _, e := range r.InterestedUsers {
		if e.ExternalID == externalID {
			return e, true
		}
	}
	return InterestEntry{}, false
}

// Interest entry statuses.
const (
	InterestPending  = "pending"
	InterestAccepted = "accepted"
	InterestRejected = "rejected"
)

// InterestEntry records one user's interest in a request. Entries are never
// removed; a rejected entry stays in the roster as history.
type InterestEntry struct {
	ExternalID  string    `bson:"external_id" json:"external_id"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	Status      string    `bson:"status" json:"status"`
	JoinedAt    time.Time `bson:"joined_at" json:"joined_at"`
}
