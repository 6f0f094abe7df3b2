// internal/domain/models/requestdetails.go
package models

import "time"

// SportsDetails holds the sports-category attributes.
type SportsDetails struct {
	SportName      string    `bson:"sport_name" json:"sport_name"`
	TeamSize       int       `bson:"team_size" json:"team_size"`
	Date           time.Time `bson:"date" json:"date"`
	Time           string    `bson:"time,omitempty" json:"time,omitempty"`
	Venue          string    `bson:"venue" json:"venue"`
	SkillLevel     string    `bson:"skill_level" json:"skill_level"`
	AdditionalInfo string    `bson:"additional_info,omitempty" json:"additional_info,omitempty"`
}

// TeammateDetails holds the teammate-search attributes.
type TeammateDetails struct {
	Requirement       string `bson:"requirement" json:"requirement"`
	TeammateType      string `bson:"teammate_type" json:"teammate_type"`
	TimeCommitment    string `bson:"time_commitment" json:"time_commitment"`
	ProjectDuration   string `bson:"project_duration" json:"project_duration"`
	PreferredTeamSize int    `bson:"preferred_team_size" json:"preferred_team_size"`
	SkillsRequired    string `bson:"skills_required,omitempty" json:"skills_required,omitempty"`
	AdditionalInfo    string `bson:"additional_info,omitempty" json:"additional_info,omitempty"`
}

// TripDetails holds the trip/outing attributes.
type TripDetails struct {
	Destination    string    `bson:"destination" json:"destination"`
	Date           time.Time `bson:"date" json:"date"`
	Participants   int       `bson:"participants" json:"participants"`
	Duration       string    `bson:"duration" json:"duration"`
	Transportation string    `bson:"transportation" json:"transportation"`
	MeetingPoint   string    `bson:"meeting_point" json:"meeting_point"`
	Accommodation  string    `bson:"accommodation,omitempty" json:"accommodation,omitempty"`
	EstimatedCost  string    `bson:"estimated_cost,omitempty" json:"estimated_cost,omitempty"`
	Activities     string    `bson:"activities,omitempty" json:"activities,omitempty"`
	ContactInfo    string    `bson:"contact_info,omitempty" json:"contact_info,omitempty"`
}

// Lost-and-found kinds.
const (
	Lost  = "Lost"
	Found = "Found"
)

// LostFoundDetails holds the lost-and-found attributes.
type LostFoundDetails struct {
	ItemName          string    `bson:"item_name" json:"item_name"`
	ItemDescription   string    `bson:"item_description" json:"item_description"`
	LostOrFound       string    `bson:"lost_or_found" json:"lost_or_found"`
	LocationLostFound string    `bson:"location_lost_found" json:"location_lost_found"`
	DateLostFound     time.Time `bson:"date_lost_found" json:"date_lost_found"`
	ItemCategory      string    `bson:"item_category" json:"item_category"`
	Color             string    `bson:"color,omitempty" json:"color,omitempty"`
	Brand             string    `bson:"brand,omitempty" json:"brand,omitempty"`
	TimeApproximate   string    `bson:"time_approximate,omitempty" json:"time_approximate,omitempty"`
	ContactInfo       string    `bson:"contact_info,omitempty" json:"contact_info,omitempty"`
	RewardOffered     string    `bson:"reward_offered,omitempty" json:"reward_offered,omitempty"`
	AdditionalDetails string    `bson:"additional_details,omitempty" json:"additional_details,omitempty"`
}

// RoommateDetails holds the roommate-search attributes.
type RoommateDetails struct {
	PreferredGender string    `bson:"preferred_gender" json:"preferred_gender"`
	Location        string    `bson:"location" json:"location"`
	MoveInDate      time.Time `bson:"move_in_date" json:"move_in_date"`
	Budget          string    `bson:"budget" json:"budget"`
	RoomType        string    `bson:"room_type" json:"room_type"`
	Preferences     string    `bson:"preferences" json:"preferences"`
	AgeRange        string    `bson:"age_range,omitempty" json:"age_range,omitempty"`
	Occupation      string    `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Lifestyle       string    `bson:"lifestyle,omitempty" json:"lifestyle,omitempty"`
	Amenities       string    `bson:"amenities,omitempty" json:"amenities,omitempty"`
	ContactInfo     string    `bson:"contact_info,omitempty" json:"contact_info,omitempty"`
	AdditionalInfo  string    `bson:"additional_info,omitempty" json:"additional_info,omitempty"`
}
