// Package categories parses and validates the category-specific attribute
// bag of a request. Each category has its own input shape and required-field
// set; the validated input is converted into the matching domain details.
package categories

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/textsanitize"
	"github.com/dalemusser/campusconnect/internal/app/system/validate"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// dateLayout is the calendar-date form the client submits (YYYY-MM-DD).
const dateLayout = "2006-01-02"

// Details is the converted, validated attribute bag. Exactly one field is set.
type Details struct {
	Sports    *models.SportsDetails
	Teammate  *models.TeammateDetails
	Trip      *models.TripDetails
	LostFound *models.LostFoundDetails
	Roommate  *models.RoommateDetails
}

// Apply copies the details onto r.
func (d Details) Apply(r *models.Request) {
	r.Sports = d.Sports
	r.Teammate = d.Teammate
	r.Trip = d.Trip
	r.LostFound = d.LostFound
	r.Roommate = d.Roommate
}

// Common holds the free-text fields every category shares.
type Common struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

type sportsInput struct {
	SportName      string `json:"sport_name" validate:"required,max=100"`
	TeamSize       int    `json:"team_size" validate:"min=1,max=1000"`
	Date           string `json:"date" validate:"required,upcoming"`
	Time           string `json:"time" validate:"max=50"`
	Venue          string `json:"venue" validate:"required,max=200"`
	SkillLevel     string `json:"skill_level" validate:"required,max=50"`
	AdditionalInfo string `json:"additional_info" validate:"max=2000"`
}

type teammateInput struct {
	Requirement       string `json:"requirement" validate:"required,max=500"`
	TeammateType      string `json:"teammate_type" validate:"required,max=100"`
	TimeCommitment    string `json:"time_commitment" validate:"required,max=100"`
	ProjectDuration   string `json:"project_duration" validate:"required,max=100"`
	PreferredTeamSize int    `json:"preferred_team_size" validate:"min=1,max=1000"`
	SkillsRequired    string `json:"skills_required" validate:"max=500"`
	AdditionalInfo    string `json:"additional_info" validate:"max=2000"`
}

type tripInput struct {
	Destination    string `json:"destination" validate:"required,max=200"`
	Date           string `json:"date" validate:"required,upcoming"`
	Participants   int    `json:"participants" validate:"min=1,max=1000"`
	Duration       string `json:"duration" validate:"required,max=100"`
	Transportation string `json:"transportation" validate:"required,max=100"`
	MeetingPoint   string `json:"meeting_point" validate:"required,max=200"`
	Accommodation  string `json:"accommodation" validate:"max=200"`
	EstimatedCost  string `json:"estimated_cost" validate:"max=100"`
	Activities     string `json:"activities" validate:"max=2000"`
	ContactInfo    string `json:"contact_info" validate:"max=200"`
}

type lostFoundInput struct {
	ItemName          string `json:"item_name" validate:"required,max=200"`
	ItemDescription   string `json:"item_description" validate:"required,max=2000"`
	LostOrFound       string `json:"lost_or_found" validate:"required,oneof=Lost Found"`
	LocationLostFound string `json:"location_lost_found" validate:"required,max=200"`
	DateLostFound     string `json:"date_lost_found" validate:"required,notfuture"`
	Category          string `json:"category" validate:"required,max=100"`
	Color             string `json:"color" validate:"max=50"`
	Brand             string `json:"brand" validate:"max=100"`
	TimeApproximate   string `json:"time_approximate" validate:"max=50"`
	ContactInfo       string `json:"contact_info" validate:"max=200"`
	RewardOffered     string `json:"reward_offered" validate:"max=100"`
	AdditionalDetails string `json:"additional_details" validate:"max=2000"`
}

type roommateInput struct {
	PreferredGender string `json:"preferred_gender" validate:"required,max=50"`
	Location        string `json:"location" validate:"required,max=200"`
	MoveInDate      string `json:"move_in_date" validate:"required,upcoming"`
	Budget          string `json:"budget" validate:"required,max=100"`
	RoomType        string `json:"room_type" validate:"required,max=100"`
	Preferences     string `json:"preferences" validate:"required,max=2000"`
	AgeRange        string `json:"age_range" validate:"max=50"`
	Occupation      string `json:"occupation" validate:"max=100"`
	Lifestyle       string `json:"lifestyle" validate:"max=200"`
	Amenities       string `json:"amenities" validate:"max=500"`
	ContactInfo     string `json:"contact_info" validate:"max=200"`
	AdditionalInfo  string `json:"additional_info" validate:"max=2000"`
}

// cleaner is implemented by every input shape. Cleaning runs before
// validation so the required rules see the stored values.
type cleaner interface {
	clean()
}

func (in *sportsInput) clean() {
	in.SportName = textsanitize.Line(in.SportName)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = textsanitize.Line(in.Time)
	in.Venue = textsanitize.Line(in.Venue)
	in.SkillLevel = textsanitize.Line(in.SkillLevel)
	in.AdditionalInfo = textsanitize.Text(in.AdditionalInfo)
}

func (in *teammateInput) clean() {
	in.Requirement = textsanitize.Text(in.Requirement)
	in.TeammateType = textsanitize.Line(in.TeammateType)
	in.TimeCommitment = textsanitize.Line(in.TimeCommitment)
	in.ProjectDuration = textsanitize.Line(in.ProjectDuration)
	in.SkillsRequired = textsanitize.Text(in.SkillsRequired)
	in.AdditionalInfo = textsanitize.Text(in.AdditionalInfo)
}

func (in *tripInput) clean() {
	in.Destination = textsanitize.Line(in.Destination)
	in.Date = strings.TrimSpace(in.Date)
	in.Duration = textsanitize.Line(in.Duration)
	in.Transportation = textsanitize.Line(in.Transportation)
	in.MeetingPoint = textsanitize.Line(in.MeetingPoint)
	in.Accommodation = textsanitize.Line(in.Accommodation)
	in.EstimatedCost = textsanitize.Line(in.EstimatedCost)
	in.Activities = textsanitize.Text(in.Activities)
	in.ContactInfo = textsanitize.Line(in.ContactInfo)
}

func (in *lostFoundInput) clean() {
	in.ItemName = textsanitize.Line(in.ItemName)
	in.ItemDescription = textsanitize.Text(in.ItemDescription)
	in.LostOrFound = strings.TrimSpace(in.LostOrFound)
	in.LocationLostFound = textsanitize.Line(in.LocationLostFound)
	in.DateLostFound = strings.TrimSpace(in.DateLostFound)
	in.Category = textsanitize.Line(in.Category)
	in.Color = textsanitize.Line(in.Color)
	in.Brand = textsanitize.Line(in.Brand)
	in.TimeApproximate = textsanitize.Line(in.TimeApproximate)
	in.ContactInfo = textsanitize.Line(in.ContactInfo)
	in.RewardOffered = textsanitize.Line(in.RewardOffered)
	in.AdditionalDetails = textsanitize.Text(in.AdditionalDetails)
}

func (in *roommateInput) clean() {
	in.PreferredGender = textsanitize.Line(in.PreferredGender)
	in.Location = textsanitize.Line(in.Location)
	in.MoveInDate = strings.TrimSpace(in.MoveInDate)
	in.Budget = textsanitize.Line(in.Budget)
	in.RoomType = textsanitize.Line(in.RoomType)
	in.Preferences = textsanitize.Text(in.Preferences)
	in.AgeRange = textsanitize.Line(in.AgeRange)
	in.Occupation = textsanitize.Line(in.Occupation)
	in.Lifestyle = textsanitize.Line(in.Lifestyle)
	in.Amenities = textsanitize.Text(in.Amenities)
	in.ContactInfo = textsanitize.Line(in.ContactInfo)
	in.AdditionalInfo = textsanitize.Text(in.AdditionalInfo)
}

// Validator validates category payloads. The zero value is not usable; call New.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// Default returns a process-wide Validator using the wall clock.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultV = New(time.Now)
	})
	return defaultV
}

// New builds a Validator whose date rules are evaluated against now().
func New(now func() time.Time) *Validator {
	val := &Validator{v: validate.New(), now: now}
	_ = val.v.RegisterValidation("upcoming", val.validateUpcoming)
	_ = val.v.RegisterValidation("notfuture", val.validateNotFuture)
	return val
}

// Normalize maps a submitted category name to its canonical form and reports
// whether it is known. "trips" is accepted as an alias of "trip".
func Normalize(category string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "trips" || c == "outing" {
		c = models.CategoryTrip
	}
	for _, known := range models.Categories {
		if c == known {
			return c, true
		}
	}
	return c, false
}

// ValidateCommon cleans title and description, then validates the cleaned
// values, so whitespace-only text fails the required rule.
func (val *Validator) ValidateCommon(c Common) (Common, error) {
	c.Title = strings.Join(strings.Fields(textsanitize.Text(c.Title)), " ")
	c.Description = textsanitize.Text(c.Description)
	if err := val.v.Struct(c); err != nil {
		return Common{}, fieldErrors(err)
	}
	return c, nil
}

// Parse decodes raw into the category's input shape, validates it and
// returns the converted details. Unknown categories fail with InvalidCategory;
// malformed or missing fields fail with ValidationFailed.
func (val *Validator) Parse(category string, raw json.RawMessage) (string, Details, error) {
	cat, ok := Normalize(category)
	if !ok {
		return "", Details{}, apperr.Newf(apperr.InvalidCategory, "unknown category %q", category)
	}
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	switch cat {
	case models.CategorySports:
		var in sportsInput
		if err := val.decodeAndValidate(raw, &in); err != nil {
			return "", Details{}, err
		}
		return cat, Details{Sports: &models.SportsDetails{
			SportName:      in.SportName,
			TeamSize:       in.TeamSize,
			Date:           mustDate(in.Date),
			Time:           in.Time,
			Venue:          in.Venue,
			SkillLevel:     in.SkillLevel,
			AdditionalInfo: in.AdditionalInfo,
		}}, nil

	case models.CategoryTeammate:
		var in teammateInput
		if err := val.decodeAndValidate(raw, &in); err != nil {
			return "", Details{}, err
		}
		return cat, Details{Teammate: &models.TeammateDetails{
			Requirement:       in.Requirement,
			TeammateType:      in.TeammateType,
			TimeCommitment:    in.TimeCommitment,
			ProjectDuration:   in.ProjectDuration,
			PreferredTeamSize: in.PreferredTeamSize,
			SkillsRequired:    in.SkillsRequired,
			AdditionalInfo:    in.AdditionalInfo,
		}}, nil

	case models.CategoryTrip:
		var in tripInput
		if err := val.decodeAndValidate(raw, &in); err != nil {
			return "", Details{}, err
		}
		return cat, Details{Trip: &models.TripDetails{
			Destination:    in.Destination,
			Date:           mustDate(in.Date),
			Participants:   in.Participants,
			Duration:       in.Duration,
			Transportation: in.Transportation,
			MeetingPoint:   in.MeetingPoint,
			Accommodation:  in.Accommodation,
			EstimatedCost:  in.EstimatedCost,
			Activities:     in.Activities,
			ContactInfo:    in.ContactInfo,
		}}, nil

	case models.CategoryLostFound:
		var in lostFoundInput
		if err := val.decodeAndValidate(raw, &in); err != nil {
			return "", Details{}, err
		}
		return cat, Details{LostFound: &models.LostFoundDetails{
			ItemName:          in.ItemName,
			ItemDescription:   in.ItemDescription,
			LostOrFound:       in.LostOrFound,
			LocationLostFound: in.LocationLostFound,
			DateLostFound:     mustDate(in.DateLostFound),
			ItemCategory:      in.Category,
			Color:             in.Color,
			Brand:             in.Brand,
			TimeApproximate:   in.TimeApproximate,
			ContactInfo:       in.ContactInfo,
			RewardOffered:     in.RewardOffered,
			AdditionalDetails: in.AdditionalDetails,
		}}, nil

	default: // models.CategoryRoommate
		var in roommateInput
		if err := val.decodeAndValidate(raw, &in); err != nil {
			return "", Details{}, err
		}
		return cat, Details{Roommate: &models.RoommateDetails{
			PreferredGender: in.PreferredGender,
			Location:        in.Location,
			MoveInDate:      mustDate(in.MoveInDate),
			Budget:          in.Budget,
			RoomType:        in.RoomType,
			Preferences:     in.Preferences,
			AgeRange:        in.AgeRange,
			Occupation:      in.Occupation,
			Lifestyle:       in.Lifestyle,
			Amenities:       in.Amenities,
			ContactInfo:     in.ContactInfo,
			AdditionalInfo:  in.AdditionalInfo,
		}}, nil
	}
}

func (val *Validator) decodeAndValidate(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Validation("invalid request details", map[string]string{
				typeErr.Field: fmt.Sprintf("must be a %s", typeErr.Type.Kind()),
			})
		}
		return apperr.Wrap(apperr.ValidationFailed, "request details are not valid JSON", err)
	}
	if c, ok := dst.(cleaner); ok {
		c.clean()
	}
	if err := val.v.Struct(dst); err != nil {
		return fieldErrors(err)
	}
	return nil
}

// dateMessages covers the date rules registered in New.
var dateMessages = map[string]string{
	"upcoming":  "must be a date (YYYY-MM-DD) that is not in the past",
	"notfuture": "must be a date (YYYY-MM-DD) that is not in the future",
}

func fieldErrors(err error) error {
	return validate.FieldErrors(err, "invalid request details", dateMessages)
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	return t, false, err
}

// mustDate is only called on values that already passed a date rule.
func mustDate(s string) time.Time {
	t, _, _ := parseDate(s)
	return t.UTC()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// validateUpcoming: calendar dates must be today or later; timestamps must be
// after now.
func (val *Validator) validateUpcoming(fl validator.FieldLevel) bool {
	t, dateOnly, err := parseDate(fl.Field().String())
	if err != nil {
		return false
	}
	now := val.now()
	if dateOnly {
		return !t.Before(startOfDay(now))
	}
	return t.After(now)
}

// validateNotFuture: calendar dates must be today or earlier; timestamps must
// not be after now.
func (val *Validator) validateNotFuture(fl validator.FieldLevel) bool {
	t, dateOnly, err := parseDate(fl.Field().String())
	if err != nil {
		return false
	}
	now := val.now()
	if dateOnly {
		return !t.After(startOfDay(now))
	}
	return !t.After(now)
}
