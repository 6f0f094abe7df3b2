// Package browse filters and sorts an already fetched page of requests in
// memory. It never touches storage.
package browse

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
)

// Created-within windows.
const (
	WithinToday = "today"
	WithinWeek  = "week"
	WithinMonth = "month"
)

// Sort keys.
const (
	SortCreatedAt = "createdAt"
	SortTitle     = "title"
	SortCategory  = "category"
	SortInterest  = "interest"
	SortStatus    = "status"
)

var sortAliases = map[string]string{
	SortCreatedAt:     SortCreatedAt,
	SortTitle:         SortTitle,
	SortCategory:      SortCategory,
	"type":            SortCategory,
	SortInterest:      SortInterest,
	"interestedUsers": SortInterest,
	SortStatus:        SortStatus,
}

// Options describe an in-memory view. The zero value changes nothing.
type Options struct {
	Query         string
	Status        string
	Within        string
	MinInterested int
	Sort          string
	Desc          bool
}

// Active reports whether applying o would change a page.
func (o Options) Active() bool {
	return o.Query != "" || o.Status != "" || o.Within != "" || o.MinInterested > 0 || o.Sort != ""
}

// Parse reads q, status, within, minInterested, sort and order. "all" is
// accepted as "no filter" for status and within.
func Parse(r *http.Request) (Options, error) {
	o := Options{
		Query:  strings.TrimSpace(query.Get(r, "q")),
		Status: query.Get(r, "status"),
		Within: query.Get(r, "within"),
	}
	fields := map[string]string{}

	if o.Status == "all" {
		o.Status = ""
	}
	if o.Status != "" && !models.IsValidStatus(o.Status) {
		fields["status"] = "unknown status"
	}

	switch o.Within {
	case "", WithinToday, WithinWeek, WithinMonth:
	case "all":
		o.Within = ""
	default:
		fields["within"] = "must be today, week or month"
	}

	if s := query.Get(r, "minInterested"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			fields["minInterested"] = "must be a non-negative number"
		}
		o.MinInterested = n
	}

	if s := query.Get(r, "sort"); s != "" {
		key, ok := sortAliases[s]
		if !ok {
			fields["sort"] = "must be createdAt, title, category, interest or status"
		}
		o.Sort = key
	}

	switch order := strings.ToLower(query.Get(r, "order")); order {
	case "", "desc":
		o.Desc = true
	case "asc":
	default:
		fields["order"] = "must be asc or desc"
	}

	if len(fields) > 0 {
		return Options{}, apperr.Validation("invalid browse options", fields)
	}
	return o, nil
}

// Apply returns the requests that pass o's filters, sorted by o. The input
// slice is not modified.
func Apply(reqs []models.Request, o Options, now time.Time) []models.Request {
	out := make([]models.Request, 0, len(reqs))
	since, hasSince := windowStart(o.Within, now)
	needle := text.Fold(o.Query)

	for _, r := range reqs {
		if o.Status != "" && statusOf(r) != o.Status {
			continue
		}
		if hasSince && r.CreatedAt.Before(since) {
			continue
		}
		if len(r.InterestedUsers) < o.MinInterested {
			continue
		}
		if needle != "" && !matches(r, needle) {
			continue
		}
		out = append(out, r)
	}

	if o.Sort != "" {
		sortRequests(out, o.Sort, o.Desc)
	}
	return out
}

func statusOf(r models.Request) string {
	if r.Status == "" {
		return models.StatusOpen
	}
	return r.Status
}

func windowStart(within string, now time.Time) (time.Time, bool) {
	y, m, d := now.Date()
	switch within {
	case WithinToday:
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case WithinWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case WithinMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

// matches does a folded substring search over the text a student would
// recognise a request by.
func matches(r models.Request, needle string) bool {
	hay := []string{r.Title, r.Description, r.Creator.DisplayName, r.Creator.Email}
	if r.Sports != nil {
		hay = append(hay, r.Sports.SportName, r.Sports.Venue)
	}
	if r.Trip != nil {
		hay = append(hay, r.Trip.Destination)
	}
	if r.LostFound != nil {
		hay = append(hay, r.LostFound.ItemName)
	}
	if r.Roommate != nil {
		hay = append(hay, r.Roommate.Location)
	}
	for _, h := range hay {
		if h != "" && strings.Contains(text.Fold(h), needle) {
			return true
		}
	}
	return false
}

func sortRequests(reqs []models.Request, key string, desc bool) {
	less := func(a, b models.Request) bool {
		switch key {
		case SortTitle:
			return text.Fold(a.Title) < text.Fold(b.Title)
		case SortCategory:
			return a.Category < b.Category
		case SortInterest:
			return len(a.InterestedUsers) < len(b.InterestedUsers)
		case SortStatus:
			return statusOf(a) < statusOf(b)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		if desc {
			return less(reqs[j], reqs[i])
		}
		return less(reqs[i], reqs[j])
	})
}
