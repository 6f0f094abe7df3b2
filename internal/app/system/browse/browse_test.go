package browse

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC) // a Wednesday

func interest(n int) []models.InterestEntry {
	out := make([]models.InterestEntry, n)
	return out
}

func sample() []models.Request {
	return []models.Request{
		{Title: "Café study group", Category: models.CategoryTeammate, Status: models.StatusOpen,
			CreatedAt: now.Add(-2 * time.Hour), InterestedUsers: interest(1),
			Creator: models.Identity{DisplayName: "Ann", Email: "ann@campus.edu"}},
		{Title: "Basketball", Category: models.CategorySports, Status: models.StatusPaused,
			CreatedAt: now.AddDate(0, 0, -3), InterestedUsers: interest(4),
			Sports: &models.SportsDetails{SportName: "Basketball", Venue: "Gym"}},
		{Title: "Road trip", Category: models.CategoryTrip, Status: models.StatusCompleted,
			CreatedAt: now.AddDate(0, 0, -10), InterestedUsers: interest(2),
			Trip: &models.TripDetails{Destination: "Yosemite"}},
		{Title: "Lost keys", Category: models.CategoryLostFound,
			CreatedAt: now.AddDate(0, -2, 0),
			LostFound: &models.LostFoundDetails{ItemName: "Keys"}},
	}
}

func titles(reqs []models.Request) []string {
	var out []string
	for _, r := range reqs {
		out = append(out, r.Title)
	}
	return out
}

func TestApply_ZeroOptionsKeepsEverything(t *testing.T) {
	in := sample()
	assert.Equal(t, titles(in), titles(Apply(in, Options{}, now)))
	assert.False(t, Options{}.Active())
}

func TestApply_Filters(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"status", Options{Status: models.StatusPaused}, []string{"Basketball"}},
		{"missing status counts as open", Options{Status: models.StatusOpen}, []string{"Café study group", "Lost keys"}},
		{"today", Options{Within: WithinToday}, []string{"Café study group"}},
		{"week", Options{Within: WithinWeek}, []string{"Café study group", "Basketball"}},
		{"month", Options{Within: WithinMonth}, []string{"Café study group", "Basketball", "Road trip"}},
		{"min interested", Options{MinInterested: 2}, []string{"Basketball", "Road trip"}},
		{"query folds case and accents", Options{Query: "cafe"}, []string{"Café study group"}},
		{"query hits details", Options{Query: "yosem"}, []string{"Road trip"}},
		{"query hits creator email", Options{Query: "ANN@"}, []string{"Café study group"}},
		{"combined", Options{Within: WithinMonth, MinInterested: 2, Status: models.StatusCompleted}, []string{"Road trip"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Apply(sample(), tt.opts, now)))
		})
	}
}

func TestApply_Sort(t *testing.T) {
	got := Apply(sample(), Options{Sort: SortInterest, Desc: true}, now)
	assert.Equal(t, []string{"Basketball", "Road trip", "Café study group", "Lost keys"}, titles(got))

	got = Apply(sample(), Options{Sort: SortTitle}, now)
	assert.Equal(t, []string{"Basketball", "Café study group", "Lost keys", "Road trip"}, titles(got))

	got = Apply(sample(), Options{Sort: SortCreatedAt}, now)
	assert.Equal(t, "Lost keys", got[0].Title)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := sample()
	before := titles(in)
	Apply(in, Options{Sort: SortTitle}, now)
	assert.Equal(t, before, titles(in))
}

func TestParse(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/requests?q=+soccer+&status=all&within=week&minInterested=2&sort=interestedUsers&order=asc", nil)
	o, err := Parse(r)
	require.NoError(t, err)
	assert.Equal(t, Options{Query: "soccer", Within: WithinWeek, MinInterested: 2, Sort: SortInterest}, o)
	assert.True(t, o.Active())

	r = httptest.NewRequest("GET", "/api/requests?status=bogus&within=year&sort=color&order=up&minInterested=-1", nil)
	_, err = Parse(r)
	e := apperr.As(err)
	require.NotNil(t, e)
	assert.Equal(t, apperr.ValidationFailed, e.Kind)
	assert.Len(t, e.Fields, 5)
}
