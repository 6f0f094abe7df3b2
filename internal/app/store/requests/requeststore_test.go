package requeststore_test

import (
	"sync"
	"testing"
	"time"

	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/dalemusser/campusconnect/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	alice = testutil.Identity("alice")
	bob   = testutil.Identity("bob")
	carol = testutil.Identity("carol")
)

func setup(t *testing.T) (*testutil.Fixtures, *requeststore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return testutil.NewFixtures(t, db), requeststore.New(db)
}

func TestCreate_SetsLifecycleFields(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := models.Request{
		Title:           "Roommate wanted",
		Category:        models.CategoryRoommate,
		Roommate:        &models.RoommateDetails{Location: "North", Budget: "500"},
		Creator:         alice,
		Status:          models.StatusCompleted,
		InterestedUsers: []models.InterestEntry{{ExternalID: "sneaky"}},
	}
	out, err := store.Create(ctx, in)
	require.NoError(t, err)

	assert.False(t, out.ID.IsZero())
	assert.Equal(t, models.StatusOpen, out.Status)
	assert.Empty(t, out.InterestedUsers)

	got, err := store.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got.Creator)
	assert.Equal(t, "North", got.Roommate.Location)
	assert.NotNil(t, got.InterestedUsers)
}

func TestGetByID_NotFound(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestParseID(t *testing.T) {
	_, err := requeststore.ParseID("nope")
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	id := primitive.NewObjectID()
	got, err := requeststore.ParseID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestJoin_Lifecycle(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := fx.CreateRequest(ctx, alice, "Pickup soccer")

	_, err := store.Join(ctx, primitive.NewObjectID(), bob)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = store.Join(ctx, req.ID, alice)
	assert.Equal(t, apperr.SelfJoin, apperr.KindOf(err))

	out, err := store.Join(ctx, req.ID, bob)
	require.NoError(t, err)
	require.Len(t, out.InterestedUsers, 1)
	entry := out.InterestedUsers[0]
	assert.Equal(t, bob.ExternalID, entry.ExternalID)
	assert.Equal(t, models.InterestPending, entry.Status)
	assert.False(t, entry.JoinedAt.IsZero())

	_, err = store.Join(ctx, req.ID, bob)
	assert.Equal(t, apperr.AlreadyJoined, apperr.KindOf(err))

	_, err = store.Decide(ctx, req.ID, alice, bob.ExternalID, models.InterestRejected)
	require.NoError(t, err)
	_, err = store.Join(ctx, req.ID, bob)
	assert.Equal(t, apperr.AlreadyJoined, apperr.KindOf(err), "rejected users cannot re-join")
}

func TestJoin_ClosedRequest(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, st := range []string{models.StatusCompleted, models.StatusCancelled} {
		req := fx.CreateRequestWith(ctx, alice, "closed", st, time.Now().UTC())
		_, err := store.Join(ctx, req.ID, bob)
		assert.Equal(t, apperr.RequestClosed, apperr.KindOf(err), st)
	}

	paused := fx.CreateRequestWith(ctx, alice, "paused", models.StatusPaused, time.Now().UTC())
	_, err := store.Join(ctx, paused.ID, bob)
	assert.NoError(t, err)
}

func TestJoin_ConcurrentSameUserOnlyOnce(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := fx.CreateRequest(ctx, alice, "race")

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Join(ctx, req.ID, bob)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, dup := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.KindOf(err) == apperr.AlreadyJoined:
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	got, err := store.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, got.InterestedUsers, 1)
}

func TestJoin_ConcurrentDifferentUsersAllKept(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := fx.CreateRequest(ctx, alice, "crowd")

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := testutil.Identity("user" + string(rune('a'+i)))
			_, err := store.Join(ctx, req.ID, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, got.InterestedUsers, 12)
}

func TestDecide(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := fx.CreateRequest(ctx, alice, "decide")
	_, err := store.Join(ctx, req.ID, bob)
	require.NoError(t, err)
	_, err = store.Join(ctx, req.ID, carol)
	require.NoError(t, err)

	_, err = store.Decide(ctx, req.ID, bob, carol.ExternalID, models.InterestAccepted)
	assert.Equal(t, apperr.PermissionDenied, apperr.KindOf(err))

	_, err = store.Decide(ctx, req.ID, alice, "ext-nobody", models.InterestAccepted)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = store.Decide(ctx, primitive.NewObjectID(), alice, bob.ExternalID, models.InterestAccepted)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	out, err := store.Decide(ctx, req.ID, alice, bob.ExternalID, models.InterestAccepted)
	require.NoError(t, err)
	e, _ := out.Interest(bob.ExternalID)
	assert.Equal(t, models.InterestAccepted, e.Status)
	other, _ := out.Interest(carol.ExternalID)
	assert.Equal(t, models.InterestPending, other.Status, "only the target entry changes")

	// re-deciding overwrites
	out, err = store.Decide(ctx, req.ID, alice, bob.ExternalID, models.InterestRejected)
	require.NoError(t, err)
	e, _ = out.Interest(bob.ExternalID)
	assert.Equal(t, models.InterestRejected, e.Status)
	assert.Len(t, out.InterestedUsers, 2, "entries are never removed")
}

func TestUpdateStatus(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := fx.CreateRequest(ctx, alice, "status")

	_, err := store.UpdateStatus(ctx, primitive.NewObjectID(), alice, models.StatusPaused, "")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = store.UpdateStatus(ctx, req.ID, bob, models.StatusPaused, "")
	assert.Equal(t, apperr.PermissionDenied, apperr.KindOf(err))

	_, err = store.UpdateStatus(ctx, req.ID, bob, "bogus", "")
	assert.Equal(t, apperr.PermissionDenied, apperr.KindOf(err), "permission is checked before the status value")

	_, err = store.UpdateStatus(ctx, req.ID, alice, "bogus", "")
	assert.Equal(t, apperr.InvalidTransition, apperr.KindOf(err))

	_, err = store.UpdateStatus(ctx, req.ID, alice, models.StatusCompleted, "")
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	change, err := store.UpdateStatus(ctx, req.ID, alice, models.StatusCompleted, "team is full")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, change.From)
	assert.Equal(t, models.StatusCompleted, change.Request.Status)

	// no transition graph: completed may go straight back to open
	change, err = store.UpdateStatus(ctx, req.ID, alice, models.StatusOpen, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, change.From)

	got, err := store.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.Equal(t, alice.ExternalID, got.StatusUpdatedBy)
	require.NotNil(t, got.StatusUpdatedAt)
}

func TestDelete(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := fx.CreateRequest(ctx, alice, "delete me")

	_, err := store.Delete(ctx, primitive.NewObjectID(), alice, false)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = store.Delete(ctx, req.ID, bob, false)
	assert.Equal(t, apperr.PermissionDenied, apperr.KindOf(err))

	gone, err := store.Delete(ctx, req.ID, alice, false)
	require.NoError(t, err)
	assert.Equal(t, req.ID, gone.ID)

	_, err = store.GetByID(ctx, req.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	other := fx.CreateRequest(ctx, alice, "admin removes")
	_, err = store.Delete(ctx, other.ID, bob, true)
	assert.NoError(t, err, "override bypasses the creator check")
}

func TestListing(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	old := fx.CreateRequestWith(ctx, alice, "old", models.StatusOpen, base)
	mid := fx.CreateRequestWith(ctx, bob, "mid", models.StatusOpen, base.Add(time.Minute))
	recent := fx.CreateRequestWith(ctx, alice, "new", models.StatusPaused, base.Add(2*time.Minute))

	all, res, err := store.List(ctx, requeststore.Filter{}, paging.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, res.HasNext)
	assert.Equal(t, recent.ID, all[0].ID)
	assert.Equal(t, mid.ID, all[1].ID)

	page2, res, err := store.List(ctx, requeststore.Filter{}, paging.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.False(t, res.HasNext)
	assert.Equal(t, old.ID, page2[0].ID)

	none, _, err := store.List(ctx, requeststore.Filter{Category: models.CategoryTrip}, paging.Default())
	require.NoError(t, err)
	assert.Empty(t, none)

	mine, _, err := store.ListByCreator(ctx, alice.ExternalID, paging.Default())
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = store.Join(ctx, mid.ID, carol)
	require.NoError(t, err)
	joined, _, err := store.ListJoinedBy(ctx, carol.ExternalID, paging.Default())
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, mid.ID, joined[0].ID)

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.StatusOpen])
	assert.Equal(t, int64(1), counts[models.StatusPaused])
	assert.Equal(t, int64(0), counts[models.StatusCancelled])

	total, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
