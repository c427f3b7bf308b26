package userstore_test

import (
	"testing"
	"time"

	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/testutil"
)

func TestSubscribe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	notified := make(chan struct{}, 1)
	unsubscribe, err := store.Subscribe(ctx, func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	if err != nil {
		// Change streams need a replica set.
		t.Skipf("change streams unavailable: %v", err)
	}
	defer unsubscribe()

	fixtures.CreateStudent(ctx, "Watched", "watched@example.com")

	select {
	case <-notified:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification within 5s of an insert")
	}
}
