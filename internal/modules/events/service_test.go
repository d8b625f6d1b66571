package events

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventadmin/internal/cache"
	"eventadmin/internal/database"
	"eventadmin/internal/domain/event"
	"eventadmin/internal/domain/media"
)

func setupService(t *testing.T) (*Service, *MockHost) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &event.Event{}))
	t.Cleanup(func() { _ = database.Close(db) })

	log, _ := test.NewNullLogger()
	host := new(MockHost)
	svc := NewService(event.NewRepository(db, cache.Nop{}, log), newRegistry(host), log)
	svc.today = fixedToday
	return svc, host
}

func TestLaunchPartyLifecycle(t *testing.T) {
	svc, host := setupService(t)
	ctx := context.Background()
	date := event.NewDate(2025, time.March, 1)

	sub, err := svc.Create(ctx, FormValues{
		Name:        "Launch Party",
		Description: "Our annual product launch event",
		Venue:       "HQ",
		IsPaid:      false,
		IsOnline:    true,
		Guest:       "",
		EventDate:   &date,
		EventTime:   "18:00",
		Banner:      "https://img/b.png",
		ImageURLs:   []string{"https://img/1.png"},
		IsPrivate:   false,
	}, Uploads{})
	require.NoError(t, err)
	require.Len(t, sub.Notices, 1)
	assert.Equal(t, "Event Launch Party created successfully. See you on 2025-03-01.", sub.Notices[0].Message)

	got, err := svc.Get(ctx, sub.Event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Launch Party", got.Name)
	assert.Equal(t, "Our annual product launch event", got.Description)
	assert.Equal(t, "HQ", got.Venue)
	assert.False(t, got.IsPaid)
	assert.True(t, got.IsOnline)
	assert.Nil(t, got.Guest)
	assert.Equal(t, "2025-03-01", got.EventDate.String())
	assert.Equal(t, "18:00", got.EventTime)
	assert.Equal(t, "https://img/b.png", got.Banner)
	assert.Equal(t, []string{"https://img/1.png"}, got.ImageURLs)
	assert.False(t, got.IsPrivate)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sub.Event.ID, list[0].ID)

	outcome, err := svc.Delete(ctx, sub.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, Deleted, outcome)

	outcome, err = svc.Delete(ctx, sub.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, AlreadyGone, outcome)

	host.AssertNumberOfCalls(t, "Upload", 0)
}

func TestShortDescriptionNeverUploads(t *testing.T) {
	svc, host := setupService(t)
	values := launchPartyValues()
	values.Description = "short"

	_, err := svc.Create(context.Background(), values, Uploads{
		Banner: []media.File{media.NewFile("banner.png", pngHeader)},
	})

	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "description", ferr.Field)
	host.AssertNumberOfCalls(t, "Upload", 0)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPatchValidatesPresentMembersOnly(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	sub, err := svc.Create(ctx, launchPartyValues(), Uploads{})
	require.NoError(t, err)

	short := "tiny"
	_, err = svc.Patch(ctx, sub.Event.ID, event.Patch{Description: &short})
	var perr *PatchError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Fields, "description")

	venue := "Hall C"
	updated, err := svc.Patch(ctx, sub.Event.ID, event.Patch{Venue: &venue})
	require.NoError(t, err)
	assert.Equal(t, "Hall C", updated.Venue)
	assert.Equal(t, "Product launch evening", updated.Description)

	_, err = svc.Patch(ctx, "7f1b6c1e-3f7a-4f8e-9a44-2f4f2c3b9d10", event.Patch{Venue: &venue})
	assert.ErrorIs(t, err, ErrNotFound)
}
