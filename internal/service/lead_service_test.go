package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
	"realty_backend/internal/testutil"
)

type leadFixture struct {
	db       *gorm.DB
	notifier *fakeNotifier
	svc      *LeadService
	agent    Identity
	other    Identity
	admin    Identity
	active   *model.Listing
}

func newLeadFixture(t *testing.T) *leadFixture {
	t.Helper()
	db := testutil.NewDB(t)
	notifier := &fakeNotifier{}
	agent := testutil.CreateUser(t, db, "agent@example.com", model.RoleAgent)

	return &leadFixture{
		db:       db,
		notifier: notifier,
		svc:      NewLeadService(repository.NewLeadRepository(db), repository.NewListingRepository(db), notifier, nop()),
		agent:    identityOf(agent),
		other:    identityOf(testutil.CreateUser(t, db, "other@example.com", model.RoleAgent)),
		admin:    identityOf(testutil.CreateUser(t, db, "admin@example.com", model.RoleAdmin)),
		active:   testutil.CreateListing(t, db, agent.ID, model.ListingStatusActive),
	}
}

func (f *leadFixture) countLeads(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Lead{}).Count(&n).Error)
	return n
}

func (f *leadFixture) input() CreateLeadInput {
	return CreateLeadInput{ListingID: f.active.ID, Name: "Ann", Email: "ann@example.com", Message: "Is it available?"}
}

func TestCreateLeadNotifiesAgent(t *testing.T) {
	f := newLeadFixture(t)

	res, err := f.svc.Create(context.Background(), f.input())
	require.NoError(t, err)
	assert.True(t, res.Notified)
	assert.NoError(t, res.NotifyErr)
	assert.Equal(t, model.LeadStatusNew, res.Lead.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "agent@example.com", f.notifier.sent[0].to)
	assert.Equal(t, f.active.Title, f.notifier.sent[0].title)
	assert.Equal(t, "Is it available?", f.notifier.sent[0].lead.Message)

	var listing model.Listing
	require.NoError(t, f.db.First(&listing, "id = ?", f.active.ID).Error)
	assert.EqualValues(t, 1, listing.LeadsCount)
}

func TestCreateLeadSurvivesNotificationFailure(t *testing.T) {
	f := newLeadFixture(t)
	f.notifier.err = errors.New("smtp down")

	res, err := f.svc.Create(context.Background(), f.input())
	require.NoError(t, err)
	assert.False(t, res.Notified)
	assert.Error(t, res.NotifyErr)
	assert.EqualValues(t, 1, f.countLeads(t))
}

func TestCreateLeadRequiresActiveListing(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	for _, status := range []model.ListingStatus{model.ListingStatusDraft, model.ListingStatusPending} {
		listing := testutil.CreateListing(t, f.db, f.agent.UserID, status)
		in := f.input()
		in.ListingID = listing.ID
		_, err := f.svc.Create(ctx, in)
		assert.Equal(t, KindNotFound, KindOf(err), status)
	}

	in := f.input()
	in.ListingID = "missing"
	_, err := f.svc.Create(ctx, in)
	assert.Equal(t, KindNotFound, KindOf(err))

	assert.Zero(t, f.countLeads(t))
	assert.Empty(t, f.notifier.sent)
}

func TestCreateLeadValidation(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	in := f.input()
	in.Message = " "
	_, err := f.svc.Create(ctx, in)
	assert.Equal(t, KindValidation, KindOf(err))

	in = f.input()
	in.Email = "not-an-email"
	_, err = f.svc.Create(ctx, in)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdateLeadStatus(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.input())
	require.NoError(t, err)
	leadID := res.Lead.ID

	_, err = f.svc.UpdateStatus(ctx, f.agent, leadID, "Bogus")
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = f.svc.UpdateStatus(ctx, f.agent, "missing", "Bogus")
	assert.Equal(t, KindValidation, KindOf(err), "status is checked first")

	_, err = f.svc.UpdateStatus(ctx, f.other, leadID, "Contacted")
	assert.Equal(t, KindForbidden, KindOf(err))

	var stored model.Lead
	require.NoError(t, f.db.First(&stored, "id = ?", leadID).Error)
	assert.Equal(t, model.LeadStatusNew, stored.Status)

	view, err := f.svc.UpdateStatus(ctx, f.agent, leadID, "Contacted")
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusContacted, view.Status)

	view, err = f.svc.UpdateStatus(ctx, f.admin, leadID, "Converted")
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusConverted, view.Status)
	require.NotNil(t, view.Listing)
	assert.Equal(t, f.active.Title, view.Listing.Title)

	_, err = f.svc.UpdateStatus(ctx, f.agent, "missing", "Closed")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListLeadsForAgent(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.input())
	require.NoError(t, err)

	foreign := testutil.CreateListing(t, f.db, f.other.UserID, model.ListingStatusActive)
	in := f.input()
	in.ListingID = foreign.ID
	_, err = f.svc.Create(ctx, in)
	require.NoError(t, err)

	leads, err := f.svc.ListForAgent(ctx, f.agent)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.NotNil(t, leads[0].Listing)
	assert.Equal(t, f.active.ID, leads[0].Listing.ID)
	assert.Equal(t, f.active.Price, leads[0].Listing.Price)

	_, err = f.svc.ListForAgent(ctx, f.admin)
	assert.Equal(t, KindForbidden, KindOf(err))
}
