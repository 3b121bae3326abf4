package service

import (
	"testing"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupInquiryServiceTest(t *testing.T) (InquiryService, *fakeMailer, *recordingPublisher) {
	mailer := &fakeMailer{}
	events := &recordingPublisher{}
	repo := repository.NewInquiryRepository(setupTestDB(t))
	return NewInquiryService(repo, mailer, events), mailer, events
}

func teamInput() CreateInquiryInput {
	return CreateInquiryInput{
		FirstName:   "Jordan",
		LastName:    "Lee",
		PhoneNumber: "555-0100",
		Email:       "Coach@School.edu",
		Description: "12 home and away kits",
		DesignFile:  "https://cdn.example.com/designs/kit.pdf",
		FileName:    "kit.pdf",
	}
}

func TestInquiryService_Create(t *testing.T) {
	svc, mailer, events := setupInquiryServiceTest(t)

	inquiry, err := svc.Create(teamInput())
	require.NoError(t, err)
	assert.NotZero(t, inquiry.ID)
	assert.Equal(t, model.InquiryStatusPending, inquiry.Status)
	assert.Equal(t, "coach@school.edu", inquiry.Email)

	assert.Equal(t, []string{"coach@school.edu"}, mailer.inquiries)
	assert.Equal(t, []string{websocket.EventInquiryCreated}, events.events)
}

func TestInquiryService_Create_Validation(t *testing.T) {
	svc, mailer, _ := setupInquiryServiceTest(t)

	missing := teamInput()
	missing.LastName = ""
	missing.Description = "  "
	_, err := svc.Create(missing)
	assert.ErrorIs(t, err, ErrInvalidInquiry)
	assert.Contains(t, err.Error(), "last name, description")

	badEmail := teamInput()
	badEmail.Email = "coach"
	_, err = svc.Create(badEmail)
	assert.ErrorIs(t, err, ErrInvalidInquiry)

	assert.Empty(t, mailer.inquiries)
}

func TestInquiryService_ListAndUpdate(t *testing.T) {
	svc, _, _ := setupInquiryServiceTest(t)

	first, err := svc.Create(teamInput())
	require.NoError(t, err)
	_, err = svc.Create(teamInput())
	require.NoError(t, err)

	notes := "Quoted $480"
	updated, err := svc.Update(first.ID, model.InquiryStatusInProgress, &notes)
	require.NoError(t, err)
	assert.Equal(t, model.InquiryStatusInProgress, updated.Status)
	assert.Equal(t, notes, updated.Notes)

	// empty status keeps the current one
	updated, err = svc.Update(first.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, model.InquiryStatusInProgress, updated.Status)
	assert.Equal(t, notes, updated.Notes)

	_, err = svc.Update(first.ID, "archived", nil)
	assert.ErrorIs(t, err, ErrInvalidInquiryStatus)

	_, err = svc.Update(9999, model.InquiryStatusCompleted, nil)
	assert.ErrorIs(t, err, ErrInquiryNotFound)

	pending, err := svc.List(model.InquiryStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := svc.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List("unknown")
	assert.ErrorIs(t, err, ErrInvalidInquiryStatus)
}
