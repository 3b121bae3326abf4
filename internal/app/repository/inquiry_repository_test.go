package repository

import (
	"testing"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInquiryRepository(t *testing.T) {
	repo := NewInquiryRepository(setupTestDB(t))

	first := &model.TeamwearInquiry{FirstName: "Sam", LastName: "Lee", PhoneNumber: "555-0100", Email: "sam@example.com", Description: "20 kits", Status: model.InquiryStatusPending}
	second := &model.TeamwearInquiry{FirstName: "Ana", LastName: "Ruiz", PhoneNumber: "555-0101", Email: "ana@example.com", Description: "12 kits", Status: model.InquiryStatusPending}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	second.Status = model.InquiryStatusInProgress
	second.Notes = "Called back"
	require.NoError(t, repo.Update(second))

	all, err := repo.FindAll("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	pending, err := repo.FindAll(model.InquiryStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Sam", pending[0].FirstName)

	found, err := repo.FindByID(second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Called back", found.Notes)
}
