package catalogimport

import (
	"context"
	"testing"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	"github.com/jerseylab/jerseylab-backend/internal/cache"
	"github.com/jerseylab/jerseylab-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T) service.CatalogService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return service.NewCatalogService(repository.NewCategoryRepository(testDB), cache.NewMemoryStore(), time.Minute)
}

func TestApply_CreatesAndUpdates(t *testing.T) {
	catalog := setupCatalog(t)
	ctx := context.Background()

	_, err := catalog.CreateCategory(ctx, service.CategoryInput{
		Key:         "influencers",
		Title:       "Influencers",
		Description: "Creator collabs",
		Status:      model.CategoryStatusComingSoon,
		Products:    []service.ProductInput{{Title: "Old Jersey", Price: "50"}},
	})
	require.NoError(t, err)

	summary := Apply(ctx, catalog, []service.CategoryInput{
		{
			Key:      "influencers",
			Title:    "Influencers",
			Status:   model.CategoryStatusActive,
			Products: []service.ProductInput{{Title: "Creator Jersey", Price: "95"}},
		},
		{
			Key:      "teamwear",
			Title:    "Teamwear",
			Status:   model.CategoryStatusActive,
			Products: []service.ProductInput{{Title: "Club Kit", Price: "$60.00"}},
		},
		{
			Key:   "bad key!",
			Title: "Broken",
		},
	})

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	require.Len(t, summary.Failed, 1)
	assert.Contains(t, summary.Failed, "bad key!")

	updated, err := catalog.GetCategoryByKey(ctx, "influencers")
	require.NoError(t, err)
	assert.Equal(t, "Creator collabs", updated.Description)
	assert.Equal(t, model.CategoryStatusComingSoon, updated.Status)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, "Creator Jersey", updated.Products[0].Title)

	created, err := catalog.GetCategoryByKey(ctx, "teamwear")
	require.NoError(t, err)
	assert.Equal(t, "60.00", created.Products[0].Price.StringFixed(2))
}
