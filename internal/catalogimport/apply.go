package catalogimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/jerseylab/jerseylab-backend/internal/app/service"
)

// Summary counts the outcome of Apply.
type Summary struct {
	Created int
	Updated int
	Failed  map[string]error
}

// Apply upserts each category by key. An existing category keeps its
// description, hero image and status; its products are replaced.
func Apply(ctx context.Context, catalog service.CatalogService, categories []service.CategoryInput) Summary {
	summary := Summary{Failed: make(map[string]error)}

	for _, input := range categories {
		existing, err := catalog.GetCategoryByKey(ctx, input.Key)
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			if _, err := catalog.CreateCategory(ctx, input); err != nil {
				summary.Failed[input.Key] = fmt.Errorf("create: %w", err)
				continue
			}
			summary.Created++
		case err != nil:
			summary.Failed[input.Key] = fmt.Errorf("lookup: %w", err)
		default:
			input.Description = existing.Description
			input.HeroImage = existing.HeroImage
			input.Status = existing.Status
			if _, err := catalog.UpdateCategory(ctx, existing.ID, input); err != nil {
				summary.Failed[input.Key] = fmt.Errorf("update: %w", err)
				continue
			}
			summary.Updated++
		}
	}

	return summary
}
