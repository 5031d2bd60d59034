package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/tagcord/tagcord-backend/internal/app/service"
	"github.com/tagcord/tagcord-backend/pkg/logger"
)

// ListingWarmer re-plans the home feed descriptor on a schedule so the most
// visited page is always served from cache after an invalidation.
type ListingWarmer struct {
	cron         *cron.Cron
	listing      *service.ListingService
	homeFeedSize int
	schedule     string
}

func NewListingWarmer(listing *service.ListingService, homeFeedSize int, schedule string) *ListingWarmer {
	if schedule == "" {
		schedule = "*/5 * * * *"
	}
	return &ListingWarmer{
		cron:         cron.New(),
		listing:      listing,
		homeFeedSize: homeFeedSize,
		schedule:     schedule,
	}
}

func (w *ListingWarmer) Start() error {
	_, err := w.cron.AddFunc(w.schedule, w.warm)
	if err != nil {
		logger.Error("Failed to add cron job for listing warmup", err, nil)
		return err
	}

	w.cron.Start()
	logger.Info("Listing cache warmer started", map[string]interface{}{
		"schedule": w.schedule,
	})

	// Prime the cache immediately so the first home page load is warm
	go w.warm()
	return nil
}

func (w *ListingWarmer) warm() {
	page, err := w.listing.PlanParams(context.Background(), service.ListingParams{
		Sort:     service.SortNewest,
		Page:     1,
		PageSize: w.homeFeedSize,
	})
	if err != nil {
		logger.Error("Listing warmup failed", err, nil)
		return
	}

	logger.Debug("Listing warmup complete", map[string]interface{}{
		"total_matches": page.TotalMatches,
	})
}

func (w *ListingWarmer) Stop() {
	logger.Info("Stopping listing cache warmer...", nil)
	w.cron.Stop()
	logger.Info("Listing cache warmer stopped", nil)
}
