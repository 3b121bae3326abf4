package scheduler

import (
	"context"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	"github.com/jerseylab/jerseylab-backend/internal/websocket"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultPromoExpirySpec runs at the top of every hour.
const DefaultPromoExpirySpec = "0 * * * *"

const runTimeout = time.Minute

// PromoExpiryScheduler switches off promo codes whose end date has passed
// so the admin list reflects what the storefront will accept.
type PromoExpiryScheduler struct {
	cron         *cron.Cron
	spec         string
	promoService service.PromoService
	events       service.EventPublisher
	now          func() time.Time
}

// NewPromoExpiryScheduler builds the job. An empty spec uses DefaultPromoExpirySpec; events may be nil.
func NewPromoExpiryScheduler(promoService service.PromoService, events service.EventPublisher, spec string) *PromoExpiryScheduler {
	if spec == "" {
		spec = DefaultPromoExpirySpec
	}
	return &PromoExpiryScheduler{
		cron:         cron.New(),
		spec:         spec,
		promoService: promoService,
		events:       events,
		now:          time.Now,
	}
}

// Start registers the job and starts the cron runner.
func (s *PromoExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			logger.Error("Failed to deactivate expired promo codes from scheduler", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for promo expiry", err, logger.Fields{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Promo expiry scheduler started", logger.Fields{
		"spec": s.spec,
	})
	return nil
}

// RunOnce deactivates every active code that ended before now.
func (s *PromoExpiryScheduler) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	now := s.now().UTC()
	count, err := s.promoService.DeactivateExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	if count > 0 && s.events != nil {
		s.events.Publish(websocket.EventPromoCodesDeactivated, map[string]interface{}{
			"count": count,
			"at":    now,
		})
	}
	return count, nil
}

// Stop waits for a running job to finish.
func (s *PromoExpiryScheduler) Stop() {
	logger.Info("Stopping promo expiry scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Promo expiry scheduler stopped")
}
