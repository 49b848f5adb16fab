package services

import (
	"fmt"
	"time"

	"github.com/codemule/adminbase/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// TokenCleanupService periodically deletes refresh-token rows whose expiry
// has passed. Revoked-but-unexpired rows are retained on purpose: they are
// the evidence that makes reuse detection work.
type TokenCleanupService struct {
	tokens        *TokenStore
	interval      time.Duration
	cronScheduler *cron.Cron
}

func NewTokenCleanupService(db *gorm.DB, interval time.Duration) *TokenCleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenCleanupService{
		tokens:   NewTokenStore(db),
		interval: interval,
	}
}

// StartScheduler begins the periodic sweep. The first run happens one full
// interval after start, which doubles as the startup delay while storage
// settles.
func (s *TokenCleanupService) StartScheduler() {
	s.cronScheduler = cron.New()

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cronScheduler.AddFunc(spec, func() {
		s.runSweep()
	}); err != nil {
		logger.Errorf("[TokenCleanup] Failed to schedule sweep: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Infof("[TokenCleanup] Scheduler started (interval: %s)", s.interval)
}

// StopScheduler cancels the repeating sweep. Safe to call when never started.
func (s *TokenCleanupService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// RunNow triggers a sweep outside the schedule, for the admin endpoint.
func (s *TokenCleanupService) RunNow() (int64, error) {
	return s.tokens.DeleteExpired()
}

func (s *TokenCleanupService) runSweep() {
	deleted, err := s.tokens.DeleteExpired()
	if err != nil {
		// Never crash the loop; the next tick retries.
		logger.Errorf("[TokenCleanup] Sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		logger.Infof("[TokenCleanup] Deleted %d expired refresh tokens", deleted)
	}
}
