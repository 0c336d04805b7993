package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aura-site/api/datastore"
	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/models"
	"github.com/aura-site/api/selector"
)

const dateLayout = "2006-01-02"

// SiteSource lists sites in a stable order.
type SiteSource interface {
	Count() (int, error)
	GetByOffset(offset int) (models.Site, error)
}

// FeaturedStore records the site of each day.
type FeaturedStore interface {
	GetByDate(date time.Time) (models.FeaturedSite, error)
	Create(featured models.FeaturedSite) (models.FeaturedSite, error)
}

// Scheduler picks the featured site of the day at every UTC midnight.
type Scheduler struct {
	Featured FeaturedStore
	Sites    SiteSource
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	timer    *time.Timer
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func NewScheduler(featured FeaturedStore, sites SiteSource, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		Featured: featured,
		Sites:    sites,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// untilMidnight is the wait before the next UTC day starts.
func untilMidnight(now time.Time) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return next.Sub(now)
}

// Start begins the scheduler to run at midnight every day
func (s *Scheduler) Start() {
	wait := untilMidnight(s.now())
	s.logger.Info("scheduler started", "next_run_in", wait.Round(time.Second).String())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer = time.AfterFunc(wait, s.startDaily)
}

// startDaily runs the first midnight job and then ticks every 24h. It does
// nothing once Stop has been called.
func (s *Scheduler) startDaily() {
	if s.stopped() {
		return
	}
	s.run()

	s.mu.Lock()
	if s.stopped() {
		s.mu.Unlock()
		return
	}
	s.ticker = time.NewTicker(24 * time.Hour)
	ticker := s.ticker
	s.mu.Unlock()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run()
			case <-s.done:
				return
			}
		}
	}()
}

func (s *Scheduler) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.timer != nil {
			s.timer.Stop()
		}
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.done)
		s.mu.Unlock()
		s.logger.Info("scheduler stopped")
	})
}

func (s *Scheduler) run() {
	if _, err := s.GenerateFeaturedSite(); err != nil {
		s.logger.Error("featured site generation failed",
			"code", domainerrors.CodeOf(err),
			"error", err,
		)
	}
}

// GenerateFeaturedSite stores today's featured site unless one exists. The
// pick is a hash of the date over the sites ordered by id, so every instance
// picks the same site on the same day.
func (s *Scheduler) GenerateFeaturedSite() (models.FeaturedSite, error) {
	today := datastore.DayOf(s.now())
	day := today.Format(dateLayout)

	existing, err := s.Featured.GetByDate(today)
	if err == nil {
		s.logger.Info("featured site already chosen", "date", day, "site_id", existing.SiteID)
		return existing, nil
	}
	if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		return models.FeaturedSite{}, err
	}

	count, err := s.Sites.Count()
	if err != nil {
		return models.FeaturedSite{}, err
	}
	if count == 0 {
		return models.FeaturedSite{}, domainerrors.NotFound("no sites to feature")
	}

	offset := selector.MustSelect(day, count)
	site, err := s.Sites.GetByOffset(offset)
	if err != nil {
		return models.FeaturedSite{}, err
	}

	featured, err := s.Featured.Create(models.FeaturedSite{
		Date:      today,
		SiteID:    site.ID,
		CreatedAt: s.now(),
	})
	if domainerrors.Is(err, domainerrors.ErrConflict) {
		// Another instance won the race for today.
		return s.Featured.GetByDate(today)
	}
	if err != nil {
		return models.FeaturedSite{}, err
	}

	s.logger.Info("featured site chosen",
		"date", day,
		"site_id", site.ID,
		"username", site.Username,
		"offset", offset,
		"of", count,
	)
	return featured, nil
}
