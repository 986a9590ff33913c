package mockapi

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/foodctl/foodctl/internal/mockapi/models"
)

// sweepRevokedTokens deletes revocations of tokens that have expired anyway
func (s *Server) sweepRevokedTokens(now time.Time) (int64, error) {
	result := s.db.Where("expires_at <= ?", now.UTC()).Delete(&models.RevokedToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep revoked tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// startSweeper schedules the revoked-token sweep
func (s *Server) startSweeper() error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(s.config.SweepSchedule)
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.config.SweepSchedule, err)
	}

	s.sweeper = cron.New(cron.WithParser(parser))
	s.sweeper.Schedule(schedule, cron.FuncJob(func() {
		n, err := s.sweepRevokedTokens(s.now())
		if err != nil {
			s.logger.Error().Err(err).Msg("Revoked token sweep failed")
			return
		}
		if n > 0 {
			s.logger.Debug().Int64("removed", n).Msg("Swept revoked tokens")
		}
	}))
	s.sweeper.Start()

	s.logger.Info().
		Str("schedule", s.config.SweepSchedule).
		Time("next_run", schedule.Next(s.now())).
		Msg("Revoked token sweep scheduled")
	return nil
}

func (s *Server) stopSweeper() {
	if s.sweeper == nil {
		return
	}
	<-s.sweeper.Stop().Done()
}
