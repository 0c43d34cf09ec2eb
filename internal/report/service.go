package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mahdighaemi123/ActCastBot/internal/gateway"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// Service periodically publishes the stats and survey reports to the
// operator channel.
type Service struct {
	users    *storage.UserRepo
	surveys  *storage.SurveyRepo
	gw       gateway.Gateway
	channel  int64
	interval time.Duration
	loc      *time.Location
	log      zerolog.Logger
}

// NewService builds a report service. timezone falls back to UTC when
// the location cannot be loaded.
func NewService(users *storage.UserRepo, surveys *storage.SurveyRepo, gw gateway.Gateway, channel int64, interval time.Duration, timezone string, log zerolog.Logger) *Service {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn().Str("timezone", timezone).Err(err).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}
	return &Service{
		users:    users,
		surveys:  surveys,
		gw:       gw,
		channel:  channel,
		interval: interval,
		loc:      loc,
		log:      log,
	}
}

// Run publishes one report immediately and then on every interval tick
// until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.Publish(ctx); err != nil {
			s.log.Error().Err(err).Msg("report publish failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Publish sends the stats report, the survey report and one voter CSV
// per survey to the operator channel.
func (s *Service) Publish(ctx context.Context) error {
	now := time.Now().In(s.loc)

	total, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	rows, err := s.users.HistoryBreakdown(ctx)
	if err != nil {
		return fmt.Errorf("history breakdown: %w", err)
	}
	if _, err := s.gw.SendText(ctx, s.channel, StatsText(total, rows, now)); err != nil {
		return fmt.Errorf("send stats report: %w", err)
	}

	surveys, err := s.surveys.All(ctx)
	if err != nil {
		return fmt.Errorf("load surveys: %w", err)
	}
	if len(surveys) == 0 {
		return nil
	}
	if _, err := s.gw.SendText(ctx, s.channel, SurveysText(surveys, now)); err != nil {
		return fmt.Errorf("send survey report: %w", err)
	}

	for i := range surveys {
		if err := s.publishVoters(ctx, &surveys[i], now); err != nil {
			s.log.Error().Str("survey_id", surveys[i].SurveyID).Err(err).Msg("voter export failed")
		}
	}
	return nil
}

func (s *Service) publishVoters(ctx context.Context, sv *storage.Survey, now time.Time) error {
	if len(sv.Votes) == 0 {
		return nil
	}
	users, err := s.users.ByIDs(ctx, VoterIDs(sv))
	if err != nil {
		return fmt.Errorf("load voters: %w", err)
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("survey_%s_%d.csv", sv.SurveyID, now.Unix()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(path)

	if err := WriteVotersCSV(f, sv, users); err != nil {
		f.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}

	caption := fmt.Sprintf("🗳 Voters: %s", shorten(sv.Question, 50))
	if err := s.gw.SendDocument(ctx, s.channel, path, caption); err != nil {
		return fmt.Errorf("send export: %w", err)
	}
	return nil
}
