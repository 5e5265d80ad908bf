// Package service implements the UI-side flows of the GoChamp client: login,
// dashboard listing, reports and video upload. Views consume the outcomes;
// the remote boundary is reached through Backend.
package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/gochamp/internal/domain/model"
	"github.com/okian/gochamp/internal/domain/rating"
	"github.com/okian/gochamp/internal/domain/report"
	"github.com/okian/gochamp/internal/domain/types"
	"github.com/okian/gochamp/pkg/logger"
	"github.com/okian/gochamp/pkg/metrics"
)

// Routes the flows navigate to.
const (
	RouteLogin     = "/"
	RouteDashboard = "/dashboard"
	RouteReports   = "/reports"
	RouteUpload    = "/upload"
)

// User-facing messages.
const (
	AlertMissingFields = "Email and password are required"
	AlertLoginFailed   = "Login failed"
	NoticeListFailed   = "Could not load athletes. Please try again."
	NoticeUploadFailed = "Upload failed. Please try again."
	NoticeNoFile       = "Choose a video to upload"
)

// Chart geometry used by the reports view.
const (
	ChartWidth   = 600
	ChartHeight  = 300
	ChartPadding = 50
)

// Backend is the remote boundary the flows depend on.
type Backend interface {
	Authenticate(ctx context.Context, creds model.Credentials) (*model.SessionResult, error)
	ListAthletes(ctx context.Context) ([]model.Athlete, error)
	UploadVideo(ctx context.Context, up model.Upload) (*model.UploadResult, error)
	LatestResult(ctx context.Context) (*model.UploadResult, error)
	Leaderboard(ctx context.Context) ([]types.Entry, error)
}

// Service runs the UI flows against one Backend. It keeps no state between
// calls.
type Service struct {
	backend Backend
	logger  logger.Logger
	metrics *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("app")
		}
	}
}

// WithMetrics records login outcomes on m instead of the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Service over backend.
func New(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		logger:  logger.Nop(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginOutcome tells the login view what to do next. Exactly one of Navigate
// and Alert is set.
type LoginOutcome struct {
	Navigate string
	Alert    string
	Session  *model.SessionResult
	Err      error
}

// Login validates the form and authenticates. Empty fields are rejected
// without contacting the service; a failed call leaves the user on the login
// view.
func (s *Service) Login(ctx context.Context, creds model.Credentials) LoginOutcome {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return LoginOutcome{Alert: AlertMissingFields}
	}
	res, err := s.backend.Authenticate(ctx, creds)
	s.metrics.RecordLogin(err == nil)
	if err != nil {
		s.logger.Warn(ctx, "login failed", logger.String("email", creds.Email), logger.Error(err))
		return LoginOutcome{Alert: AlertLoginFailed, Err: err}
	}
	s.logger.Info(ctx, "login succeeded", logger.String("email", creds.Email))
	return LoginOutcome{Navigate: RouteDashboard, Session: res}
}

// Card is one athlete profile card. Age and Score are nil when the service
// did not send them; such a card is rated NotAssessed.
type Card struct {
	ID     model.AthleteID
	Name   string
	Age    *int
	Score  *float64
	Rating rating.Label
	Sport  string
}

// DashboardView is everything the dashboard renders for one display.
type DashboardView struct {
	Cards []Card
	// Notice replaces the cards when the listing failed.
	Notice string
	// Leaderboard is nil when the panel could not be loaded.
	Leaderboard []types.Entry
	Err         error
}

// Dashboard lists athletes once and loads the leaderboard panel alongside.
// A leaderboard failure only hides the panel.
func (s *Service) Dashboard(ctx context.Context) DashboardView {
	var (
		athletes []model.Athlete
		board    []types.Entry
		listErr  error
	)

	var g errgroup.Group
	g.Go(func() error {
		athletes, listErr = s.backend.ListAthletes(ctx)
		return nil
	})
	g.Go(func() error {
		entries, err := s.backend.Leaderboard(ctx)
		if err != nil {
			s.logger.Warn(ctx, "leaderboard panel unavailable", logger.Error(err))
			return nil
		}
		board = entries
		return nil
	})
	_ = g.Wait()

	view := DashboardView{Leaderboard: board}
	if listErr != nil {
		s.logger.Warn(ctx, "athlete listing failed", logger.Error(listErr))
		view.Notice = NoticeListFailed
		view.Err = listErr
		view.Cards = []Card{}
		return view
	}
	view.Cards = Cards(athletes)
	return view
}

// Cards maps athletes to profile cards, one per athlete, in service order.
func Cards(athletes []model.Athlete) []Card {
	cards := make([]Card, 0, len(athletes))
	for _, a := range athletes {
		cards = append(cards, Card{
			ID:     a.ID,
			Name:   a.Name,
			Age:    a.Age,
			Score:  a.LatestScore,
			Rating: rating.ForOptional(a.LatestScore),
			Sport:  a.Sport,
		})
	}
	return cards
}

// ReportView is the reports screen: a series, its summary and chart geometry.
type ReportView struct {
	Series  []model.ScorePoint
	Summary report.Summary
	Chart   report.Chart
}

// Reports builds the reports view from the placeholder series. It makes no
// remote call.
func (s *Service) Reports(_ context.Context) ReportView {
	series := report.PlaceholderSeries()
	return ReportView{
		Series:  series,
		Summary: report.Summarize(series),
		Chart:   report.Plot(series, ChartWidth, ChartHeight, ChartPadding),
	}
}

// UploadOutcome is what the upload view renders after an attempt.
type UploadOutcome struct {
	Result *model.UploadResult
	Rating rating.Label
	Notice string
	Err    error
}

// Upload forwards one file to the service. On failure the user stays on the
// upload view with a notice.
func (s *Service) Upload(ctx context.Context, up model.Upload) UploadOutcome {
	if up.Body == nil {
		return UploadOutcome{Notice: NoticeNoFile}
	}
	res, err := s.backend.UploadVideo(ctx, up)
	if err != nil {
		s.logger.Warn(ctx, "upload failed", logger.String("filename", up.Filename), logger.Error(err))
		return UploadOutcome{Notice: NoticeUploadFailed, Err: err}
	}
	s.logger.Info(ctx, "upload assessed",
		logger.String("filename", up.Filename),
		logger.Float64("score", res.Score),
		logger.Bool("flagged", res.Flagged()),
	)
	return UploadOutcome{Result: res, Rating: rating.For(res.Score)}
}

// Latest returns the most recent assessment.
func (s *Service) Latest(ctx context.Context) (*model.UploadResult, error) {
	return s.backend.LatestResult(ctx)
}

// Leaderboard returns the ranked entries.
func (s *Service) Leaderboard(ctx context.Context) ([]types.Entry, error) {
	return s.backend.Leaderboard(ctx)
}
