// Package web serves the GoChamp frontend: login, dashboard, reports and
// upload views rendered on the server from the UI flows.
package web

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/gochamp/internal/adapters/http/swagger"
	service "github.com/okian/gochamp/internal/app"
	"github.com/okian/gochamp/internal/domain/model"
	"github.com/okian/gochamp/pkg/logger"
	"github.com/okian/gochamp/pkg/metrics"
)

// Error constants.
var (
	ErrRender = errors.New("render view failed")
)

// Route paths served in addition to the flow routes.
const (
	PathLogin  = "/login"
	PathLogout = "/logout"
	PathHealth = "/healthz"
	PathStatic = "/static/"
)

const (
	formFile            = "file"
	formEmail           = "email"
	formPassword        = "password"
	defaultUploadMemory = 32 << 20
)

// Flows are the UI flows the views render.
type Flows interface {
	Login(ctx context.Context, creds model.Credentials) service.LoginOutcome
	Dashboard(ctx context.Context) service.DashboardView
	Reports(ctx context.Context) service.ReportView
	Upload(ctx context.Context, up model.Upload) service.UploadOutcome
}

// Server wires HTTP routes for the frontend.
type Server struct {
	flows        Flows
	views        *views
	logger       logger.Logger
	uploadMemory int64
	secure       bool
}

// Option customises the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l.Named("web")
		}
	}
}

// WithUploadMemory bounds how much of an upload form is buffered in memory
// before spilling to temporary files.
func WithUploadMemory(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.uploadMemory = n
		}
	}
}

// WithSecureCookies marks session cookies Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secure = secure }
}

// NewServer creates the frontend server over flows.
func NewServer(flows Flows, opts ...Option) (*Server, error) {
	v, err := parseViews()
	if err != nil {
		return nil, err
	}
	s := &Server{
		flows:        flows,
		views:        v,
		logger:       logger.Nop(),
		uploadMemory: defaultUploadMemory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register attaches all routes to r.
func (s *Server) Register(ctx context.Context, r *mux.Router) {
	r.Use(MetricsMiddleware)

	r.HandleFunc(service.RouteLogin, s.handleLoginView).Methods(http.MethodGet).Name("login-view")
	r.HandleFunc(PathLogin, s.handleLogin).Methods(http.MethodPost).Name("login")
	r.HandleFunc(PathLogout, s.handleLogout).Methods(http.MethodPost).Name("logout")
	r.HandleFunc(service.RouteDashboard, s.handleDashboard).Methods(http.MethodGet).Name("dashboard")
	r.HandleFunc(service.RouteReports, s.handleReports).Methods(http.MethodGet).Name("reports")
	r.HandleFunc(service.RouteUpload, s.handleUploadView).Methods(http.MethodGet).Name("upload-view")
	r.HandleFunc(service.RouteUpload, s.handleUpload).Methods(http.MethodPost).Name("upload")
	r.Handle(PathHealth, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet).Name("healthz")
	r.PathPrefix(PathStatic).Handler(http.StripPrefix(PathStatic, http.FileServer(http.FS(staticFS())))).Name("static")

	swagger.Register(ctx, r)
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := mux.NewRouter()
	s.Register(ctx, r)
	return r
}

func (s *Server) handleLoginView(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, viewLogin, loginPage{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, viewLogin, loginPage{Alert: service.AlertMissingFields})
		return
	}
	creds := model.Credentials{
		Email:    strings.TrimSpace(r.PostForm.Get(formEmail)),
		Password: r.PostForm.Get(formPassword),
	}
	out := s.flows.Login(r.Context(), creds)
	if out.Navigate == "" {
		status := http.StatusUnauthorized
		if out.Err == nil {
			status = http.StatusBadRequest
		}
		s.render(w, r, status, viewLogin, loginPage{Alert: out.Alert, Email: creds.Email})
		return
	}
	var token string
	if out.Session != nil {
		token = out.Session.Session.BearerToken()
	}
	setSession(w, creds.Email, token, s.secure)
	http.Redirect(w, r, out.Navigate, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSession(w, s.secure)
	http.Redirect(w, r, service.RouteLogin, http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := s.flows.Dashboard(r.Context())
	status := http.StatusOK
	if view.Err != nil {
		status = http.StatusBadGateway
	}
	s.render(w, r, status, viewDashboard, view)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, viewReports, newReportPage(s.flows.Reports(r.Context())))
}

func (s *Server) handleUploadView(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, viewUpload, service.UploadOutcome{})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.uploadMemory); err != nil {
		s.logger.Warn(r.Context(), "invalid upload form", logger.Error(err))
		s.render(w, r, http.StatusBadRequest, viewUpload, service.UploadOutcome{Notice: service.NoticeNoFile})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(formFile)
	if err != nil {
		s.render(w, r, http.StatusBadRequest, viewUpload, service.UploadOutcome{Notice: service.NoticeNoFile})
		return
	}
	defer func() { _ = file.Close() }()

	out := s.flows.Upload(r.Context(), model.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	status := http.StatusOK
	if out.Err != nil {
		status = http.StatusBadGateway
	}
	s.render(w, r, status, viewUpload, out)
}

// staticFS exposes the embedded static/ directory.
func staticFS() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		return embedded
	}
	return sub
}
