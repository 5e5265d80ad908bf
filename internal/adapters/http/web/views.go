package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	service "github.com/okian/gochamp/internal/app"
	"github.com/okian/gochamp/internal/domain/rating"
	"github.com/okian/gochamp/internal/domain/report"
	"github.com/okian/gochamp/pkg/logger"
)

//go:embed templates/*.html static/*
var embedded embed.FS

// AppTitle is shown in the navbar and page titles.
const AppTitle = "Sports Talent App"

const (
	viewLogin     = "login"
	viewDashboard = "dashboard"
	viewReports   = "reports"
	viewUpload    = "upload"
)

type views struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"score": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"band": func(l rating.Label) string {
		return strings.ToLower(strings.ReplaceAll(string(l), " ", "-"))
	},
	"signed": func(v float64) string { return fmt.Sprintf("%+.1f", v) },
}

func parseViews() (*views, error) {
	v := &views{pages: map[string]*template.Template{}}
	for _, name := range []string{viewLogin, viewDashboard, viewReports, viewUpload} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(embedded, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRender, name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// page is the data every view receives.
type page struct {
	Title  string
	Active string
	User   string
	Data   any
}

type loginPage struct {
	Alert string
	Email string
}

type reportPage struct {
	service.ReportView
	Polyline string
}

func newReportPage(v service.ReportView) reportPage {
	return reportPage{ReportView: v, Polyline: v.Chart.Polyline()}
}

// render executes the view into a buffer first so a template failure never
// leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	p := page{Title: AppTitle, Active: name, User: signedInAs(r), Data: data}
	if err := s.views.pages[name].Execute(&buf, p); err != nil {
		s.logger.Error(r.Context(), "render failed", logger.String("view", name), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// axisTicks are the y-axis labels drawn on the chart.
var axisTicks = []float64{0, 25, 50, 75, 100}

// Ticks returns the y-axis labels with their chart coordinates.
func (p reportPage) Ticks() []report.Point {
	c := p.Chart
	innerH := float64(c.Height - 2*c.Padding)
	out := make([]report.Point, 0, len(axisTicks))
	for _, t := range axisTicks {
		out = append(out, report.Point{X: float64(c.Padding), Y: float64(c.Padding) + innerH*(1-t/100), Score: t})
	}
	return out
}
