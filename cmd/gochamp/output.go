package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	service "github.com/okian/gochamp/internal/app"
	"github.com/okian/gochamp/internal/domain/model"
	"github.com/okian/gochamp/internal/domain/rating"
	"github.com/okian/gochamp/internal/domain/types"
)

const cardsPerRow = 3

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(26)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	bandColors  = map[rating.Label]lipgloss.Color{
		rating.Elite:            "135",
		rating.Excellent:        "42",
		rating.Good:             "33",
		rating.Average:          "214",
		rating.NeedsImprovement: "196",
		rating.NotAssessed:      "245",
	}
)

func bandStyle(l rating.Label) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(bandColors[l])
}

// cardOut is the serialised form of a profile card.
type cardOut struct {
	ID     model.AthleteID `json:"id" yaml:"id"`
	Name   string          `json:"name" yaml:"name"`
	Age    *int            `json:"age,omitempty" yaml:"age,omitempty"`
	Score  *float64        `json:"latest_score,omitempty" yaml:"latest_score,omitempty"`
	Rating rating.Label    `json:"rating" yaml:"rating"`
	Sport  string          `json:"sport,omitempty" yaml:"sport,omitempty"`
}

type uploadOut struct {
	File   string              `json:"file" yaml:"file"`
	Rating rating.Label        `json:"rating,omitempty" yaml:"rating,omitempty"`
	Result *model.UploadResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string              `json:"error,omitempty" yaml:"error,omitempty"`
}

type reportOut struct {
	Series  []model.ScorePoint `json:"series" yaml:"series"`
	Average float64            `json:"average" yaml:"average"`
	Min     float64            `json:"min" yaml:"min"`
	Max     float64            `json:"max" yaml:"max"`
	Trend   float64            `json:"trend" yaml:"trend"`
	Rating  rating.Label       `json:"rating" yaml:"rating"`
}

type sessionOut struct {
	Session model.Session `json:"session" yaml:"session"`
	Token   *tokenClaims  `json:"token,omitempty" yaml:"token,omitempty"`
}

// encode writes v as JSON or YAML. It reports false for table output.
func (c *cli) encode(v any) (bool, error) {
	switch c.output {
	case outputJSON:
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(c.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// printValue encodes v, or prints text for table output.
func (c *cli) printValue(v any, text string) error {
	if done, err := c.encode(v); done {
		return err
	}
	_, err := fmt.Fprintln(c.out, text)
	return err
}

func (c *cli) printCards(cards []service.Card) error {
	out := make([]cardOut, 0, len(cards))
	for _, card := range cards {
		out = append(out, cardOut(card))
	}
	if done, err := c.encode(out); done {
		return err
	}
	if len(cards) == 0 {
		_, err := fmt.Fprintln(c.out, noticeStyle.Render("No athletes yet."))
		return err
	}

	rendered := make([]string, 0, len(cards))
	for _, card := range cards {
		lines := []string{titleStyle.Render(card.Name)}
		if card.Age != nil {
			lines = append(lines, fmt.Sprintf("Age: %d", *card.Age))
		}
		if card.Sport != "" {
			lines = append(lines, "Sport: "+card.Sport)
		}
		if card.Score != nil {
			lines = append(lines, fmt.Sprintf("Score: %.1f", *card.Score))
		}
		lines = append(lines, bandStyle(card.Rating).Render(string(card.Rating)))
		rendered = append(rendered, cardStyle.Render(strings.Join(lines, "\n")))
	}
	for start := 0; start < len(rendered); start += cardsPerRow {
		end := min(start+cardsPerRow, len(rendered))
		if _, err := fmt.Fprintln(c.out, lipgloss.JoinHorizontal(lipgloss.Top, rendered[start:end]...)); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) printLeaderboard(entries []types.Entry) error {
	if done, err := c.encode(entries); done {
		return err
	}
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("%-5s %-24s %6s", "Rank", "Name", "Score")))
	for _, e := range entries {
		fmt.Fprintf(&b, "%-5d %-24s %6.1f\n", e.Rank, e.Name, e.Score)
	}
	_, err := fmt.Fprint(c.out, b.String())
	return err
}

func (c *cli) printResult(name string, res *model.UploadResult) error {
	if done, err := c.encode(res); done {
		return err
	}
	_, err := fmt.Fprintln(c.out, cardStyle.Width(40).Render(resultText(name, res)))
	return err
}

func resultText(name string, res *model.UploadResult) string {
	label := rating.For(res.Score)
	lines := []string{
		titleStyle.Render(name),
		fmt.Sprintf("Score: %.1f %s", res.Score, bandStyle(label).Render(string(label))),
	}
	if res.Flagged() {
		lines = append(lines, noticeStyle.Render("Flagged for review"))
	}
	a := res.Analysis
	lines = append(lines, fmt.Sprintf("Form %.1f  Consistency %.1f", a.FormScore, a.ConsistencyScore))
	lines = append(lines, fmt.Sprintf("Power %.1f  Technique %.1f", a.PowerScore, a.TechniqueScore))
	for _, r := range a.Recommendations {
		lines = append(lines, "- "+r)
	}
	return strings.Join(lines, "\n")
}

func (c *cli) printUploads(files []string, outcomes []service.UploadOutcome) error {
	out := make([]uploadOut, len(files))
	for i, o := range outcomes {
		out[i] = uploadOut{File: files[i], Rating: o.Rating, Result: o.Result}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	if done, err := c.encode(out); done {
		return err
	}
	for i, o := range outcomes {
		if o.Result == nil {
			if _, err := fmt.Fprintln(c.out, noticeStyle.Render(files[i]+": "+o.Notice)); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(c.out, cardStyle.Width(40).Render(resultText(files[i], o.Result))); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) printReport(v service.ReportView) error {
	out := reportOut{
		Series:  v.Series,
		Average: v.Summary.Average,
		Min:     v.Summary.Min,
		Max:     v.Summary.Max,
		Trend:   v.Summary.Trend,
		Rating:  v.Summary.Label,
	}
	if done, err := c.encode(out); done {
		return err
	}
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render("Performance Report"))
	for _, p := range v.Series {
		fmt.Fprintf(&b, "%s  %5.1f  %s\n", p.Date, p.Score, strings.Repeat("█", int(p.Score/5)))
	}
	fmt.Fprintf(&b, "Average %.1f  Best %.1f  Lowest %.1f  Trend %+.1f  %s\n",
		v.Summary.Average, v.Summary.Max, v.Summary.Min, v.Summary.Trend,
		bandStyle(v.Summary.Label).Render(string(v.Summary.Label)))
	_, err := fmt.Fprint(c.out, b.String())
	return err
}

// printSession writes the login body unmodified for JSON output.
func (c *cli) printSession(res *model.SessionResult) error {
	if c.output == outputJSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, res.Raw, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(c.out)
		return err
	}
	token := res.Session.BearerToken()
	out := sessionOut{Session: res.Session, Token: inspectToken(token)}
	if done, err := c.encode(out); done {
		return err
	}

	lines := []string{titleStyle.Render("Logged in")}
	if res.Session.Message != "" {
		lines = append(lines, res.Session.Message)
	}
	if token != "" {
		lines = append(lines, "Token: "+token)
	}
	if out.Token != nil {
		if out.Token.Subject != "" {
			lines = append(lines, "Subject: "+out.Token.Subject)
		}
		if out.Token.ExpiresAt != nil {
			lines = append(lines, "Expires: "+out.Token.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		}
	}
	_, err := fmt.Fprintln(c.out, strings.Join(lines, "\n"))
	return err
}
