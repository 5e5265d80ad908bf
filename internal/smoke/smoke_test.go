package smoke_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gochamp/internal/adapters/remote"
	"github.com/okian/gochamp/internal/domain/model"
	"github.com/okian/gochamp/internal/domain/types"
	"github.com/okian/gochamp/internal/smoke"
	"github.com/okian/gochamp/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

type fakeService struct {
	replies  map[string]string
	status   map[string]int
	listings atomic.Int32
}

func newFakeService() *fakeService {
	return &fakeService{
		replies: map[string]string{
			remote.PathRoot:        `{"message":"Welcome to GoChamp API"}`,
			remote.PathLogin:       `{"success":true,"access_token":"jwt"}`,
			remote.PathAthletes:    `{"athletes":[{"id":1,"name":"Alex Runner","sport":"Running"}]}`,
			remote.PathLeaderboard: `{"items":[{"rank":1,"name":"Alex Runner","score":92},{"rank":2,"name":"Jamie Jumper","score":88},{"rank":3,"name":"Sam Sprinter","score":85}]}`,
			remote.PathLatest:      `{"detail":"No results found"}`,
		},
		status: map[string]int{remote.PathLatest: http.StatusNotFound},
	}
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == remote.PathAthletes {
		f.listings.Add(1)
	}
	reply, ok := f.replies[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if code := f.status[r.URL.Path]; code != 0 {
		w.WriteHeader(code)
	}
	_, _ = io.WriteString(w, reply)
}

func TestRun(t *testing.T) {
	Convey("Given a healthy service", t, func() {
		ctx := context.Background()
		svc := newFakeService()
		srv := httptest.NewServer(svc)
		defer srv.Close()
		client, err := remote.New(srv.URL)
		So(err, ShouldBeNil)
		cfg := smoke.Config{Probes: 12, Workers: 4, Timeout: 10 * time.Second}

		Convey("When the check runs", func() {
			stats, err := smoke.Run(ctx, client, cfg)

			Convey("Then every probe is sent and the run passes", func() {
				So(err, ShouldBeNil)
				So(stats.Message, ShouldEqual, "Welcome to GoChamp API")
				So(stats.Athletes, ShouldEqual, 1)
				So(stats.ProbesSent, ShouldEqual, 12)
				So(stats.ProbesSucceeded, ShouldEqual, 12)
				So(svc.listings.Load(), ShouldEqual, 13)
				So(stats.LeaderboardEntries, ShouldEqual, 3)
				So(stats.LatestAvailable, ShouldBeFalse)
				So(stats.Duration, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When credentials are supplied", func() {
			cfg.Credentials = &model.Credentials{Email: "demo@gochamp.com", Password: "demo123"}
			stats, err := smoke.Run(ctx, client, cfg)

			So(err, ShouldBeNil)
			So(stats.LoggedIn, ShouldBeTrue)
		})

		Convey("When the login is rejected", func() {
			svc.status[remote.PathLogin] = http.StatusUnauthorized
			cfg.Credentials = &model.Credentials{Email: "demo@gochamp.com", Password: "bad"}
			_, err := smoke.Run(ctx, client, cfg)

			So(errors.Is(err, smoke.ErrLogin), ShouldBeTrue)
			So(errors.Is(err, remote.ErrRequestFailed), ShouldBeTrue)
		})

		Convey("When the leaderboard is out of order", func() {
			svc.replies[remote.PathLeaderboard] = `{"items":[{"rank":1,"name":"A","score":80},{"rank":2,"name":"B","score":90}]}`
			_, err := smoke.Run(ctx, client, cfg)

			So(errors.Is(err, smoke.ErrInconsistency), ShouldBeTrue)
		})

		Convey("When the listing fails", func() {
			svc.status[remote.PathAthletes] = http.StatusInternalServerError
			stats, err := smoke.Run(ctx, client, cfg)

			So(errors.Is(err, smoke.ErrListing), ShouldBeTrue)
			So(stats.ProbesSent, ShouldEqual, 0)
		})
	})

	Convey("Given an unreachable service", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()
		client, err := remote.New(base)
		So(err, ShouldBeNil)

		_, err = smoke.Run(context.Background(), client, smoke.Config{Probes: 1})
		So(errors.Is(err, smoke.ErrUnreachable), ShouldBeTrue)
	})
}

func TestVerifyLeaderboard(t *testing.T) {
	Convey("Given leaderboards", t, func() {
		So(smoke.VerifyLeaderboard(nil), ShouldBeNil)
		So(smoke.VerifyLeaderboard([]types.Entry{{Rank: 1, Score: 92}, {Rank: 2, Score: 88}}), ShouldBeNil)

		Convey("Ties may share a rank", func() {
			So(smoke.VerifyLeaderboard([]types.Entry{{Rank: 1, Score: 90}, {Rank: 1, Score: 90}, {Rank: 3, Score: 70}}), ShouldBeNil)
		})

		Convey("Inconsistent boards are flagged", func() {
			for _, board := range [][]types.Entry{
				{{Rank: 0, Score: 10}},
				{{Rank: 1, Score: 80}, {Rank: 2, Score: 90}},
				{{Rank: 2, Score: 90}, {Rank: 1, Score: 80}},
				{{Rank: 1, Score: 90}, {Rank: 1, Score: 80}},
			} {
				So(errors.Is(smoke.VerifyLeaderboard(board), smoke.ErrInconsistency), ShouldBeTrue)
			}
		})
	})
}
