package remote_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gochamp/internal/adapters/remote"
	"github.com/okian/gochamp/internal/domain/model"
)

func ptr[T any](v T) *T { return &v }

func TestListAthletes(t *testing.T) {
	Convey("Given an athletes endpoint", t, func() {
		ctx := context.Background()
		reply := `[]`
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.Method != http.MethodGet || r.URL.Path != remote.PathAthletes {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, reply)
		}))
		defer srv.Close()
		c, _ := newTestClient(srv.URL)

		Convey("An empty collection is an empty slice", func() {
			athletes, err := c.ListAthletes(ctx)
			So(err, ShouldBeNil)
			So(athletes, ShouldNotBeNil)
			So(athletes, ShouldBeEmpty)
		})

		Convey("A bare array decodes", func() {
			reply = `[{"id":1,"name":"A","age":20,"latest_score":88}]`
			athletes, err := c.ListAthletes(ctx)
			So(err, ShouldBeNil)
			want := []model.Athlete{{ID: "1", Name: "A", Age: ptr(20), LatestScore: ptr(88.0)}}
			So(cmp.Diff(want, athletes), ShouldBeEmpty)
		})

		Convey("The envelope decodes", func() {
			reply = `{"athletes":[{"id":"a-7","name":"Ravi","sport":"Sprint"},{"id":2,"name":"Mei","age":19,"latest_score":91.5}]}`
			athletes, err := c.ListAthletes(ctx)
			So(err, ShouldBeNil)
			want := []model.Athlete{
				{ID: "a-7", Name: "Ravi", Sport: "Sprint"},
				{ID: "2", Name: "Mei", Age: ptr(19), LatestScore: ptr(91.5)},
			}
			So(cmp.Diff(want, athletes), ShouldBeEmpty)
		})

		Convey("An empty envelope is an empty slice", func() {
			reply = `{"athletes":[]}`
			athletes, err := c.ListAthletes(ctx)
			So(err, ShouldBeNil)
			So(athletes, ShouldNotBeNil)
			So(athletes, ShouldBeEmpty)
		})

		Convey("Shapes outside the contract fail", func() {
			for _, body := range []string{
				`{"items":[]}`,
				`[{"name":"no id"}]`,
				`[{"id":true}]`,
				`42`,
				`null`,
			} {
				reply = body
				athletes, err := c.ListAthletes(ctx)
				So(athletes, ShouldBeNil)
				So(errors.Is(err, remote.ErrRequestFailed), ShouldBeTrue)
			}
		})

		Convey("Overlapping calls are each sent", func() {
			reply = `[{"id":1,"name":"A","age":20,"latest_score":88}]`
			const n = 8
			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := c.ListAthletes(ctx)
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}
			So(calls.Load(), ShouldEqual, n)
		})
	})
}
