package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"github.com/okian/gochamp/internal/adapters/remote"
)

type fakeService struct {
	replies map[string]string
	status  map[string]int
	uploads atomic.Int32
	boards  atomic.Int32
}

func newFakeService() *fakeService {
	return &fakeService{
		replies: map[string]string{
			remote.PathRoot:        `{"message":"Welcome to GoChamp API"}`,
			remote.PathLogin:       `{"token":"t1"}`,
			remote.PathAthletes:    `[{"id":1,"name":"A","age":20,"latest_score":88}]`,
			remote.PathLeaderboard: `{"items":[{"rank":1,"name":"A","score":88},{"rank":2,"name":"B","score":71}]}`,
			remote.PathLatest:      `{"score":64,"cheat_detected":0,"analysis":{"overall_rating":"Average"}}`,
			remote.PathUpload:      `{"score":91,"cheat_detected":0,"analysis":{"overall_rating":"Elite","recommendations":["Keep it up"]}}`,
			remote.PathSendOTP:     `{"message":"OTP sent successfully","phone_number":"+15550100"}`,
			remote.PathVerifyToken: `{"valid":true,"phone_number":"+15550100"}`,
		},
		status: map[string]int{},
	}
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case remote.PathUpload:
		f.uploads.Add(1)
	case remote.PathLeaderboard:
		f.boards.Add(1)
	}
	reply, ok := f.replies[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = io.Copy(io.Discard, r.Body)
	if code := f.status[r.URL.Path]; code != 0 {
		w.WriteHeader(code)
	}
	_, _ = io.WriteString(w, reply)
}

// run executes the CLI and returns stdout and the error.
func run(stdin string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	convey.Convey("Given the CLI against a fake service", t, func() {
		svc := newFakeService()
		srv := httptest.NewServer(svc)
		defer srv.Close()
		api := "--api=" + srv.URL

		convey.Convey("login prints the session", func() {
			out, err := run("", "login", api, "--email", "demo@gochamp.com", "--password", "demo123")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Token: t1")
		})

		convey.Convey("login reads the password from stdin when not on a terminal", func() {
			out, err := run("demo123\n", "login", api, "--email", "demo@gochamp.com", "-o", "json")
			convey.So(err, convey.ShouldBeNil)
			convey.So(strings.TrimSpace(out), convey.ShouldEqual, "{\n  \"token\": \"t1\"\n}")
		})

		convey.Convey("login shows JWT claims", func() {
			token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "demo@gochamp.com", "exp": 4102444800}).SignedString([]byte("k"))
			svc.replies[remote.PathLogin] = `{"success":true,"access_token":"` + token + `"}`
			out, err := run("", "login", api, "--email", "demo@gochamp.com", "--password", "demo123")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Subject: demo@gochamp.com")
			convey.So(out, convey.ShouldContainSubstring, "Expires: 2100-01-01")
		})

		convey.Convey("a rejected login fails", func() {
			svc.status[remote.PathLogin] = http.StatusUnauthorized
			_, err := run("", "login", api, "--email", "demo@gochamp.com", "--password", "nope")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldStartWith, "Login failed")
		})

		convey.Convey("login requires an email", func() {
			_, err := run("", "login", api)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("athletes renders one card per athlete", func() {
			out, err := run("", "athletes", api)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Age: 20")
			convey.So(out, convey.ShouldContainSubstring, "Score: 88.0")
			convey.So(svc.boards.Load(), convey.ShouldEqual, int32(0))

			out, err = run("", "athletes", api, "-o", "json")
			convey.So(err, convey.ShouldBeNil)
			var cards []cardOut
			convey.So(json.Unmarshal([]byte(out), &cards), convey.ShouldBeNil)
			convey.So(cards, convey.ShouldHaveLength, 1)
			convey.So(cards[0].Name, convey.ShouldEqual, "A")
			convey.So(string(cards[0].Rating), convey.ShouldEqual, "Excellent")
		})

		convey.Convey("athletes without a score are shown as not assessed", func() {
			svc.replies[remote.PathAthletes] = `{"athletes":[{"id":"a-7","name":"Ravi","sport":"Sprint"}]}`
			out, err := run("", "athletes", api)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Not Assessed")
			convey.So(out, convey.ShouldNotContainSubstring, "Score:")

			out, err = run("", "athletes", api, "-o", "json")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldNotContainSubstring, "latest_score")
		})

		convey.Convey("a failed listing exits with an error", func() {
			svc.status[remote.PathAthletes] = http.StatusInternalServerError
			_, err := run("", "athletes", api)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("leaderboard prints yaml", func() {
			out, err := run("", "leaderboard", api, "-o", "yaml")
			convey.So(err, convey.ShouldBeNil)
			var entries []map[string]any
			convey.So(yaml.Unmarshal([]byte(out), &entries), convey.ShouldBeNil)
			convey.So(entries, convey.ShouldHaveLength, 2)
			convey.So(entries[1]["name"], convey.ShouldEqual, "B")
		})

		convey.Convey("latest and report print results", func() {
			out, err := run("", "latest", api)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Score: 64.0")

			out, err = run("", "report", api)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "2025-09-03")
			convey.So(out, convey.ShouldContainSubstring, "Average 85.0")
		})

		convey.Convey("upload sends each file once", func() {
			dir := t.TempDir()
			var files []string
			for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
				p := filepath.Join(dir, name)
				convey.So(os.WriteFile(p, []byte("frames-"+name), 0o600), convey.ShouldBeNil)
				files = append(files, p)
			}
			out, err := run("", append([]string{"upload", api, "-o", "json"}, files...)...)
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.uploads.Load(), convey.ShouldEqual, int32(3))

			var results []uploadOut
			convey.So(json.Unmarshal([]byte(out), &results), convey.ShouldBeNil)
			convey.So(results, convey.ShouldHaveLength, 3)
			convey.So(results[2].File, convey.ShouldEqual, files[2])
			convey.So(results[0].Result.Score, convey.ShouldEqual, 91.0)
		})

		convey.Convey("upload reports missing files and rejected uploads", func() {
			svc.status[remote.PathUpload] = http.StatusRequestEntityTooLarge
			p := filepath.Join(t.TempDir(), "big.mp4")
			convey.So(os.WriteFile(p, []byte("x"), 0o600), convey.ShouldBeNil)

			_, err := run("", "upload", api, p, filepath.Join(t.TempDir(), "missing.mp4"))
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "big.mp4")
			convey.So(err.Error(), convey.ShouldContainSubstring, "missing.mp4")
		})

		convey.Convey("otp and verify-token reach their endpoints", func() {
			out, err := run("", "otp", "send", api, "--phone", "+15550100")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "OTP sent successfully")

			_, err = run("", "otp", "send", api)
			convey.So(err, convey.ShouldNotBeNil)

			out, err = run("", "verify-token", api, "t1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "valid (+15550100)")
		})

		convey.Convey("smoke passes against a consistent service", func() {
			out, err := run("", "smoke", api, "--probes", "4", "--workers", "2")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "probes: 4/4 ok")
		})

		convey.Convey("an unknown output format is rejected", func() {
			_, err := run("", "athletes", api, "-o", "xml")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestVersion(t *testing.T) {
	convey.Convey("version prints the banner without contacting anything", t, func() {
		out, err := run("", "version")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "gochamp dev")
	})
}
