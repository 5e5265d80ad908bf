package remote_test

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/gochamp/internal/adapters/remote"
	"github.com/okian/gochamp/internal/domain/model"
)

type receivedPart struct {
	name, filename, contentType, content string
}

type failingReader struct{ sent bool }

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("disk unplugged")
}

func uploadBytes(reg *prometheus.Registry) float64 {
	families, _ := reg.Gather()
	for _, f := range families {
		if f.GetName() == "gochamp_client_upload_bytes_total" {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestUploadVideo(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given an upload endpoint", t, func() {
		ctx := context.Background()
		status := http.StatusOK
		var parts []receivedPart
		var requests int

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			if status != http.StatusOK {
				w.WriteHeader(status)
				_, _ = io.WriteString(w, `{"detail":"File too large"}`)
				return
			}
			_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || r.URL.Path != remote.PathUpload {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			mr := multipart.NewReader(r.Body, params["boundary"])
			for {
				p, err := mr.NextPart()
				if err != nil {
					break
				}
				data, _ := io.ReadAll(p)
				parts = append(parts, receivedPart{p.FormName(), p.FileName(), p.Header.Get("Content-Type"), string(data)})
			}
			_, _ = io.WriteString(w, `{"score":77,"cheat_detected":0,"analysis":{"overall_rating":"Good","recommendations":["Keep it up"]},"video_info":{"frame_count":120,"duration":4,"fps":30}}`)
		}))
		tr := &http.Transport{}
		defer tr.CloseIdleConnections()
		defer srv.Close()

		c, reg := newTestClient(srv.URL, remote.WithHTTPClient(&http.Client{Transport: tr}))

		Convey("When a file is uploaded", func() {
			res, err := c.UploadVideo(ctx, model.Upload{
				Filename:    `jump "final".mp4`,
				ContentType: "video/mp4",
				Body:        strings.NewReader("frame-data"),
			})

			Convey("Then exactly one part named file carries the content", func() {
				So(err, ShouldBeNil)
				So(requests, ShouldEqual, 1)
				So(parts, ShouldResemble, []receivedPart{{"file", `jump "final".mp4`, "video/mp4", "frame-data"}})
				So(res.Score, ShouldEqual, 77)
				So(res.Analysis.Recommendations, ShouldResemble, []string{"Keep it up"})
				So(uploadBytes(reg), ShouldEqual, float64(len("frame-data")))
			})
		})

		Convey("When no content type is declared", func() {
			_, err := c.UploadVideo(ctx, model.Upload{Filename: "clip", Body: strings.NewReader("x")})

			Convey("Then the generic binary type is sent", func() {
				So(err, ShouldBeNil)
				So(parts[0].contentType, ShouldEqual, model.DefaultContentType)
			})
		})

		Convey("When the service rejects the payload", func() {
			status = http.StatusRequestEntityTooLarge
			res, err := c.UploadVideo(ctx, model.Upload{Filename: "big.mp4", Body: strings.NewReader("too big")})

			Convey("Then the call fails with no result", func() {
				So(res, ShouldBeNil)
				So(errors.Is(err, remote.ErrRequestFailed), ShouldBeTrue)
				var rf *remote.RequestFailedError
				So(errors.As(err, &rf), ShouldBeTrue)
				So(rf.Status, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})

		Convey("When the source fails mid-stream", func() {
			res, err := c.UploadVideo(ctx, model.Upload{Filename: "clip.mp4", Body: &failingReader{}})

			Convey("Then the call fails", func() {
				So(res, ShouldBeNil)
				So(errors.Is(err, remote.ErrRequestFailed), ShouldBeTrue)
			})
		})

		Convey("When the upload has no body", func() {
			res, err := c.UploadVideo(ctx, model.Upload{Filename: "clip.mp4"})

			Convey("Then nothing is sent", func() {
				So(res, ShouldBeNil)
				So(errors.Is(err, remote.ErrRequestFailed), ShouldBeTrue)
				So(requests, ShouldEqual, 0)
			})
		})
	})
}

func TestOpenFile(t *testing.T) {
	Convey("Given files on disk", t, func() {
		dir := t.TempDir()

		Convey("The extension decides the content type", func() {
			path := filepath.Join(dir, "thumb.png")
			So(os.WriteFile(path, []byte("not really a png"), 0o600), ShouldBeNil)

			up, closer, err := remote.OpenFile(path)
			So(err, ShouldBeNil)
			defer func() { _ = closer.Close() }()
			So(up.Filename, ShouldEqual, "thumb.png")
			So(up.ContentType, ShouldEqual, "image/png")
		})

		Convey("Without an extension the content is sniffed and rewound", func() {
			path := filepath.Join(dir, "report")
			So(os.WriteFile(path, []byte("%PDF-1.4 body"), 0o600), ShouldBeNil)

			up, closer, err := remote.OpenFile(path)
			So(err, ShouldBeNil)
			defer func() { _ = closer.Close() }()
			So(up.ContentType, ShouldEqual, "application/pdf")
			data, err := io.ReadAll(up.Body)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "%PDF-1.4 body")
		})

		Convey("Directories and missing files are rejected", func() {
			_, _, err := remote.OpenFile(dir)
			So(err, ShouldNotBeNil)
			_, _, err = remote.OpenFile(filepath.Join(dir, "missing.mp4"))
			So(err, ShouldNotBeNil)
		})
	})
}
