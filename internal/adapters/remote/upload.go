package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/gochamp/internal/domain/model"
)

// FieldFile is the multipart field the service reads the video from.
const FieldFile = "file"

// UploadVideo streams one file to the service as a single multipart part
// named "file" and returns the assessment. The attempt is atomic: there is
// no chunking, resume or progress reporting.
func (c *Client) UploadVideo(ctx context.Context, up model.Upload) (*model.UploadResult, error) {
	r := request{op: OpUploadVideo, method: http.MethodPost, path: PathUpload}
	if up.Body == nil {
		err := newFailure(r, 0, "", errMissingFile)
		c.logger.Warn(ctx, "upload rejected before dispatch")
		c.metrics.ObserveRemoteCall(r.op, true, 0)
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	src := &countingReader{r: up.Body}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pw.CloseWithError(writePart(mw, up, src))
	}()

	var res model.UploadResult
	r.body = pr
	r.contentType = mw.FormDataContentType()
	r.decode = func(raw json.RawMessage) error {
		res.Raw = append(json.RawMessage(nil), raw...)
		return decodeObject(&res)(raw)
	}
	err := c.do(ctx, r)

	// Unblock the writer if the transport stopped reading early.
	_ = pr.CloseWithError(io.ErrClosedPipe)
	<-done
	c.metrics.AddUploadBytes(src.n)

	if err != nil {
		return nil, err
	}
	return &res, nil
}

func writePart(mw *multipart.Writer, up model.Upload, src io.Reader) error {
	ct := up.ContentType
	if ct == "" {
		ct = model.DefaultContentType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="%s"`, FieldFile, escapeQuotes(up.Filename)))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// OpenFile prepares an Upload for the file at path. The content type comes
// from the extension, falling back to sniffing the first bytes. The caller
// closes the returned file once the upload has returned.
func OpenFile(path string) (model.Upload, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Upload{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return model.Upload{}, nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return model.Upload{}, nil, fmt.Errorf("%s: is a directory", path)
	}

	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct, err = sniff(f)
		if err != nil {
			_ = f.Close()
			return model.Upload{}, nil, err
		}
	}
	return model.Upload{Filename: filepath.Base(path), ContentType: ct, Body: f}, f, nil
}

func sniff(f *os.File) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if n == 0 {
		return model.DefaultContentType, nil
	}
	return http.DetectContentType(buf[:n]), nil
}
