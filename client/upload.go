package client

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lglanville/gopreservica/internal/dcontext"
)

// Upload streams the package at fpath to the upload-package endpoint for
// targetRef. Note that a parent folder named inside the package's own XIP
// takes precedence over targetRef on the server side. Returns the response
// body (the repository's confirmation text) on success.
func (s *Session) Upload(ctx context.Context, fpath, targetRef string) (string, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return "", &IOError{Op: "Upload", Err: err}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", &IOError{Op: "Upload", Err: err}
	}

	endpoint := s.entityURL + "/structural-objects/" + targetRef + "/upload-package"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, f)
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("filename", filepath.Base(fpath))
	req.URL.RawQuery = q.Encode()
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	log := dcontext.GetLogger(ctx).WithField("path", fpath)
	log.Info("upload commencing")
	start := time.Now()
	resp, err := s.do(req)
	if err != nil {
		return "", &IOError{Op: "Upload", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &IOError{Op: "Upload", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Error("upload failed")
		return "", httpErrorFor("Upload", endpoint, resp)
	}
	log.WithField("duration", time.Since(start)).Info("upload complete")
	return string(body), nil
}

// IOError wraps a filesystem failure encountered while preparing or
// streaming an upload.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return "client: " + e.Op + ": " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }
