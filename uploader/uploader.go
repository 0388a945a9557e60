// Package uploader drives the bulk transfer of built packages to an
// object store, with a bounded worker pool and a shared, lock-guarded
// progress tracker.
package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lglanville/gopreservica/internal/dcontext"
)

// maxConcurrentUploads caps in-flight transfers; AWS S3 has diminishing
// returns (and occasional throttling) past this for typical package sizes.
const maxConcurrentUploads = 5

// multipartThreshold is the object size above which the transfer manager
// switches to a multipart upload. s3manager.Uploader triggers multipart
// whenever a body exceeds its configured PartSize (default 5 MiB), so
// PartSize itself must be pinned to this threshold for files under it to
// go through a single PUT.
const multipartThreshold = 1 << 30 // 1 GiB

// multipartChunkSize is the part size used once an upload has actually
// crossed multipartThreshold.
const multipartChunkSize = 64 * 1024 * 1024 // 64 MiB

// Result records the outcome of one file's upload attempt.
type Result struct {
	Path          string
	Key           string
	Err           error
	SourceDeleted bool
}

// Uploader uploads .zip packages from a directory to one S3 bucket,
// attaching the service-required object metadata {key, name, size} to
// each.
type Uploader struct {
	bucket       string
	client       *s3manager.Uploader
	progress     *Progress
	deleteSource bool
}

// New builds an Uploader against bucket using sess, rendering progress via
// render (pass nil to disable status output).
func New(sess *session.Session, bucket string, deleteSource bool, render func(string)) *Uploader {
	return &Uploader{
		bucket: bucket,
		client: s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
			u.Concurrency = 1 // multipart parts for a single object stay sequential; fan-out is across objects
		}),
		progress:     NewProgress(render),
		deleteSource: deleteSource,
	}
}

// Progress returns the uploader's shared progress tracker.
func (u *Uploader) Progress() *Progress { return u.progress }

// UploadDir uploads every *.zip file directly inside dir, bounding
// concurrency to maxConcurrentUploads. It returns one Result per file
// attempted, in file-discovery order, and does not stop on individual
// failures: every file is attempted regardless of earlier outcomes.
func (u *Uploader) UploadDir(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("uploader: read %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUploads)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			// uploadOne never returns an error: a failed transfer is
			// isolated to its own Result, not propagated to siblings.
			results[i] = u.uploadOne(gctx, path)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (u *Uploader) uploadOne(ctx context.Context, path string) Result {
	log := dcontext.GetLogger(ctx).WithField("path", path)

	info, err := os.Stat(path)
	if err != nil {
		log.WithError(err).Error("upload failed")
		u.progress.Fail()
		return Result{Path: path, Err: err}
	}
	u.progress.TrackFile(info.Size())

	f, err := os.Open(path)
	if err != nil {
		log.WithError(err).Error("upload failed")
		u.progress.Fail()
		return Result{Path: path, Err: err}
	}
	defer f.Close()

	key := uuid.NewString()
	sizeKB := strconv.FormatInt((info.Size()+1023)/1024, 10)
	reader := &progressReader{r: f, progress: u.progress}

	input := &s3manager.UploadInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   reader,
		Metadata: map[string]*string{
			"key":  aws.String(key),
			"name": aws.String(filepath.Base(path)),
			"size": aws.String(sizeKB),
		},
	}

	log.Info("upload commencing")
	_, err = u.client.UploadWithContext(ctx, input, func(up *s3manager.Uploader) {
		up.PartSize = multipartThreshold
		if info.Size() > multipartThreshold {
			up.PartSize = multipartChunkSize
		}
	})
	if err != nil {
		if reqErr, ok := err.(awserr.RequestFailure); ok {
			log.WithError(err).WithField("requestID", reqErr.RequestID()).Error("upload failed")
		} else {
			log.WithError(err).Error("upload failed")
		}
		u.progress.Fail()
		return Result{Path: path, Key: key, Err: &UploadError{Path: path, Err: err}}
	}
	log.Info("upload complete")
	u.progress.Complete()

	result := Result{Path: path, Key: key}
	if u.deleteSource {
		if err := os.Remove(path); err != nil {
			log.WithError(err).Error("unable to delete source package")
		} else {
			result.SourceDeleted = true
		}
	}
	return result
}

// UploadError wraps an s3manager failure with the local path that failed,
// since the transfer manager's own error doesn't carry it.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string { return fmt.Sprintf("uploader: %s: %v", e.Path, e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }
