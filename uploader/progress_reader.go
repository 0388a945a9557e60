package uploader

import "io"

// progressReader reports each successful Read to a Progress tracker,
// serving as the S3 transfer manager's source of incremental progress
// since s3manager has no separate byte-count callback hook.
type progressReader struct {
	r        io.Reader
	progress *Progress
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.progress.Advance(int64(n))
	}
	return n, err
}
