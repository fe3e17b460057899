// Package bucket uploads asset data to the platform's storage bucket through
// short-lived signed URLs handed out by the API.
package bucket

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/facebookgo/httpcontrol"
	"github.com/go-resty/resty/v2"
	"github.com/rcrowley/go-metrics"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/labelforge/labelforge-go/graphql"
)

// Upload is one object to PUT behind a signed URL. Either Path or Data is
// set, never both.
type Upload struct {
	URL         string
	Path        string
	Data        []byte
	ContentType string
}

type Store struct {
	exec        graphql.Executor
	rest        *resty.Client
	concurrency int
	progress    bool

	bytesUp   metrics.Meter
	uploadOK  metrics.Counter
	uploadErr metrics.Counter
}

// progressThreshold is the file size above which a lone local upload gets a
// terminal progress bar instead of going through the silent pool.
var progressThreshold int64 = 32 << 20

func NewStore(exec graphql.Executor, concurrency int) *Store {
	if concurrency < 1 {
		concurrency = 1
	}
	transport := &httpcontrol.Transport{
		RequestTimeout:      5 * time.Minute,
		DisableKeepAlives:   false,
		MaxIdleConnsPerHost: concurrency,
		MaxTries:            3,
	}
	return &Store{
		exec:        exec,
		rest:        resty.NewWithClient(&http.Client{Transport: transport}),
		concurrency: concurrency,
		bytesUp:     metrics.GetOrRegisterMeter("bucket.upload.bytes", metrics.DefaultRegistry),
		uploadOK:    metrics.GetOrRegisterCounter("bucket.upload.ok", metrics.DefaultRegistry),
		uploadErr:   metrics.GetOrRegisterCounter("bucket.upload.errors", metrics.DefaultRegistry),
	}
}

// EnableProgress lets UploadAll show a progress bar for large single-file
// uploads.
func (s *Store) EnableProgress(enabled bool) {
	s.progress = enabled
}

// UniqueID returns a fresh client-side asset identifier.
func (s *Store) UniqueID() string {
	return uuid.NewV4().String()
}

// Stats reports uploads done, uploads failed and mean throughput since the
// process started.
func (s *Store) Stats() (ok, failed int64, bytesPerSec float64) {
	return s.uploadOK.Count(), s.uploadErr.Count(), s.bytesUp.RateMean()
}

// RequestSignedURLs asks the API for one signed upload URL per file path.
func (s *Store) RequestSignedURLs(ctx context.Context, filePaths []string) ([]string, error) {
	var payload struct {
		URLs []string `json:"urls"`
	}
	vars := map[string]interface{}{"filePaths": filePaths}
	if err := s.exec.Execute(ctx, graphql.CreateUploadBucketSignedURLs, vars, &payload); err != nil {
		return nil, fmt.Errorf("request signed urls: %w", err)
	}
	if len(payload.URLs) != len(filePaths) {
		return nil, fmt.Errorf("requested %d signed urls, got %d", len(filePaths), len(payload.URLs))
	}
	return payload.URLs, nil
}

// UploadAll PUTs every upload through a bounded worker pool and returns the
// first error encountered.
func (s *Store) UploadAll(ctx context.Context, uploads []Upload) error {
	if len(uploads) == 0 {
		return nil
	}

	if s.progress && len(uploads) == 1 && uploads[0].Path != "" {
		if info, err := os.Stat(uploads[0].Path); err == nil && info.Size() >= progressThreshold {
			return s.UploadFileWithProgress(ctx, uploads[0].URL, uploads[0].Path, uploads[0].ContentType)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Upload)
	errs := make(chan error, s.concurrency)
	var wg sync.WaitGroup

	workers := s.concurrency
	if workers > len(uploads) {
		workers = len(uploads)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				if err := s.put(ctx, u); err != nil {
					select {
					case errs <- err:
					default:
					}
					cancel()
					return
				}
			}
		}()
	}

loop:
	for _, u := range uploads {
		select {
		case <-ctx.Done():
			break loop
		case jobs <- u:
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

func (s *Store) put(ctx context.Context, u Upload) error {
	data := u.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(u.Path)
		if err != nil {
			s.uploadErr.Inc(1)
			return fmt.Errorf("read upload source: %w", err)
		}
	}

	contentType := u.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	resp, err := s.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put(u.URL)
	if err != nil {
		s.uploadErr.Inc(1)
		return fmt.Errorf("upload to bucket: %w", err)
	}
	if resp.IsError() {
		s.uploadErr.Inc(1)
		return fmt.Errorf("bucket returned %s", resp.Status())
	}

	s.uploadOK.Inc(1)
	s.bytesUp.Mark(int64(len(data)))
	log.WithFields(log.Fields{"bytes": len(data), "type": contentType}).Debug("uploaded object")
	return nil
}

// UploadFileWithProgress streams one local file to its signed URL with a
// terminal progress bar. Meant for large videos driven from the CLI.
func (s *Store) UploadFileWithProgress(ctx context.Context, url, path, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat upload source: %w", err)
	}

	bar := pb.Full.Start64(info.Size())
	defer bar.Finish()
	reader := bar.NewProxyReader(f)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, reader)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = info.Size()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.rest.GetClient().Do(req)
	if err != nil {
		s.uploadErr.Inc(1)
		return fmt.Errorf("upload to bucket: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.uploadErr.Inc(1)
		return fmt.Errorf("bucket returned %s", resp.Status)
	}

	s.uploadOK.Inc(1)
	s.bytesUp.Mark(info.Size())
	return nil
}
