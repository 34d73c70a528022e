// Package download streams remote model artifacts to local files and reports
// byte-level progress while doing so.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"astrod/internal/common/fsutil"
	"astrod/internal/events"
	"astrod/pkg/types"
)

const chunkSize = 32 << 10

// Config holds the collaborators of a Manager. All fields are optional.
type Config struct {
	// HTTPClient performs the GET. Defaults to a client without a timeout
	// that sends no Accept-Encoding; callers bound a transfer through the
	// context.
	HTTPClient *http.Client
	// Publisher receives download-progress events.
	Publisher events.Publisher
	Logger    *zerolog.Logger
}

// Manager downloads artifacts. It is safe for concurrent use as long as
// concurrent calls target different destinations.
type Manager struct {
	client    *http.Client
	publisher events.Publisher
	log       zerolog.Logger
}

func New(cfg Config) *Manager {
	m := &Manager{
		client:    cfg.HTTPClient,
		publisher: events.OrNoop(cfg.Publisher),
		log:       zerolog.Nop(),
	}
	if m.client == nil {
		m.client = defaultClient()
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "download").Logger()
	}
	return m
}

// defaultClient leaves the body encoding to the server so Content-Length
// describes the bytes written to disk.
func defaultClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DisableCompression = true
	return &http.Client{Transport: tr}
}

// task is one in-flight transfer.
type task struct {
	url        string
	dest       string
	total      int64
	downloaded int64
}

func (t *task) advance(n int) types.DownloadProgress {
	t.downloaded += int64(n)
	return types.DownloadProgress{Downloaded: t.downloaded, Total: t.total}
}

// Download fetches url into dest and returns dest. The parent directory is
// created if needed. When dest already exists it is returned as-is and no
// request is made; its contents are not checked. A failed transfer leaves the
// partial file in place.
func (m *Manager) Download(ctx context.Context, url, dest string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		return "", &IOError{Op: "create dir", Path: filepath.Dir(dest), Err: err}
	}
	if fsutil.PathExists(dest) {
		m.log.Info().Str("dest", dest).Msg("artifact already present, skipping download")
		downloadsTotal.WithLabelValues("cached").Inc()
		return dest, nil
	}

	t, err := m.transfer(ctx, url, dest)
	if err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		m.log.Error().Err(err).Str("url", url).Str("dest", dest).Msg("download failed")
		return "", err
	}
	downloadsTotal.WithLabelValues("ok").Inc()
	m.log.Info().Str("url", url).Str("dest", dest).Int64("bytes", t.downloaded).Msg("download complete")
	return dest, nil
}

func (m *Manager) transfer(ctx context.Context, url, dest string) (*task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransferInitError{URL: url, Err: err}
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, &TransferInitError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransferInitError{URL: url, Err: fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)}
	}
	if resp.ContentLength < 0 {
		return nil, &TransferInitError{URL: url, Err: ErrNoContentLength}
	}

	t := &task{url: url, dest: dest, total: resp.ContentLength}
	m.log.Info().Str("url", url).Str("dest", dest).Int64("total", t.total).Msg("download start")

	f, err := os.Create(dest)
	if err != nil {
		return nil, &IOError{Op: "create", Path: dest, Err: err}
	}
	if err := m.stream(t, resp.Body, f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, &IOError{Op: "close", Path: dest, Err: err}
	}
	return t, nil
}

// stream copies body into f chunk by chunk, publishing progress after every
// chunk that reached the file.
func (m *Manager) stream(t *task, body io.Reader, f io.Writer) error {
	buf := make([]byte, chunkSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return &IOError{Op: "write", Path: t.dest, Err: werr}
			}
			bytesTotal.Add(float64(n))
			m.publisher.Publish(events.Event{Name: events.DownloadProgress, Data: t.advance(n)})
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return nil
			}
			return &TransferError{URL: t.url, Downloaded: t.downloaded, Err: rerr}
		}
	}
}
