package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"astrod/internal/events"
	"astrod/pkg/types"
)

// chunkReader returns one chunk per Read call, then err (io.EOF by default).
type chunkReader struct {
	chunks [][]byte
	err    error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func (r *chunkReader) Close() error { return nil }

// chunkTransport answers every request with the configured chunked body.
type chunkTransport struct {
	contentLength int64
	body          *chunkReader
	calls         atomic.Int32
}

func (c *chunkTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return &http.Response{
		StatusCode:    http.StatusOK,
		Status:        "200 OK",
		ContentLength: c.contentLength,
		Body:          c.body,
		Header:        make(http.Header),
		Request:       req,
	}, nil
}

func chunks(sizes ...int) [][]byte {
	out := make([][]byte, 0, len(sizes))
	for i, n := range sizes {
		out = append(out, bytes.Repeat([]byte{byte('a' + i)}, n))
	}
	return out
}

func progressOf(t *testing.T, pub *events.MemoryPublisher) []types.DownloadProgress {
	t.Helper()
	var out []types.DownloadProgress
	for _, e := range pub.Named(events.DownloadProgress) {
		p, ok := e.Data.(types.DownloadProgress)
		if !ok {
			t.Fatalf("unexpected payload %T", e.Data)
		}
		out = append(out, p)
	}
	return out
}

func TestDownloadReportsProgressPerChunk(t *testing.T) {
	tr := &chunkTransport{contentLength: 1000, body: &chunkReader{chunks: chunks(400, 400, 200)}}
	pub := events.NewMemoryPublisher()
	m := New(Config{HTTPClient: &http.Client{Transport: tr}, Publisher: pub})

	dest := filepath.Join(t.TempDir(), "models", "model.bin")
	got, err := m.Download(context.Background(), "http://host/model.bin", dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if got != dest {
		t.Fatalf("path=%q want %q", got, dest)
	}

	want := []types.DownloadProgress{{Downloaded: 400, Total: 1000}, {Downloaded: 800, Total: 1000}, {Downloaded: 1000, Total: 1000}}
	prog := progressOf(t, pub)
	if len(prog) != len(want) {
		t.Fatalf("progress=%v want %v", prog, want)
	}
	for i := range want {
		if prog[i] != want[i] {
			t.Fatalf("progress[%d]=%v want %v", i, prog[i], want[i])
		}
	}

	fi, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() != 1000 {
		t.Fatalf("size=%d want 1000", fi.Size())
	}
}

func TestDownloadProgressIsMonotonic(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 300<<10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	pub := events.NewMemoryPublisher()
	m := New(Config{Publisher: pub})
	dest := filepath.Join(t.TempDir(), "m.gguf")
	if _, err := m.Download(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	prog := progressOf(t, pub)
	if len(prog) == 0 {
		t.Fatalf("no progress events")
	}
	var last int64
	for i, p := range prog {
		if p.Downloaded < last {
			t.Fatalf("progress[%d] went backwards: %d < %d", i, p.Downloaded, last)
		}
		if p.Total != int64(len(payload)) {
			t.Fatalf("progress[%d] total=%d", i, p.Total)
		}
		last = p.Downloaded
	}
	fi, _ := os.Stat(dest)
	if last != fi.Size() {
		t.Fatalf("final progress %d != file size %d", last, fi.Size())
	}
}

func TestDownloadSkipsExistingFile(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Length", "5")
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	m := New(Config{})
	dest := filepath.Join(t.TempDir(), "m.gguf")
	for i := 0; i < 2; i++ {
		got, err := m.Download(context.Background(), srv.URL, dest)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != dest {
			t.Fatalf("call %d: path=%q", i, got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected exactly one request, got %d", n)
	}
}

func TestDownloadExistingFileIsNotValidated(t *testing.T) {
	tr := &chunkTransport{contentLength: 10, body: &chunkReader{chunks: chunks(10)}}
	m := New(Config{HTTPClient: &http.Client{Transport: tr}})
	dest := filepath.Join(t.TempDir(), "partial.gguf")
	if err := os.WriteFile(dest, []byte("abc"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := m.Download(context.Background(), "http://host/x", dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if tr.calls.Load() != 0 {
		t.Fatalf("expected no request for an existing file")
	}
	b, _ := os.ReadFile(dest)
	if string(b) != "abc" {
		t.Fatalf("existing file was modified: %q", b)
	}
}

func TestDownloadWithoutContentLength(t *testing.T) {
	tr := &chunkTransport{contentLength: -1, body: &chunkReader{chunks: chunks(10)}}
	m := New(Config{HTTPClient: &http.Client{Transport: tr}})
	dest := filepath.Join(t.TempDir(), "m.gguf")
	_, err := m.Download(context.Background(), "http://host/x", dest)
	if !IsTransferInit(err) {
		t.Fatalf("expected TransferInitError, got %v", err)
	}
	if !errors.Is(err, ErrNoContentLength) {
		t.Fatalf("expected ErrNoContentLength, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("destination should not be created, stat err=%v", statErr)
	}
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	m := New(Config{})
	_, err := m.Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "m.gguf"))
	if !IsTransferInit(err) || !errors.Is(err, ErrBadStatus) {
		t.Fatalf("expected TransferInitError(ErrBadStatus), got %v", err)
	}
}

func TestDownloadRequestFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	m := New(Config{})
	_, err := m.Download(context.Background(), url, filepath.Join(t.TempDir(), "m.gguf"))
	if !IsTransferInit(err) {
		t.Fatalf("expected TransferInitError, got %v", err)
	}
}

func TestDownloadMidStreamFailureLeavesPartialFile(t *testing.T) {
	boom := errors.New("connection reset")
	tr := &chunkTransport{contentLength: 1000, body: &chunkReader{chunks: chunks(400), err: boom}}
	pub := events.NewMemoryPublisher()
	m := New(Config{HTTPClient: &http.Client{Transport: tr}, Publisher: pub})
	dest := filepath.Join(t.TempDir(), "m.gguf")

	_, err := m.Download(context.Background(), "http://host/x", dest)
	if !IsTransfer(err) || !errors.Is(err, boom) {
		t.Fatalf("expected TransferError wrapping boom, got %v", err)
	}
	fi, statErr := os.Stat(dest)
	if statErr != nil {
		t.Fatalf("partial file should remain: %v", statErr)
	}
	if fi.Size() != 400 {
		t.Fatalf("partial size=%d want 400", fi.Size())
	}
	if prog := progressOf(t, pub); len(prog) != 1 || prog[0].Downloaded != 400 {
		t.Fatalf("progress=%v", prog)
	}
}

func TestDownloadUnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tr := &chunkTransport{contentLength: 1, body: &chunkReader{chunks: chunks(1)}}
	m := New(Config{HTTPClient: &http.Client{Transport: tr}})
	_, err := m.Download(context.Background(), "http://host/x", filepath.Join(blocker, "sub", "m.gguf"))
	if !IsIO(err) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if tr.calls.Load() != 0 {
		t.Fatalf("no request expected when the directory cannot be created")
	}
}

func TestDownloadCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1")
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := New(Config{})
	_, err := m.Download(ctx, srv.URL, filepath.Join(t.TempDir(), "m.gguf"))
	if !IsTransferInit(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected TransferInitError(context.Canceled), got %v", err)
	}
}

func TestDownloadDefaultClientSendsNoAcceptEncoding(t *testing.T) {
	payload := bytes.Repeat([]byte("g"), 2048)
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "m.gguf")
	if _, err := New(Config{}).Download(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if ae, _ := got.Load().(string); ae != "" {
		t.Fatalf("Accept-Encoding=%q, want none", ae)
	}
	fi, err := os.Stat(dest)
	if err != nil || fi.Size() != int64(len(payload)) {
		t.Fatalf("size=%v err=%v", fi, err)
	}
}
