package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var discard = slog.New(slog.DiscardHandler)

// failingReader yields data and then fails.
type failingReader struct {
	data string
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}

func sum(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func TestWrite(t *testing.T) {
	errBroken := errors.New("connection reset")

	testCases := []struct {
		name    string
		body    func() io.Reader
		length  int64
		opts    []Option
		expErr  error
		expFile string
	}{
		{
			name:    "Writes body",
			body:    func() io.Reader { return strings.NewReader("hello world") },
			length:  11,
			expFile: "hello world",
		},
		{
			name:    "Unknown length",
			body:    func() io.Reader { return strings.NewReader("chunked") },
			length:  -1,
			opts:    []Option{WithProgress()},
			expFile: "chunked",
		},
		{
			name:    "Checksum matches",
			body:    func() io.Reader { return strings.NewReader("payload") },
			length:  7,
			opts:    []Option{WithChecksum(sha256.New(), sum("payload"))},
			expFile: "payload",
		},
		{
			name:    "Checksum mismatch keeps file",
			body:    func() io.Reader { return strings.NewReader("payload") },
			length:  7,
			opts:    []Option{WithChecksum(sha256.New(), sum("other"))},
			expErr:  ErrChecksumMismatch,
			expFile: "payload",
		},
		{
			name:    "Short body",
			body:    func() io.Reader { return strings.NewReader("abc") },
			length:  10,
			expErr:  ErrContentLengthMismatch,
			expFile: "abc",
		},
		{
			name:    "Broken stream leaves partial file",
			body:    func() io.Reader { return &failingReader{data: "part", err: errBroken} },
			length:  100,
			expErr:  errBroken,
			expFile: "part",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out.bin")

			err := Write(context.Background(), tc.body(), tc.length, dest, discard, tc.opts...)
			if tc.expErr == nil && err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}
			if tc.expErr != nil && !errors.Is(err, tc.expErr) {
				t.Fatalf("exp err %v, got: %v", tc.expErr, err)
			}

			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatalf("reading dest: %v", err)
			}
			if string(got) != tc.expFile {
				t.Errorf("exp file %q, got %q", tc.expFile, got)
			}
		})
	}
}

func TestWrite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "out.bin")
	err := Write(ctx, strings.NewReader("never read"), -1, dest, discard)
	if !errors.Is(err, ErrDownloadCancelled) {
		t.Fatalf("exp %v, got: %v", ErrDownloadCancelled, err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("exp err to wrap context.Canceled, got: %v", err)
	}
}

func TestWrite_Validation(t *testing.T) {
	if err := Write(context.Background(), strings.NewReader(""), 0, "", discard); !errors.Is(err, ErrNoDestination) {
		t.Errorf("exp %v, got: %v", ErrNoDestination, err)
	}

	dest := filepath.Join(t.TempDir(), "out.bin")
	if err := Write(context.Background(), strings.NewReader(""), 0, dest, discard, WithChecksum(nil, "abc")); err == nil {
		t.Error("exp option error for nil hash")
	}

	missingDir := filepath.Join(t.TempDir(), "missing", "out.bin")
	if err := Write(context.Background(), strings.NewReader("x"), 1, missingDir, discard); err == nil {
		t.Error("exp error for unwritable destination")
	}
}

func TestSkip(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing")
	if err := os.WriteFile(existing, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name string
		path string
		opts []Option
		exp  bool
	}{
		{name: "Existing without option", path: existing, exp: false},
		{name: "Existing with option", path: existing, opts: []Option{WithSkipExisting()}, exp: true},
		{name: "Missing with option", path: filepath.Join(dir, "missing"), opts: []Option{WithSkipExisting()}, exp: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Skip(tc.path, tc.opts...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.exp {
				t.Errorf("exp %t, got %t", tc.exp, got)
			}
		})
	}
}
