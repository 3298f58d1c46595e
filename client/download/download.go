package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Write streams body straight into destPath, creating or truncating it.
// There is no temp file: when the copy fails the bytes already written
// stay on disk.
func Write(ctx context.Context, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) error {
	opts, err := apply(optFns)
	if err != nil {
		return err
	}

	if destPath == "" {
		return ErrNoDestination
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("defer closing destination file", "path", destPath, "error", err)
		}
	}()

	var writer io.Writer = file
	if opts.checksum != nil {
		writer = io.MultiWriter(writer, opts.checksum)
	}

	if opts.progress {
		writer = &progressWriter{
			w:         writer,
			logger:    logger,
			total:     contentLength,
			startTime: time.Now(),
		}
	}

	n, err := io.Copy(writer, &contextReader{ctx: ctx, r: body})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w after %d bytes: %w", ErrDownloadCancelled, n, err)
		}

		return fmt.Errorf("copying body after %d bytes: %w", n, err)
	}

	if contentLength >= 0 && n != contentLength {
		return &Error{
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", contentLength, n),
		}
	}

	if err := opts.checksum.Verify(); err != nil {
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing destination file: %w", err)
	}

	return nil
}

// Skip reports whether the options ask to skip destPath because it
// already exists.
func Skip(destPath string, optFns ...Option) (bool, error) {
	opts, err := apply(optFns)
	if err != nil {
		return false, err
	}
	if !opts.skipExisting {
		return false, nil
	}

	_, err = os.Stat(destPath)
	return err == nil, nil
}

// contextReader fails reads once ctx is done, so a stalled copy stops
// at the next chunk boundary.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, context.Cause(cr.ctx)
	}

	return cr.r.Read(p)
}
