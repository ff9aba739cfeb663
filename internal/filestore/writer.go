package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultWriteChunkBytes is the default read/write window for uploads.
const DefaultWriteChunkBytes = 512000

// WriteStream copies src into dst in windows of at most chunkBytes, never
// holding more than one window in memory. dst is created or truncated.
//
// On failure the partially written file is left in place; the caller decides
// whether to remove it. The returned count is the number of bytes written so far.
func WriteStream(ctx context.Context, src io.Reader, dst string, chunkBytes int) (written int64, err error) {
	if chunkBytes <= 0 {
		chunkBytes = DefaultWriteChunkBytes
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open destination: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close destination: %w", cerr)
		}
	}()

	buf := make([]byte, chunkBytes)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, rerr := io.ReadFull(src, buf)
		if n > 0 {
			wn, werr := f.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, fmt.Errorf("failed to write destination: %w", werr)
			}
		}

		switch {
		case rerr == nil:
			continue
		case errors.Is(rerr, io.EOF), errors.Is(rerr, io.ErrUnexpectedEOF):
			return written, nil
		default:
			return written, fmt.Errorf("failed to read upload: %w", rerr)
		}
	}
}
