package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ScreenshotUtil saves sequentially numbered screenshots into a per-run
// directory so captures sort in the order they were taken.
type ScreenshotUtil struct {
	acc Accessor
	dir string

	mu  sync.Mutex
	seq int
}

// NewScreenshotUtil creates dir if needed and returns a util writing into it.
func NewScreenshotUtil(acc Accessor, dir string) (*ScreenshotUtil, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return &ScreenshotUtil{acc: acc, dir: dir}, nil
}

// Dir returns the directory screenshots are written to.
func (u *ScreenshotUtil) Dir() string { return u.dir }

// Capture saves a full-page screenshot named NN_name_timestamp.png and
// returns its path.
func (u *ScreenshotUtil) Capture(ctx context.Context, name string) (string, error) {
	buf, err := u.acc.Screenshot(ctx)
	if err != nil {
		return "", err
	}

	u.mu.Lock()
	u.seq++
	seq := u.seq
	u.mu.Unlock()

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("%02d_%s_%s.png", seq, sanitizeName(name), timestamp)
	path := filepath.Join(u.dir, filename)

	if err := os.WriteFile(path, buf, 0644); err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}
	return path, nil
}

// CaptureFailure saves a screenshot tagged as a failure capture.
func (u *ScreenshotUtil) CaptureFailure(ctx context.Context, name string) (string, error) {
	return u.Capture(ctx, name+"_failure")
}

func sanitizeName(name string) string {
	name = strings.ToLower(name)
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")
	return replacer.Replace(name)
}
