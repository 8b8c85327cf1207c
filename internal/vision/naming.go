package vision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cjeanneret/visionmcp/internal/hw/camera"
)

const stampLayout = "20060102_150405"

// frameName returns frame_<YYYYMMDD_HHMMSS>_<ms><ext>.
func frameName(t time.Time, f camera.Format) string {
	return fmt.Sprintf("frame_%s_%03d%s", t.Format(stampLayout), t.Nanosecond()/int(time.Millisecond), f.Ext())
}

// burstName returns asl_<YYYYMMDD_HHMMSS>_<ms>_<index><ext>.
func burstName(t time.Time, index int, f camera.Format) string {
	return fmt.Sprintf("asl_%s_%03d_%02d%s", t.Format(stampLayout), t.Nanosecond()/int(time.Millisecond), index, f.Ext())
}

// resolveDir expands a leading ~ and makes dir absolute.
func resolveDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") || strings.HasPrefix(dir, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", dir, err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	return filepath.Abs(dir)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FilesystemError{Op: "write", Path: path, Err: err}
	}
	return nil
}
