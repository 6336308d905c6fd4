package integrity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/Danondso/mfdr-sub001/internal/config"
	"github.com/Danondso/mfdr-sub001/internal/logging"
)

// Status classifies the outcome of an integrity check.
type Status int

const (
	// StatusOK means the file passed every enabled check.
	StatusOK Status = iota
	// StatusCorrupt means at least one check failed.
	StatusCorrupt
	// StatusSkipped means checking is disabled or the file type is exempt.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCorrupt:
		return "corrupt"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Failure reasons reported on corrupt files.
const (
	ReasonMissing      = "file_missing"
	ReasonDRMProtected = "drm_protected"
	ReasonTooSmall     = "file_too_small"
	ReasonBadMetadata  = "unreadable_metadata"
	ReasonDecodeFailed = "decode_failed"
)

// Result describes one file's integrity verdict.
type Result struct {
	Path   string
	Status Status
	Reason string
	Detail string
}

// OK reports whether the file is safe to keep.
func (r Result) OK() bool {
	return r.Status != StatusCorrupt
}

// Checker verifies that audio files are readable and undamaged.
type Checker interface {
	Check(ctx context.Context, path string) Result
}

// Stubbed in tests.
var commandContext = exec.CommandContext

// FileChecker implements Checker with a layered strategy: existence and size
// first, then a metadata parse, then an optional ffmpeg decode of the file's
// tail. The decode step is skipped when ffmpeg is absent rather than failing
// the file.
type FileChecker struct {
	cfg        config.Integrity
	logger     *slog.Logger
	ffmpegPath string
}

var _ Checker = (*FileChecker)(nil)

// NewFileChecker creates a checker from configuration.
func NewFileChecker(cfg config.Integrity, logger *slog.Logger) *FileChecker {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "integrity")

	checker := &FileChecker{cfg: cfg, logger: logger}
	if cfg.DecodeCheck {
		if path, err := exec.LookPath("ffmpeg"); err == nil {
			checker.ffmpegPath = path
		} else {
			logger.Warn("ffmpeg not found, decode checks disabled",
				logging.Error(err))
		}
	}
	return checker
}

// Check runs the enabled checks against path in order, stopping at the first
// failure.
func (c *FileChecker) Check(ctx context.Context, path string) Result {
	if !c.cfg.Enabled {
		return Result{Path: path, Status: StatusSkipped}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.corrupt(path, ReasonMissing, "")
		}
		return c.corrupt(path, ReasonMissing, err.Error())
	}

	// Protected purchases cannot be decoded by anything we control, so they
	// fail fast regardless of content.
	if strings.EqualFold(filepath.Ext(path), ".m4p") {
		return c.corrupt(path, ReasonDRMProtected, "")
	}

	minBytes := int64(c.cfg.MinFileSizeKB) * 1024
	if info.Size() < minBytes {
		return c.corrupt(path, ReasonTooSmall,
			fmt.Sprintf("%d bytes, floor is %d", info.Size(), minBytes))
	}

	if result, ok := c.checkMetadata(path); !ok {
		return result
	}

	if c.ffmpegPath != "" {
		if result, ok := c.checkDecode(ctx, path); !ok {
			return result
		}
	}

	return Result{Path: path, Status: StatusOK}
}

func (c *FileChecker) checkMetadata(path string) (Result, bool) {
	file, err := os.Open(path)
	if err != nil {
		return c.corrupt(path, ReasonBadMetadata, err.Error()), false
	}
	defer file.Close()

	if _, err := tag.ReadFrom(file); err != nil {
		// Absent tags are fine; a parse failure on a tagged container is not.
		if errors.Is(err, tag.ErrNoTagsFound) {
			return Result{}, true
		}
		return c.corrupt(path, ReasonBadMetadata, err.Error()), false
	}
	return Result{}, true
}

// checkDecode asks ffmpeg to decode the last 30 seconds of the file, where
// truncation damage shows up.
func (c *FileChecker) checkDecode(ctx context.Context, path string) (Result, bool) {
	timeout := time.Duration(c.cfg.CheckTimeoutSecs) * time.Second
	decodeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := commandContext(decodeCtx, c.ffmpegPath,
		"-v", "error",
		"-sseof", "-30",
		"-i", path,
		"-f", "null", "-")
	output, err := cmd.CombinedOutput()
	if decodeCtx.Err() != nil {
		// A slow decode is inconclusive, not proof of corruption.
		c.logger.Warn("decode check timed out",
			logging.String("path", path))
		return Result{}, true
	}
	if err != nil {
		detail := strings.TrimSpace(string(output))
		return c.corrupt(path, ReasonDecodeFailed, detail), false
	}
	return Result{}, true
}

func (c *FileChecker) corrupt(path, reason, detail string) Result {
	c.logger.Debug("integrity check failed",
		logging.String("path", path),
		logging.String("reason", reason))
	return Result{Path: path, Status: StatusCorrupt, Reason: reason, Detail: detail}
}
