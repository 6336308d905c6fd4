package integrity

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/Danondso/mfdr-sub001/internal/config"
	"github.com/Danondso/mfdr-sub001/internal/logging"
)

func enabledConfig() config.Integrity {
	return config.Integrity{
		Enabled:          true,
		MinFileSizeKB:    1,
		CheckTimeoutSecs: 5,
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckDisabled(t *testing.T) {
	checker := NewFileChecker(config.Integrity{Enabled: false}, nil)
	result := checker.Check(context.Background(), "/nonexistent/file.mp3")
	if result.Status != StatusSkipped {
		t.Errorf("Status = %v, want skipped", result.Status)
	}
	if !result.OK() {
		t.Error("skipped should count as OK")
	}
}

func TestCheckMissingFile(t *testing.T) {
	checker := NewFileChecker(enabledConfig(), nil)
	result := checker.Check(context.Background(), filepath.Join(t.TempDir(), "gone.mp3"))
	if result.Status != StatusCorrupt || result.Reason != ReasonMissing {
		t.Errorf("result = %+v, want corrupt/%s", result, ReasonMissing)
	}
}

func TestCheckDRMProtected(t *testing.T) {
	path := writeFile(t, "song.m4p", bytes.Repeat([]byte{0}, 4096))
	checker := NewFileChecker(enabledConfig(), nil)
	result := checker.Check(context.Background(), path)
	if result.Status != StatusCorrupt || result.Reason != ReasonDRMProtected {
		t.Errorf("result = %+v, want corrupt/%s", result, ReasonDRMProtected)
	}
}

func TestCheckTooSmall(t *testing.T) {
	path := writeFile(t, "tiny.mp3", []byte("x"))
	checker := NewFileChecker(enabledConfig(), nil)
	result := checker.Check(context.Background(), path)
	if result.Status != StatusCorrupt || result.Reason != ReasonTooSmall {
		t.Errorf("result = %+v, want corrupt/%s", result, ReasonTooSmall)
	}
	if result.Detail == "" {
		t.Error("size failure should carry a detail message")
	}
}

func TestCheckUntaggedFilePasses(t *testing.T) {
	// No recognizable tag header at all: absence of tags is not corruption.
	path := writeFile(t, "plain.mp3", bytes.Repeat([]byte{0xAB}, 2048))
	checker := NewFileChecker(enabledConfig(), nil)
	result := checker.Check(context.Background(), path)
	if result.Status != StatusOK {
		t.Errorf("result = %+v, want ok", result)
	}
}

func TestCheckTruncatedTagFails(t *testing.T) {
	// An ID3v2 header that promises 2KB of frames in a 1.5KB file.
	header := []byte{'I', 'D', '3', 4, 0, 0, 0x00, 0x00, 0x10, 0x00}
	data := append(header, bytes.Repeat([]byte{0xFF}, 1526)...)
	path := writeFile(t, "truncated.mp3", data)
	checker := NewFileChecker(enabledConfig(), nil)
	result := checker.Check(context.Background(), path)
	if result.Status != StatusCorrupt || result.Reason != ReasonBadMetadata {
		t.Errorf("result = %+v, want corrupt/%s", result, ReasonBadMetadata)
	}
}

func TestCheckDecodeFailure(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo decode error >&2; exit 1")
	}
	defer func() { commandContext = original }()

	path := writeFile(t, "damaged.mp3", bytes.Repeat([]byte{0xAB}, 2048))
	checker := &FileChecker{cfg: enabledConfig(), logger: logging.NewNop(), ffmpegPath: "ffmpeg"}
	result := checker.Check(context.Background(), path)
	if result.Status != StatusCorrupt || result.Reason != ReasonDecodeFailed {
		t.Errorf("result = %+v, want corrupt/%s", result, ReasonDecodeFailed)
	}
	if result.Detail != "decode error" {
		t.Errorf("Detail = %q", result.Detail)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "ok"},
		{StatusCorrupt, "corrupt"},
		{StatusSkipped, "skipped"},
		{Status(9), "status(9)"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
