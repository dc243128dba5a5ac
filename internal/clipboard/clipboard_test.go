package clipboard

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

type fakeBackend struct {
	available bool
	err       error
	written   string
}

func (f *fakeBackend) Available() bool { return f.available }

func (f *fakeBackend) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.written = text
	return nil
}

func TestCopy(t *testing.T) {
	backend := &fakeBackend{available: true}
	outcome, err := New(backend).Copy("Cap at 12 months of fees.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome != Copied || outcome.Message() != MsgCopied {
		t.Errorf("Expected copied outcome, got %v", outcome)
	}
	if backend.written != "Cap at 12 months of fees." {
		t.Errorf("Backend received %q", backend.written)
	}
}

func TestCopyWithoutClipboard(t *testing.T) {
	outcome, err := New(&fakeBackend{}).Copy("text")
	if err != nil {
		t.Fatalf("Missing clipboard should not be an error: %v", err)
	}
	if outcome != Shared || outcome.Message() != "Position ready to share." {
		t.Errorf("Expected shared outcome, got %v", outcome)
	}
}

func TestCopyFailure(t *testing.T) {
	cause := errors.New("xclip exited 1")
	_, err := New(&fakeBackend{available: true, err: cause}).Copy("text")
	if !errors.Is(err, cause) {
		t.Errorf("Expected wrapped cause, got %v", err)
	}
}

func TestNewDefaultsToSystem(t *testing.T) {
	if New(nil).backend != System {
		t.Error("Expected system backend")
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	if instructions == "" {
		t.Error("Install instructions should not be empty")
	}

	switch runtime.GOOS {
	case "linux":
		if !strings.Contains(instructions, "xclip") {
			t.Error("Linux instructions should mention xclip")
		}
	case "darwin":
		if !strings.Contains(instructions, "pbcopy") {
			t.Error("macOS instructions should mention pbcopy")
		}
	}
}
