// Package clipboard copies negotiation positions to the system clipboard.
package clipboard

import (
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"
)

// Messages shown after a copy attempt
const (
	MsgCopied = "Position copied to clipboard."
	MsgShared = "Position ready to share."
)

// Outcome of a copy attempt that did not fail
type Outcome int

const (
	// Copied means the text is on the system clipboard
	Copied Outcome = iota
	// Shared means no clipboard exists; the caller shows the text instead
	Shared
)

// Message is the notice for the outcome
func (o Outcome) Message() string {
	if o == Copied {
		return MsgCopied
	}
	return MsgShared
}

// Backend writes text to a clipboard
type Backend interface {
	Available() bool
	WriteAll(text string) error
}

type systemBackend struct{}

func (systemBackend) Available() bool { return !clipboard.Unsupported }

func (systemBackend) WriteAll(text string) error { return clipboard.WriteAll(text) }

// System is the platform clipboard (pbcopy, clip, xclip, xsel, wl-copy)
var System Backend = systemBackend{}

// Copier copies text through a backend
type Copier struct {
	backend Backend
}

// New creates a copier. A nil backend means the system clipboard.
func New(backend Backend) *Copier {
	if backend == nil {
		backend = System
	}
	return &Copier{backend: backend}
}

// Copy writes text to the clipboard. A missing clipboard is not an error;
// the Shared outcome tells the caller to present the text itself.
func (c *Copier) Copy(text string) (Outcome, error) {
	if !c.backend.Available() {
		return Shared, nil
	}
	if err := c.backend.WriteAll(text); err != nil {
		return Shared, fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return Copied, nil
}

// Available reports whether the backend can write
func (c *Copier) Available() bool {
	return c.backend.Available()
}

// InstallInstructions explains how to get a clipboard utility on this platform
func InstallInstructions() string {
	switch runtime.GOOS {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", runtime.GOOS)
	}
}
