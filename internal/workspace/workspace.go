// Package workspace holds the program text being previewed and the Program
// built from it.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	gcode "github.com/leftmike/gcsim"
	"github.com/leftmike/gcsim/internal/logging"
)

var ErrUnsupportedFile = errors.New("workspace: unsupported file")

// Extensions are the file extensions Open accepts.
var Extensions = []string{".nc", ".gcode", ".ngc", ".tap", ".txt"}

// Workspace is safe for concurrent use; Watch reloads it from its own
// goroutine.
type Workspace struct {
	buildMu  sync.Mutex // held while building a revision
	mu       sync.RWMutex
	path     string
	text     string
	program  *gcode.Program
	revision int

	buildOpts []gcode.BuildOption
	debounce  time.Duration
	logger    *slog.Logger
}

type Option func(ws *Workspace)

func WithBuildOptions(opts ...gcode.BuildOption) Option {
	return func(ws *Workspace) {
		ws.buildOpts = append(ws.buildOpts, opts...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(ws *Workspace) {
		ws.logger = logging.Component(logger, "workspace")
	}
}

// WithDebounce sets how long Watch waits for writes to settle before
// reloading.
func WithDebounce(d time.Duration) Option {
	return func(ws *Workspace) {
		ws.debounce = d
	}
}

func newWorkspace(opts []Option) *Workspace {
	ws := &Workspace{
		debounce: 200 * time.Millisecond,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(ws)
	}
	return ws
}

// New returns a workspace for text that is not backed by a file.
func New(text string, opts ...Option) *Workspace {
	ws := newWorkspace(opts)
	ws.setText(text)
	return ws
}

func Supported(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Open reads the program in path.
func Open(path string, opts ...Option) (*Workspace, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}

	ws := newWorkspace(opts)
	ws.path = path
	ws.setText(string(buf))
	return ws, nil
}

// Snapshot is one revision of the workspace: the text and the program
// built from it.
type Snapshot struct {
	Text     string
	Program  *gcode.Program
	Revision int
}

func (ws *Workspace) setText(text string) *gcode.Program {
	ws.buildMu.Lock()
	defer ws.buildMu.Unlock()

	return ws.build(text)
}

// build must be called with buildMu held, so that revisions are stored in
// the order they were built.
func (ws *Workspace) build(text string) *gcode.Program {
	p := gcode.Build(text, ws.buildOpts...)

	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.text = text
	ws.program = p
	ws.revision += 1
	ws.logger.Debug("build", "revision", ws.revision, "lines", p.TotalLines,
		"commands", p.Len(), "diagnostics", len(p.Diagnostics))
	return p
}

// SetText replaces the text and builds a new revision of the program.
func (ws *Workspace) SetText(text string) *gcode.Program {
	return ws.setText(text)
}

// Path is the file the workspace was opened from, or "".
func (ws *Workspace) Path() string {
	return ws.path
}

func (ws *Workspace) Text() string {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.text
}

func (ws *Workspace) Program() *gcode.Program {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.program
}

// Revision starts at 1 and counts the builds of the program.
func (ws *Workspace) Revision() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.revision
}

// Current returns the program and its revision together.
func (ws *Workspace) Current() (*gcode.Program, int) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.program, ws.revision
}

func (ws *Workspace) Snapshot() Snapshot {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return Snapshot{Text: ws.text, Program: ws.program, Revision: ws.revision}
}

// Export writes the text exactly as it was loaded or set.
func (ws *Workspace) Export(w io.Writer) error {
	_, err := io.WriteString(w, ws.Text())
	if err != nil {
		return fmt.Errorf("workspace: export: %w", err)
	}
	return nil
}

func (ws *Workspace) Save(path string) error {
	err := os.WriteFile(path, []byte(ws.Text()), 0644)
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	return nil
}

// Reload reads the file again and rebuilds the program if the text
// changed.
func (ws *Workspace) Reload() (bool, error) {
	if ws.path == "" {
		return false, nil
	}

	ws.buildMu.Lock()
	defer ws.buildMu.Unlock()

	buf, err := os.ReadFile(ws.path)
	if err != nil {
		return false, fmt.Errorf("workspace: %w", err)
	}
	if string(buf) == ws.Text() {
		return false, nil
	}
	ws.build(string(buf))
	return true, nil
}
