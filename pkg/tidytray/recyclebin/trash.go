//go:build !windows

package recyclebin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/adrg/xdg"
	"github.com/charlievieth/fastwalk"
)

// Trash is a freedesktop.org trash directory: deleted files live in files/
// and their restore metadata in info/.
type Trash struct {
	// Dir is the trash root, e.g. ~/.local/share/Trash.
	Dir string

	// run starts a helper process. Tests replace it.
	run func(ctx context.Context, name string, args ...string) error

	// lookPath resolves helper binaries. Tests replace it.
	lookPath func(file string) (string, error)
}

// NewTrash returns a Trash rooted at dir.
func NewTrash(dir string) *Trash {
	return &Trash{Dir: dir, run: runCommand, lookPath: exec.LookPath}
}

// DefaultDir returns the home trash directory for the current user.
func DefaultDir() string {
	if runtime.GOOS == "darwin" {
		return filepath.Join(xdg.Home, ".Trash")
	}
	return filepath.Join(xdg.DataHome, "Trash")
}

// Default returns the bin for this platform. A non-empty path overrides
// the default location.
func Default(path string) (Bin, error) {
	if path == "" {
		path = DefaultDir()
	}
	return NewTrash(path), nil
}

// filesDir holds trashed files. On macOS ~/.Trash is flat.
func (t *Trash) filesDir() string {
	if runtime.GOOS == "darwin" {
		return t.Dir
	}
	return filepath.Join(t.Dir, "files")
}

func (t *Trash) infoDir() string {
	return filepath.Join(t.Dir, "info")
}

// Size sums the sizes of regular files in the trash. A missing trash
// directory is an empty bin.
func (t *Trash) Size(ctx context.Context) (uint64, error) {
	root := t.filesDir()
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	var total atomic.Uint64
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if walkErr != nil {
			return nil //nolint:nilerr // unreadable entries do not count
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // raced with a concurrent delete
		}
		total.Add(uint64(info.Size()))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("measuring trash %q: %w", root, err)
	}
	return total.Load(), nil
}

// Empty removes everything in files/ and info/.
func (t *Trash) Empty(ctx context.Context) error {
	dirs := []string{t.filesDir()}
	if runtime.GOOS != "darwin" {
		dirs = append(dirs, t.infoDir())
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %q: %w", dir, err)
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				return fmt.Errorf("removing %q: %w", e.Name(), err)
			}
		}
	}

	// The size cache is stale once the files are gone.
	if err := os.Remove(filepath.Join(t.Dir, "directorysizes")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("removing directorysizes cache", "error", err)
	}
	return nil
}

// Open shows the trash in the file manager: gio's trash:// location when
// available, otherwise the files directory itself.
func (t *Trash) Open(ctx context.Context) error {
	if runtime.GOOS == "darwin" {
		return t.run(ctx, "open", t.Dir)
	}

	if gio, err := t.lookPath("gio"); err == nil {
		if err := t.run(ctx, gio, "open", "trash:///"); err == nil {
			return nil
		}
		logger.Debug("gio open failed, falling back to xdg-open")
	}

	xdgOpen, err := t.lookPath("xdg-open")
	if err != nil {
		return fmt.Errorf("opening trash: no gio or xdg-open: %w", ErrUnsupported)
	}
	if err := os.MkdirAll(t.filesDir(), 0o700); err != nil {
		return fmt.Errorf("creating %q: %w", t.filesDir(), err)
	}
	return t.run(ctx, xdgOpen, t.filesDir())
}

// Put moves path into the trash and records its original location so file
// managers can restore it.
func (t *Trash) Put(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}
	if _, err := os.Lstat(absPath); err != nil {
		return fmt.Errorf("cannot trash %q: %w", path, err)
	}

	if err := os.MkdirAll(t.filesDir(), 0o700); err != nil {
		return fmt.Errorf("creating %q: %w", t.filesDir(), err)
	}
	if runtime.GOOS == "darwin" {
		return os.Rename(absPath, t.uniqueName(t.filesDir(), filepath.Base(absPath), ""))
	}
	if err := os.MkdirAll(t.infoDir(), 0o700); err != nil {
		return fmt.Errorf("creating %q: %w", t.infoDir(), err)
	}

	name := filepath.Base(t.uniqueName(t.infoDir(), filepath.Base(absPath), ".trashinfo"))
	name = strings.TrimSuffix(name, ".trashinfo")
	infoPath := filepath.Join(t.infoDir(), name+".trashinfo")

	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		(&url.URL{Path: absPath}).EscapedPath(), time.Now().Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(infoPath, []byte(info), 0o600); err != nil {
		return fmt.Errorf("writing trash info: %w", err)
	}

	if err := os.Rename(absPath, filepath.Join(t.filesDir(), name)); err != nil {
		_ = os.Remove(infoPath)
		return fmt.Errorf("moving %q to trash: %w", path, err)
	}
	return nil
}

// uniqueName returns dir/base+suffix, or dir/base.N+suffix for the first
// N that does not exist yet.
func (t *Trash) uniqueName(dir, base, suffix string) string {
	candidate := filepath.Join(dir, base+suffix)
	for i := 2; ; i++ {
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = filepath.Join(dir, base+"."+strconv.Itoa(i)+suffix)
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", filepath.Base(name), err, strings.TrimSpace(string(out)))
	}
	return nil
}
