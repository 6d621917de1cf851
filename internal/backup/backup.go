// Package backup snapshots the data files into timestamped directories.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	dirPrefix = "backup_"
	stampFmt  = "20060102_150405"
)

var ErrNothingToBackup = errors.New("no data files to back up")

// Snapshot is one backup directory.
type Snapshot struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Created time.Time `json:"created"`
	Files   []string  `json:"files"`
}

type Service struct {
	dir   string
	files []string
	keep  int
	log   zerolog.Logger
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService backs up files into dir, keeping at most keep snapshots after
// each Create.
func NewService(dir string, files []string, keep int, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{dir: dir, files: files, keep: keep, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create copies every existing data file into a new snapshot directory and
// prunes old snapshots. Missing files are skipped.
func (s *Service) Create() (*Snapshot, error) {
	created := s.now()
	name := dirPrefix + created.Format(stampFmt)
	target := filepath.Join(s.dir, name)

	// two backups within the same second get a numeric suffix
	for i := 2; exists(target); i++ {
		target = filepath.Join(s.dir, fmt.Sprintf("%s_%d", name, i))
	}

	snap := &Snapshot{Name: filepath.Base(target), Path: target, Created: created}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	for _, src := range s.files {
		err := copyFile(src, filepath.Join(target, filepath.Base(src)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			_ = os.RemoveAll(target)
			return nil, fmt.Errorf("backing up %s: %w", src, err)
		}

		snap.Files = append(snap.Files, filepath.Base(src))
	}

	if len(snap.Files) == 0 {
		_ = os.RemoveAll(target)
		return nil, ErrNothingToBackup
	}

	s.log.Info().Str("path", target).Strs("files", snap.Files).Msg("backup created")

	if _, err := s.Prune(s.keep); err != nil {
		s.log.Warn().Err(err).Msg("pruning old backups")
	}

	return snap, nil
}

// List returns the snapshots, newest first.
func (s *Service) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var out []Snapshot

	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), dirPrefix) {
			continue
		}

		stamp := strings.TrimPrefix(e.Name(), dirPrefix)
		created, err := time.ParseInLocation(stampFmt, stamp[:min(len(stamp), len(stampFmt))], time.Local)
		if err != nil {
			continue
		}

		snap := Snapshot{Name: e.Name(), Path: filepath.Join(s.dir, e.Name()), Created: created}

		files, _ := os.ReadDir(snap.Path)
		for _, f := range files {
			snap.Files = append(snap.Files, f.Name())
		}

		out = append(out, snap)
	}

	// names sort chronologically; reverse for newest first
	slices.SortFunc(out, func(a, b Snapshot) int { return strings.Compare(b.Name, a.Name) })

	return out, nil
}

// Prune deletes all but the newest keep snapshots and returns how many went.
func (s *Service) Prune(keep int) (int, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1, got %d", keep)
	}

	snaps, err := s.List()
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, snap := range snaps[min(keep, len(snaps)):] {
		if err := os.RemoveAll(snap.Path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", snap.Name, err)
		}

		removed++
	}

	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("pruned old backups")
	}

	return removed, nil
}

// Restore copies the files of a snapshot back over the data files.
func (s *Service) Restore(name string) error {
	src := filepath.Join(s.dir, filepath.Base(name))
	if !exists(src) {
		return fmt.Errorf("backup %s: %w", name, fs.ErrNotExist)
	}

	for _, dst := range s.files {
		err := copyFile(filepath.Join(src, filepath.Base(dst)), dst)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return fmt.Errorf("restoring %s: %w", dst, err)
		}
	}

	s.log.Info().Str("backup", name).Msg("backup restored")

	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
