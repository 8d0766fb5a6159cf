package archive

import (
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/kiln-archive/kiln/pkg/locking"
)

// Init creates a new archive at archiveDir: the content and channels
// directories, and a freshly validated settings.json. archiveDir must
// already exist (it is typically the directory the caller just created or
// was handed); Init itself only populates it. It fails if settings.json
// already exists, to avoid silently clobbering an existing archive.
func Init(archiveDir string, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if _, err := os.Stat(settingsPath(archiveDir)); err == nil {
		return errors.New("archive already initialized")
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "unable to check for existing archive")
	}

	if err := os.MkdirAll(contentDir(archiveDir), 0o755); err != nil {
		return errors.Wrap(err, "unable to create content directory")
	}
	if err := os.MkdirAll(channelsDir(archiveDir), 0o755); err != nil {
		return errors.Wrap(err, "unable to create channels directory")
	}
	if err := saveSettings(archiveDir, settings); err != nil {
		return err
	}
	return nil
}

// Session represents an exclusively locked, open archive. Callers must call
// Close when finished to release the lock.
type Session struct {
	archiveDir string
	settings   Settings
	lock       *locking.Lock
}

// Open verifies that archiveDir looks like an archive (content/, channels/,
// and settings.json all present), loads its settings, and acquires the
// exclusive lock. It fails with locking.ErrLocked if another process
// already holds the lock.
func Open(archiveDir string) (*Session, error) {
	for _, dir := range []string{contentDir(archiveDir), channelsDir(archiveDir)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, errors.Errorf("not an archive: %s missing", dir)
		}
	}

	settings, err := loadSettings(archiveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("not an archive: settings.json not found")
		}
		return nil, err
	}

	lock, err := locking.Acquire(lockPath(archiveDir))
	if err != nil {
		return nil, err
	}

	return &Session{archiveDir: archiveDir, settings: settings, lock: lock}, nil
}

// ArchiveDir returns the archive's root directory.
func (s *Session) ArchiveDir() string {
	return s.archiveDir
}

// Settings returns the archive's fixed settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// ChannelNames lists the archive's channels in lexicographic order. A
// freshly initialized archive has none.
func (s *Session) ChannelNames() ([]string, error) {
	entries, err := os.ReadDir(channelsDir(s.archiveDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "unable to list channels")
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// RevisionNames lists one channel's revisions in lexicographic (and hence
// chronological) order. An unknown channel yields an empty list rather than
// an error.
func (s *Session) RevisionNames(channel string) ([]string, error) {
	entries, err := os.ReadDir(channelDir(s.archiveDir, channel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "unable to list revisions")
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LatestRevision returns the channel's most recent revision name. Revision
// names sort chronologically, so the latest revision is simply the
// lexicographic maximum. It returns ok=false for a channel with no
// revisions.
func (s *Session) LatestRevision(channel string) (name string, ok bool, err error) {
	names, err := s.RevisionNames(channel)
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, nil
	}
	return names[len(names)-1], true, nil
}

// NewRevisionPath allocates a fresh revision name for channel and returns
// its path, creating the channel directory if necessary so that backing up
// to a brand-new channel needs no separate step. The revision file itself
// is not created here; the caller creates it at the returned path.
func (s *Session) NewRevisionPath(channel string) (path string, revision string, err error) {
	if err := os.MkdirAll(channelDir(s.archiveDir, channel), 0o755); err != nil {
		return "", "", errors.Wrap(err, "unable to create channel directory")
	}
	revision, err = newRevisionName()
	if err != nil {
		return "", "", err
	}
	return RevisionPath(s.archiveDir, channel, revision), revision, nil
}

// ContentDir returns the archive's blob content directory.
func (s *Session) ContentDir() string {
	return contentDir(s.archiveDir)
}

// Close releases the archive's exclusive lock.
func (s *Session) Close() error {
	return s.lock.Release()
}
