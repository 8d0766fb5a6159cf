// Package archive implements the on-disk archive layout, its settings and
// exclusive-lock lifecycle, and channel/revision path resolution.
package archive

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	settingsFileName = "settings.json"
	lockFileName     = "lock"
	contentDirName   = "content"
	channelsDirName  = "channels"
)

func settingsPath(archiveDir string) string {
	return filepath.Join(archiveDir, settingsFileName)
}

func lockPath(archiveDir string) string {
	return filepath.Join(archiveDir, lockFileName)
}

func contentDir(archiveDir string) string {
	return filepath.Join(archiveDir, contentDirName)
}

func channelsDir(archiveDir string) string {
	return filepath.Join(archiveDir, channelsDirName)
}

func channelDir(archiveDir, channel string) string {
	return filepath.Join(channelsDir(archiveDir), channel)
}

// RevisionPath returns the absolute path of one channel's revision file.
func RevisionPath(archiveDir, channel, revision string) string {
	return filepath.Join(channelDir(archiveDir, channel), revision)
}

// BlobPath returns the absolute path of the content-store blob named by the
// lowercase hex of a hash.
func BlobPath(archiveDir, hexHash string) string {
	return filepath.Join(contentDir(archiveDir), hexHash)
}

// revisionNameLayout formats a UTC time as the sortable YYYYMMDD_HHMM_SS
// prefix of a revision name.
const revisionNameLayout = "20060102_1504_05"

// newRevisionName draws 64 bits from the OS random source and formats the
// current UTC time, producing a name that sorts lexicographically by
// recency: YYYYMMDD_HHMM_SS_<16 hex>. Two concurrent calls within the same
// second still collide only with negligible probability.
func newRevisionName() (string, error) {
	var random [8]byte
	if _, err := rand.Read(random[:]); err != nil {
		return "", errors.Wrap(err, "unable to read random bytes")
	}
	timestamp := time.Now().UTC().Format(revisionNameLayout)
	return fmt.Sprintf("%s_%016x", timestamp, binary.BigEndian.Uint64(random[:])), nil
}
