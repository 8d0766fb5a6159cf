package archive

import (
	"github.com/pkg/errors"

	"github.com/kiln-archive/kiln/pkg/codec"
	"github.com/kiln-archive/kiln/pkg/encoding"
	"github.com/kiln-archive/kiln/pkg/hash"
)

// Settings records the archive-wide, write-once choices made at Init time:
// the hash algorithm used to address content, and the compression applied
// to newly written blobs. Both are fixed for the lifetime of the archive —
// changing either would make existing blob names or bytes unreadable.
type Settings struct {
	HashAlgorithm hash.Algorithm    `json:"hash_algo"`
	Compression   codec.Compression `json:"compression"`
}

// Validate checks that settings describe a usable archive.
func (s Settings) Validate() error {
	if !s.HashAlgorithm.Supported() {
		return errors.Errorf("unsupported hash algorithm: %s", s.HashAlgorithm)
	}
	if err := s.Compression.Validate(); err != nil {
		return errors.Wrap(err, "invalid compression setting")
	}
	return nil
}

func loadSettings(archiveDir string) (Settings, error) {
	var settings Settings
	if err := encoding.LoadAndUnmarshalJSON(settingsPath(archiveDir), &settings); err != nil {
		return Settings{}, errors.Wrap(err, "unable to load archive settings")
	}
	return settings, nil
}

func saveSettings(archiveDir string, settings Settings) error {
	if err := encoding.MarshalAndSaveJSON(settingsPath(archiveDir), 0o644, settings); err != nil {
		return errors.Wrap(err, "unable to save archive settings")
	}
	return nil
}
