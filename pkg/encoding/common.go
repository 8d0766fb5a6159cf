// Package encoding provides small, format-specific load/save helpers built
// on top of a shared read/write primitive, following the archive's
// settings.json as its only consumer.
package encoding

import (
	"os"

	"github.com/pkg/errors"

	"github.com/kiln-archive/kiln/pkg/archivefs"
)

// LoadAndUnmarshal provides the underlying loading and unmarshaling
// functionality for the encoding package. It reads the data at the
// specified path and then invokes the specified unmarshaling callback
// (usually a closure) to decode the data.
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return errors.Wrap(err, "unable to load file")
	}
	if err := unmarshal(data); err != nil {
		return errors.Wrap(err, "unable to unmarshal data")
	}
	return nil
}

// MarshalAndSave provides the underlying marshaling and saving
// functionality for the encoding package. It invokes the specified
// marshaling callback and writes the result to the specified path through
// archivefs.WriteFileAtomic, so a reader never observes a partially written
// file even though settings are only ever written once at archive creation.
func MarshalAndSave(path string, permissions os.FileMode, marshal func() ([]byte, error)) error {
	data, err := marshal()
	if err != nil {
		return errors.Wrap(err, "unable to marshal message")
	}
	if err := archivefs.WriteFileAtomic(path, data, permissions); err != nil {
		return errors.Wrap(err, "unable to write message data")
	}
	return nil
}
