package encoding

import (
	"encoding/json"
	"os"
)

// LoadAndUnmarshalJSON loads data from the specified path and decodes it as
// JSON into the specified structure.
func LoadAndUnmarshalJSON(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		return json.Unmarshal(data, value)
	})
}

// MarshalAndSaveJSON marshals value as pretty-printed JSON and saves it to
// the specified path with the given permissions.
func MarshalAndSaveJSON(path string, permissions os.FileMode, value interface{}) error {
	return MarshalAndSave(path, permissions, func() ([]byte, error) {
		return json.MarshalIndent(value, "", "  ")
	})
}
