package codec

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Kind identifies a compression scheme.
type Kind string

const (
	// KindNone performs no compression; blobs are stored as plain copies.
	KindNone Kind = "None"
	// KindBzip2 streams blobs through a bzip2 encoder/decoder.
	KindBzip2 Kind = "Bzip2"
)

// Compression is the archive's fixed-for-its-lifetime compression choice.
// It marshals to the settings.json shape the archive format has always
// used: the bare string "None", or {"Bzip2":{"level":N}}.
type Compression struct {
	Kind  Kind
	Level int
}

// Validate checks that the compression value is well-formed, in particular
// that a Bzip2 level falls within the encoder's supported range. archive.Init
// calls this at archive-creation time so a bad level fails immediately
// rather than on the first blob write.
func (c Compression) Validate() error {
	switch c.Kind {
	case KindNone:
		return nil
	case KindBzip2:
		if c.Level < 0 || c.Level > 9 {
			return errors.Errorf("bzip2 compression level %d out of range 0..=9", c.Level)
		}
		return nil
	default:
		return errors.Errorf("unknown compression kind %q", c.Kind)
	}
}

// bzip2Envelope mirrors the Bzip2 struct variant's JSON shape.
type bzip2Envelope struct {
	Bzip2 *struct {
		Level int `json:"level"`
	} `json:"Bzip2"`
}

// MarshalJSON implements json.Marshaler.
func (c Compression) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindNone:
		return json.Marshal("None")
	case KindBzip2:
		return json.Marshal(bzip2Envelope{Bzip2: &struct {
			Level int `json:"level"`
		}{Level: c.Level}})
	default:
		return nil, errors.Errorf("unknown compression kind %q", c.Kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler. It accepts either the bare
// string "None" or an object with a "Bzip2" key.
func (c *Compression) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString != string(KindNone) {
			return errors.Errorf("unrecognized compression value %q", asString)
		}
		*c = Compression{Kind: KindNone}
		return nil
	}

	var envelope bzip2Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return errors.Wrap(err, "unable to parse compression value")
	}
	if envelope.Bzip2 == nil {
		return errors.New("unrecognized compression value")
	}
	*c = Compression{Kind: KindBzip2, Level: envelope.Bzip2.Level}
	return nil
}
