package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kiln-archive/kiln/cmd"
	"github.com/kiln-archive/kiln/pkg/archive"
	"github.com/kiln-archive/kiln/pkg/codec"
	"github.com/kiln-archive/kiln/pkg/hash"
)

// compressionKindFlag adapts codec.Kind to pflag.Value so --compression
// rejects an unknown scheme name at flag-parsing time rather than at Init.
type compressionKindFlag codec.Kind

func (k *compressionKindFlag) String() string {
	if *k == "" {
		return string(codec.KindNone)
	}
	return string(*k)
}

func (k *compressionKindFlag) Set(value string) error {
	switch value {
	case "none", string(codec.KindNone):
		*k = compressionKindFlag(codec.KindNone)
	case "bzip2", string(codec.KindBzip2):
		*k = compressionKindFlag(codec.KindBzip2)
	default:
		return errors.Errorf("unknown compression kind %q", value)
	}
	return nil
}

func (k *compressionKindFlag) Type() string {
	return "compression"
}

func newMain(command *cobra.Command, arguments []string) error {
	archiveDir, err := requireArchiveFlag()
	if err != nil {
		return err
	}

	compression := codec.Compression{Kind: codec.Kind(newConfiguration.compression)}
	if compression.Kind == codec.KindBzip2 {
		compression.Level = newConfiguration.compressionLevel
	}

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return errors.Wrap(err, "unable to create archive directory")
	}

	settings := archive.Settings{
		HashAlgorithm: hash.AlgorithmSHA256,
		Compression:   compression,
	}
	if err := archive.Init(archiveDir, settings); err != nil {
		return err
	}

	return nil
}

var newCommand = &cobra.Command{
	Use:   "new",
	Short: "Initialize a new archive",
	Run:   cmd.Mainify(newMain),
}

var newConfiguration struct {
	compression      compressionKindFlag
	compressionLevel int
}

func init() {
	newConfiguration.compression = compressionKindFlag(codec.KindNone)

	flags := newCommand.Flags()
	flags.Var(&newConfiguration.compression, "compression", "Compression scheme for new blobs (none|bzip2)")
	flags.IntVar(&newConfiguration.compressionLevel, "compression-level", 9, "Bzip2 compression level (0-9)")
}

var _ pflag.Value = (*compressionKindFlag)(nil)
