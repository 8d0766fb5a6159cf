package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kiln-archive/kiln/cmd"
	"github.com/kiln-archive/kiln/pkg/archive"
	"github.com/kiln-archive/kiln/pkg/channel"
	"github.com/kiln-archive/kiln/pkg/restore"
)

func restoreMain(command *cobra.Command, arguments []string) error {
	if restoreConfiguration.destination == "" {
		return errors.New("--destination is required")
	}
	if restoreConfiguration.channel == "" {
		return errors.New("--channel is required")
	}

	session, err := openSession(command)
	if err != nil {
		return err
	}
	defer closeSession(session)

	revision := restoreConfiguration.entry
	if revision == "" {
		latest, ok, err := session.LatestRevision(restoreConfiguration.channel)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("cannot get latest revision in channel %s", restoreConfiguration.channel)
		}
		revision = latest
	}

	revisionPath := archive.RevisionPath(session.ArchiveDir(), restoreConfiguration.channel, revision)
	revisionFile, err := os.Open(revisionPath)
	if err != nil {
		return errors.Wrap(err, "unable to open revision manifest")
	}
	defer revisionFile.Close()

	if err := os.MkdirAll(restoreConfiguration.destination, 0o755); err != nil {
		return errors.Wrap(err, "unable to create destination directory")
	}

	settings := session.Settings()
	reader := channel.NewReader(revisionFile, settings.HashAlgorithm, session.ContentDir())

	_, err = restore.Run(reader, restore.Options{
		DestinationDir: restoreConfiguration.destination,
		Compression:    settings.Compression,
		Logger:         rootLogger().Sublogger("restore"),
	})
	return err
}

var restoreCommand = &cobra.Command{
	Use:   "restore",
	Short: "Materialize a revision into a destination directory",
	Run:   cmd.Mainify(restoreMain),
}

var restoreConfiguration struct {
	destination string
	channel     string
	entry       string
}

func init() {
	flags := restoreCommand.Flags()
	flags.StringVar(&restoreConfiguration.destination, "destination", "", "Destination directory")
	flags.StringVar(&restoreConfiguration.channel, "channel", "", "Channel name")
	flags.StringVar(&restoreConfiguration.entry, "entry", "", "Revision name (defaults to the latest)")
}
