package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kiln-archive/kiln/cmd"
	"github.com/kiln-archive/kiln/pkg/backup"
	"github.com/kiln-archive/kiln/pkg/channel"
)

func backupMain(command *cobra.Command, arguments []string) error {
	if backupConfiguration.source == "" {
		return errors.New("--source is required")
	}
	if backupConfiguration.channel == "" {
		return errors.New("--channel is required")
	}

	session, err := openSession(command)
	if err != nil {
		return err
	}
	defer closeSession(session)

	revisionPath, _, err := session.NewRevisionPath(backupConfiguration.channel)
	if err != nil {
		return err
	}

	revisionFile, err := os.Create(revisionPath)
	if err != nil {
		return errors.Wrap(err, "unable to create revision file")
	}

	settings := session.Settings()
	writer := channel.NewWriter(revisionFile, settings.HashAlgorithm, session.ContentDir())

	_, runErr := backup.Run(writer, backup.Options{
		SourceDir:   backupConfiguration.source,
		Compression: settings.Compression,
		HashAlgo:    settings.HashAlgorithm,
		Workers:     backupConfiguration.workers,
		Logger:      rootLogger().Sublogger("backup"),
	})

	closeErr := writer.Close()
	fileCloseErr := revisionFile.Close()

	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "unable to finalize revision manifest")
	}
	if fileCloseErr != nil {
		return errors.Wrap(fileCloseErr, "unable to close revision file")
	}
	return nil
}

var backupCommand = &cobra.Command{
	Use:   "backup",
	Short: "Create a new revision on a channel",
	Run:   cmd.Mainify(backupMain),
}

var backupConfiguration struct {
	source  string
	channel string
	workers int
}

func init() {
	flags := backupCommand.Flags()
	flags.StringVar(&backupConfiguration.source, "source", "", "Source directory to back up")
	flags.StringVar(&backupConfiguration.channel, "channel", "", "Channel name")
	flags.IntVar(&backupConfiguration.workers, "workers", backup.DefaultWorkerCount, "Number of parallel worker goroutines")
}
