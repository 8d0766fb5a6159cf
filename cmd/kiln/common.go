package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kiln-archive/kiln/cmd"
	"github.com/kiln-archive/kiln/pkg/archive"
)

// requireArchiveFlag returns the global --archive flag's value, failing if
// it was left empty (cobra's MarkPersistentFlagRequired only enforces
// presence when the flag is bound on the invoked command itself, so
// subcommands re-check here).
func requireArchiveFlag() (string, error) {
	if rootConfiguration.archive == "" {
		return "", errors.New("--archive is required")
	}
	return rootConfiguration.archive, nil
}

// openSession resolves --archive and opens it, acquiring the exclusive
// lock. Callers must Close the returned session.
func openSession(*cobra.Command) (*archive.Session, error) {
	archiveDir, err := requireArchiveFlag()
	if err != nil {
		return nil, err
	}
	session, err := archive.Open(archiveDir)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// closeSession releases the session lock, warning rather than failing the
// command if release itself errors.
func closeSession(session *archive.Session) {
	if err := session.Close(); err != nil {
		cmd.Warning(err.Error())
	}
}
