package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kiln-archive/kiln/cmd"
	"github.com/kiln-archive/kiln/pkg/archive"
	"github.com/kiln-archive/kiln/pkg/hash"
	"github.com/kiln-archive/kiln/pkg/manifest"
)

// verifyMain validates every revision on every channel's integrity
// trailer, printing a pass/fail line per revision plus a final summary
// count.
func verifyMain(command *cobra.Command, arguments []string) error {
	session, err := openSession(command)
	if err != nil {
		return err
	}
	defer closeSession(session)

	channels, err := session.ChannelNames()
	if err != nil {
		return err
	}

	var checked, failed int
	for _, channelName := range channels {
		revisions, err := session.RevisionNames(channelName)
		if err != nil {
			return err
		}
		for _, revision := range revisions {
			checked++
			path := archive.RevisionPath(session.ArchiveDir(), channelName, revision)
			if err := verifyOne(path, session.Settings().HashAlgorithm); err != nil {
				failed++
				fmt.Printf("FAIL %s/%s: %v\n", channelName, revision, err)
			} else {
				fmt.Printf("ok   %s/%s\n", channelName, revision)
			}
		}
	}

	fmt.Printf("%d revision(s) checked, %d failed\n", checked, failed)
	if failed > 0 {
		return errors.Errorf("%d of %d revisions failed verification", failed, checked)
	}
	return nil
}

func verifyOne(path string, algorithm hash.Algorithm) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "unable to open revision manifest")
	}
	defer f.Close()
	return manifest.Verify(f, algorithm)
}

var verifyCommand = &cobra.Command{
	Use:   "verify",
	Short: "Validate every revision's integrity trailer",
	Run:   cmd.Mainify(verifyMain),
}
