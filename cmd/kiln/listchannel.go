package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiln-archive/kiln/cmd"
)

func listChannelMain(command *cobra.Command, arguments []string) error {
	session, err := openSession(command)
	if err != nil {
		return err
	}
	defer closeSession(session)

	channels, err := session.ChannelNames()
	if err != nil {
		return err
	}
	for _, name := range channels {
		fmt.Println(name)
	}
	return nil
}

var listChannelCommand = &cobra.Command{
	Use:   "list-channel",
	Short: "Print channel names, one per line",
	Run:   cmd.Mainify(listChannelMain),
}
