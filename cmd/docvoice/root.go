package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "docvoice",
		Short:         "Answer questions about documents, out loud",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newAskCmd(nil))
	return cmd
}
