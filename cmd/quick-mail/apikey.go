package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sungwon/quick-mail/internal/auth"
)

func newAPIKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apikey",
		Short: "Generate an API key and the hash to configure as api.key_hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, hash, err := auth.NewAPIKey()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "key:  %s\n", key)
			fmt.Fprintf(w, "hash: %s\n", hash)
			return nil
		},
	}
}
