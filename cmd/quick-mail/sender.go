package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sungwon/quick-mail/internal/mailutil"
)

func newSenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sender",
		Short: "Show the sender identity and provider status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg := rt.cfg
			user := cfg.CurrentUser()

			name, err := mailutil.DefaultSenderName(user)
			if err != nil {
				return identityError(err)
			}
			email, err := mailutil.DefaultSenderEmail(user)
			if err != nil {
				return identityError(err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "sender: %s <%s>\n", name, email)

			if cfg.Provider.Plugin == "" {
				return nil
			}
			plugin, active := mailutil.IsPluginActive(cfg.SiteInfo(), cfg.Provider.Plugin)
			if !active {
				fmt.Fprintf(w, "provider: %s not active\n", cfg.Provider.Plugin)
				return nil
			}

			match, err := mailutil.DomainsMatchProviderSender(user, cfg.ProviderSettings())
			if err != nil {
				return identityError(err)
			}
			fmt.Fprintf(w, "provider: %s (transactional: %t, domains match: %t)\n",
				plugin, cfg.Provider.Transactional, match)
			return nil
		},
	}
}
