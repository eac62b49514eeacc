package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sungwon/quick-mail/internal/mailutil"
)

func newValidateCommand() *cobra.Command {
	var dns bool

	cmd := &cobra.Command{
		Use:   "validate ADDRESS...",
		Short: "Check whether email addresses are valid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			validator, err := rt.newValidator()
			if err != nil {
				return err
			}

			opt := rt.validateOption(dns)
			w := cmd.OutOrStdout()
			for _, address := range args {
				status := "invalid"
				if validator.IsValidEmailDomain(cmd.Context(), address, opt) {
					status = "valid"
				}
				fmt.Fprintf(w, "%s\t%s\n", address, status)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dns, "dns", false, "Require an MX record for each domain")

	return cmd
}

// filterOutput is the JSON form of a filtered recipient list.
type filterOutput struct {
	Report     string   `json:"report"`
	Invalid    []string `json:"invalid"`
	Duplicates []string `json:"duplicates"`
	Accepted   []string `json:"accepted"`
}

func newFilterCommand() *cobra.Command {
	var (
		to     string
		dns    bool
		legacy bool
		users  bool
	)

	cmd := &cobra.Command{
		Use:   "filter RECIPIENTS",
		Short: "Sanitize a recipient list and report invalid or repeated addresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			validator, err := rt.newValidator()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if users {
				for _, email := range validator.FilterUserEmails(cmd.Context(), args[0]) {
					fmt.Fprintln(w, email)
				}
				return nil
			}

			if to == "" {
				to = rt.cfg.User.Email
			}
			result := validator.FilterEmailInput(cmd.Context(), to, args[0], rt.validateOption(dns))

			if legacy {
				fmt.Fprintln(w, result.Legacy())
				return nil
			}

			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			return encoder.Encode(filterOutput{
				Report:     result.Report(),
				Invalid:    orEmpty(result.Invalid),
				Duplicates: orEmpty(result.Duplicates),
				Accepted:   orEmpty(result.Accepted),
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Sender address excluded from recipients (default: user.email)")
	cmd.Flags().BoolVar(&dns, "dns", false, "Require an MX record for each domain")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Print the tab separated report and list")
	cmd.Flags().BoolVar(&users, "users", false, "Filter a bulk user list without a report")

	return cmd
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// identityError adds the profile location to a missing identity error.
func identityError(err error) error {
	var missing *mailutil.MissingIdentityError
	if errors.As(err, &missing) {
		return fmt.Errorf("%w: complete your profile at %s", err, mailutil.ProfileURL)
	}
	return err
}
