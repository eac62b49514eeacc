package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sungwon/quick-mail/internal/mailer"
)

func newSendCommand() *cobra.Command {
	var (
		to         string
		subject    string
		body       string
		bodyFile   string
		attach     []string
		attachName string
		dns        bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message as the configured user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg := rt.cfg
			stdin := cmd.InOrStdin()

			if bodyFile == "-" && slices.Contains(attach, "-") {
				return errors.New("--body-file and --attach cannot both read stdin")
			}

			if bodyFile != "" {
				data, err := readInput(bodyFile, stdin)
				if err != nil {
					return fmt.Errorf("read body: %w", err)
				}
				body = string(data)
			}

			attachments := make([]string, 0, len(attach))
			for _, path := range attach {
				if path != "-" {
					attachments = append(attachments, path)
					continue
				}
				staged, err := mailer.StageAttachment(cfg.Site.UploadTmpDir, attachName, stdin)
				if err != nil {
					return err
				}
				defer os.Remove(staged)
				attachments = append(attachments, staged)
			}

			validator, err := rt.newValidator()
			if err != nil {
				return err
			}

			sender := mailer.NewSMTPSender(mailer.SMTPConfig{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				TLS:      cfg.SMTP.TLS,
				Insecure: cfg.SMTP.Insecure,
			}, rt.log)

			m := mailer.New(sender, validator, mailer.Config{
				Site:           cfg.SiteInfo(),
				User:           cfg.CurrentUser(),
				Provider:       cfg.ProviderSettings(),
				ProviderPlugin: cfg.Provider.Plugin,
				Validate:       rt.validateOption(dns),
				MinChars:       cfg.Validation.MinChars,
				MaxChars:       cfg.Validation.MaxChars,
			}, rt.log)

			receipt, err := m.Send(cmd.Context(), mailer.Message{
				Recipients:  to,
				Subject:     subject,
				Body:        body,
				Attachments: attachments,
			})

			w := cmd.OutOrStdout()
			if receipt != nil {
				if f := receipt.Filter; len(f.Invalid) > 0 {
					fmt.Fprintf(w, "invalid: %s\n", strings.Join(f.Invalid, ", "))
				}
				if f := receipt.Filter; len(f.Duplicates) > 0 {
					fmt.Fprintf(w, "duplicate: %s\n", strings.Join(f.Duplicates, ", "))
				}
			}
			if err != nil {
				return identityError(err)
			}

			fmt.Fprintf(w, "sent to %d recipient(s)\n", len(receipt.Recipients))
			if receipt.TransactionalOff {
				fmt.Fprintln(w, "provider transactional mode switched off for this message")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipients separated by commas or spaces")
	cmd.Flags().StringVar(&subject, "subject", "", "Message subject")
	cmd.Flags().StringVar(&body, "body", "", "Message text")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the message text from a file (- for stdin)")
	cmd.Flags().StringArrayVar(&attach, "attach", nil, "Attach a file (- for stdin); may be repeated")
	cmd.Flags().StringVar(&attachName, "attach-name", "attachment", "File name for an attachment read from stdin")
	cmd.Flags().BoolVar(&dns, "dns", false, "Require an MX record for each recipient domain")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
