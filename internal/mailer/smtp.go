package mailer

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"github.com/rs/zerolog"
)

// SMTPConfig describes the relay outgoing mail is submitted to.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLS is "starttls" (default), "implicit" or "none".
	TLS      string
	Insecure bool
}

// SMTPSender submits encoded messages to an SMTP relay. It satisfies
// enmime.Sender. A new connection is opened for every message.
type SMTPSender struct {
	cfg SMTPConfig
	log zerolog.Logger
}

// NewSMTPSender creates an SMTPSender for the given relay.
func NewSMTPSender(cfg SMTPConfig, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log}
}

// Send delivers msg to recipients with reversePath as envelope sender.
// SMTP AUTH PLAIN is used when both username and password are set.
func (s *SMTPSender) Send(reversePath string, recipients []string, msg []byte) error {
	c, err := s.dial()
	if err != nil {
		return err
	}
	defer c.Close()

	if s.cfg.Username != "" && s.cfg.Password != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.SendMail(reversePath, recipients, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	s.log.Debug().
		Str("relay", s.addr()).
		Int("recipients", len(recipients)).
		Int("size", len(msg)).
		Msg("message submitted")

	return c.Quit()
}

func (s *SMTPSender) dial() (*gosmtp.Client, error) {
	addr := s.addr()
	tlsConfig := &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.Insecure,
	}

	var (
		c   *gosmtp.Client
		err error
	)
	switch s.cfg.TLS {
	case "none":
		c, err = gosmtp.Dial(addr)
	case "implicit":
		c, err = gosmtp.DialTLS(addr, tlsConfig)
	case "", "starttls":
		c, err = gosmtp.DialStartTLS(addr, tlsConfig)
	default:
		return nil, fmt.Errorf("unknown TLS mode: %s (use starttls, implicit, or none)", s.cfg.TLS)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return c, nil
}

func (s *SMTPSender) addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}
