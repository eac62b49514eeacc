package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/rs/zerolog"

	"github.com/sungwon/quick-mail/internal/logger"
	"github.com/sungwon/quick-mail/internal/mailutil"
	"github.com/sungwon/quick-mail/internal/metrics"
)

// TransactionalHeader carries per-message options to a SparkPost relay.
const TransactionalHeader = "X-MSYS-API"

// transactionalOff switches transactional sending off for one message.
const transactionalOff = `{"options":{"transactional":false}}`

var (
	// ErrInvalidSubject is returned when the subject is empty or too long.
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrEmptyBody is returned when the message has no text.
	ErrEmptyBody = errors.New("empty message body")
	// ErrNoRecipients is matched by every RecipientsError.
	ErrNoRecipients = errors.New("no valid recipients")
)

// RecipientsError reports that filtering left nothing to send to.
type RecipientsError struct {
	Result *mailutil.FilterResult
}

func (e *RecipientsError) Error() string {
	return fmt.Sprintf("no valid recipients: %d invalid, %d duplicate",
		len(e.Result.Invalid), len(e.Result.Duplicates))
}

func (e *RecipientsError) Is(target error) bool {
	return target == ErrNoRecipients
}

// Config holds the host settings a Mailer applies to every message.
type Config struct {
	Site     mailutil.Site
	User     *mailutil.User
	Provider mailutil.ProviderSettings
	// ProviderPlugin is the plugin fragment that enables the provider
	// integration. Empty disables it.
	ProviderPlugin string
	Validate       mailutil.ValidateOption
	MinChars       int
	MaxChars       int
}

// Message is a mail composed by the user.
type Message struct {
	// Recipients is the raw recipient list as typed.
	Recipients  string
	Subject     string
	Body        string
	Attachments []string
}

// Receipt describes a submitted message.
type Receipt struct {
	Filter           *mailutil.FilterResult
	Recipients       []string
	TransactionalOff bool
}

// Mailer composes messages from the current user to a filtered recipient
// list and hands them to a sender.
type Mailer struct {
	sender    enmime.Sender
	validator *mailutil.Validator
	cfg       Config
	log       zerolog.Logger
}

// New creates a Mailer.
func New(sender enmime.Sender, validator *mailutil.Validator, cfg Config, log zerolog.Logger) *Mailer {
	if cfg.MinChars == 0 {
		cfg.MinChars = mailutil.DefaultMinChars
	}
	if cfg.MaxChars == 0 {
		cfg.MaxChars = mailutil.DefaultMaxChars
	}
	return &Mailer{sender: sender, validator: validator, cfg: cfg, log: log}
}

// Send checks and sends msg. The sender's own address is never mailed.
// A *mailutil.MissingIdentityError is returned when the user profile has
// no name or email, and a *RecipientsError when no recipient survives
// filtering. The receipt is returned alongside a RecipientsError so the
// caller can show the filter report.
func (m *Mailer) Send(ctx context.Context, msg Message) (*Receipt, error) {
	log := m.log
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		log = log.With().Str("correlation_id", id).Logger()
	}

	name, err := mailutil.DefaultSenderName(m.cfg.User)
	if err != nil {
		return nil, err
	}
	from, err := mailutil.DefaultSenderEmail(m.cfg.User)
	if err != nil {
		return nil, err
	}

	if !mailutil.CheckCharCount(msg.Subject, m.cfg.Site.Charset, m.cfg.MinChars, m.cfg.MaxChars) {
		return nil, ErrInvalidSubject
	}
	if strings.TrimSpace(msg.Body) == "" {
		return nil, ErrEmptyBody
	}

	result := m.validator.FilterEmailInput(ctx, from, msg.Recipients, m.cfg.Validate)
	receipt := &Receipt{Filter: result, Recipients: result.Accepted}
	if len(result.Accepted) == 0 {
		return receipt, &RecipientsError{Result: result}
	}

	builder := enmime.Builder().
		From(name, from).
		Subject(msg.Subject).
		Text([]byte(msg.Body))
	for _, to := range result.Accepted {
		builder = builder.To("", to)
	}
	for _, path := range msg.Attachments {
		builder = builder.AddFileAttachment(path)
	}

	if m.providerActive() && mailutil.ShouldToggleProviderTransactional(m.cfg.Provider, msg.Attachments) {
		builder = builder.Header(TransactionalHeader, transactionalOff)
		receipt.TransactionalOff = true
		metrics.TransactionalTogglesTotal.Inc()
	}

	if err := builder.Send(m.sender); err != nil {
		metrics.MessagesSentTotal.WithLabelValues("failure").Inc()
		log.Error().
			Err(err).
			Int("recipients", len(result.Accepted)).
			Msg("failed to send message")
		return receipt, fmt.Errorf("send message: %w", err)
	}

	metrics.MessagesSentTotal.WithLabelValues("success").Inc()
	log.Info().
		Int("recipients", len(result.Accepted)).
		Int("attachments", len(msg.Attachments)).
		Bool("transactional_off", receipt.TransactionalOff).
		Msg("message sent")

	return receipt, nil
}

func (m *Mailer) providerActive() bool {
	if m.cfg.ProviderPlugin == "" {
		return false
	}
	_, ok := mailutil.IsPluginActive(m.cfg.Site, m.cfg.ProviderPlugin)
	return ok
}
