// Package mailer отправляет дайджест по SMTP или сохраняет его черновиком (.eml).
package mailer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

var (
	// ErrNoRecipients возвращается, если в письме нет ни одного адресата.
	ErrNoRecipients = errors.New("no mail recipients configured")
	// ErrSMTPNotConfigured возвращается при попытке отправки без SMTP_HOST.
	ErrSMTPNotConfigured = errors.New("SMTP_HOST is not set")
)

// SMTP — параметры подключения к почтовому серверу.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPFromEnv переносит SMTP-настройки из окружения.
func SMTPFromEnv(env *config.EnvConfig) SMTP {
	return SMTP{
		Host:     env.SMTPHost,
		Port:     env.SMTPPort,
		Username: env.SMTPUsername,
		Password: env.SMTPPassword,
	}
}

// Mailer реализует app.Mailer.
type Mailer struct {
	cfg    config.Mail
	smtp   SMTP
	clock  func() time.Time
	logger zerolog.Logger
}

// New создаёт новый экземпляр.
func New(cfg config.Mail, smtp SMTP, clock func() time.Time, logger zerolog.Logger) *Mailer {
	if clock == nil {
		clock = time.Now
	}
	return &Mailer{cfg: cfg, smtp: smtp, clock: clock, logger: logger}
}

// Send отправляет дайджест адресатам из конфигурации. attachment может быть пустым.
func (m *Mailer) Send(ctx context.Context, digest news.Digest, attachment string) error {
	if m.smtp.Host == "" {
		return ErrSMTPNotConfigured
	}
	if len(m.cfg.To) == 0 {
		return ErrNoRecipients
	}

	msg, err := m.buildMessage(digest, attachment, true)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.smtp.Port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	if m.smtp.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.smtp.Username),
			mail.WithPassword(m.smtp.Password),
		)
	}

	client, err := mail.NewClient(m.smtp.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info().Strs("to", m.cfg.To).Strs("cc", m.cfg.CC).Str("subject", digest.Subject).Msg("digest mailed")
	return nil
}

// SaveDraft записывает письмо в каталог черновиков и возвращает путь к .eml.
// Адресаты не обязательны.
func (m *Mailer) SaveDraft(digest news.Digest, attachment string) (string, error) {
	msg, err := m.buildMessage(digest, attachment, false)
	if err != nil {
		return "", err
	}

	dir := m.cfg.DraftDir
	if dir == "" {
		dir = "drafts"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create draft directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("digest_%s.eml", m.clock().Format("20060102_150405")))
	if err := msg.WriteToFile(path); err != nil {
		return "", fmt.Errorf("write draft: %w", err)
	}

	m.logger.Info().Str("path", path).Msg("digest draft saved")
	return path, nil
}

func (m *Mailer) buildMessage(digest news.Digest, attachment string, requireTo bool) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if m.cfg.From != "" {
		if err := msg.From(m.cfg.From); err != nil {
			return nil, fmt.Errorf("set from: %w", err)
		}
	}
	if len(m.cfg.To) > 0 {
		if err := msg.To(m.cfg.To...); err != nil {
			return nil, fmt.Errorf("set to: %w", err)
		}
	} else if requireTo {
		return nil, ErrNoRecipients
	}
	if len(m.cfg.CC) > 0 {
		if err := msg.Cc(m.cfg.CC...); err != nil {
			return nil, fmt.Errorf("set cc: %w", err)
		}
	}

	msg.Subject(digest.Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, digest.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, digest.HTML)

	if attachment != "" {
		if _, err := os.Stat(attachment); err != nil {
			return nil, fmt.Errorf("attachment %s: %w", attachment, err)
		}
		msg.AttachFile(attachment)
	}
	return msg, nil
}
