package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime"
	"mime/quotedprintable"
	"net/smtp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"leadforms/internal/config"
	apperrors "leadforms/pkg/errors"
)

// EmailSender delivers one message. Implementations are selected by EMAIL_PROVIDER.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a single outgoing email
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string // plain text fallback, optional
}

// NewEmailSender builds the sender configured by cfg
func NewEmailSender(ctx context.Context, cfg *config.EmailConfig) (EmailSender, error) {
	switch cfg.Provider {
	case config.EmailProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("EMAIL_HOST must be set for the smtp provider")
		}
		log.Printf("[EMAIL] Using SMTP relay %s:%d", cfg.SMTPHost, cfg.SMTPPort)
		return NewSMTPSender(cfg), nil

	case config.EmailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY must be set for the sendgrid provider")
		}
		log.Println("[EMAIL] Using SendGrid")
		return NewSendGridSender(cfg), nil

	case config.EmailProviderSES:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		log.Printf("[EMAIL] Using AWS SES in %s", awsCfg.Region)
		return NewSESSender(sesv2.NewFromConfig(awsCfg), cfg), nil

	default:
		log.Println("[EMAIL] No mail transport configured, emails will be logged only")
		return NewConsoleSender(), nil
	}
}

// ============================================================
// SMTP
// ============================================================

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends mail through an SMTP relay. net/smtp upgrades to STARTTLS
// when the server offers it.
type SMTPSender struct {
	cfg      *config.EmailConfig
	sendMail sendMailFunc
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

// Send implements EmailSender
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}

	message, err := buildMIMEMessage(formatAddress(s.cfg.FromName, s.cfg.FromEmail), msg)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeTransport, "failed to build email", err)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := s.sendMail(addr, auth, s.cfg.FromEmail, []string{msg.To}, message); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeTransport, "failed to send email", err)
	}
	return nil
}

// buildMIMEMessage renders headers and an HTML body, as multipart/alternative
// when a plain text fallback is present.
func buildMIMEMessage(from string, msg EmailMessage) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", headerValue(from))
	fmt.Fprintf(&buf, "To: %s\r\n", headerValue(msg.To))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if msg.Text == "" {
		buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		if err := writeQuotedPrintable(&buf, msg.HTML); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	boundary := "----=_LeadFormsPart_7d3a91c2"
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	parts := []struct{ contentType, body string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	}
	for _, part := range parts {
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: %s; charset=UTF-8\r\n", part.contentType)
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		if err := writeQuotedPrintable(&buf, part.body); err != nil {
			return nil, err
		}
		buf.WriteString("\r\n")
	}
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}

func writeQuotedPrintable(buf *bytes.Buffer, body string) error {
	w := quotedprintable.NewWriter(buf)
	if _, err := w.Write([]byte(body)); err != nil {
		return err
	}
	return w.Close()
}

// headerValue drops line breaks so submitted names cannot inject headers
func headerValue(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return mime.QEncoding.Encode("utf-8", name) + " <" + email + ">"
}

// ============================================================
// SendGrid
// ============================================================

// SendGridSender sends mail through the SendGrid v3 API
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridSender creates a new SendGrid sender
func NewSendGridSender(cfg *config.EmailConfig) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// Send implements EmailSender
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", msg.To)

	text := msg.Text
	if text == "" {
		text = msg.Subject
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, text, msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeTransport, "sendgrid send failed", err)
	}
	if response.StatusCode >= 400 {
		return apperrors.New(apperrors.ErrCodeTransport, fmt.Sprintf("sendgrid returned status %d", response.StatusCode))
	}
	return nil
}

// ============================================================
// AWS SES
// ============================================================

// SESAPI is the subset of the SES v2 client used to send mail
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends mail through AWS SES v2
type SESSender struct {
	client    SESAPI
	fromEmail string
	fromName  string
}

// NewSESSender creates a new SES sender
func NewSESSender(client SESAPI, cfg *config.EmailConfig) *SESSender {
	return &SESSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// Send implements EmailSender
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	body := &types.Body{
		Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(formatAddress(s.fromName, s.fromEmail)),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeTransport, "SES send failed", err)
	}
	return nil
}

// ============================================================
// Console
// ============================================================

// ConsoleSender logs messages instead of sending them (development mode)
type ConsoleSender struct{}

// NewConsoleSender creates a new console sender
func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{}
}

// Send implements EmailSender
func (s *ConsoleSender) Send(ctx context.Context, msg EmailMessage) error {
	log.Printf("[EMAIL] Would send to %s: %s", msg.To, msg.Subject)
	return nil
}

var (
	_ EmailSender = (*SMTPSender)(nil)
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*SESSender)(nil)
	_ EmailSender = (*ConsoleSender)(nil)
)
