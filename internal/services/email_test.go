package services

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadforms/internal/config"
	apperrors "leadforms/pkg/errors"
)

func testEmailConfig() *config.EmailConfig {
	return &config.EmailConfig{
		Provider:  config.EmailProviderSMTP,
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		Username:  "forms@example.com",
		Password:  "secret",
		FromEmail: "forms@example.com",
	}
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	sender := NewSMTPSender(testEmailConfig())
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "jane@x.com",
		Subject: "Thank you for your Web Development inquiry",
		HTML:    "<h2>Thank you, Jane!</h2>",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "forms@example.com", gotFrom)
	assert.Equal(t, []string{"jane@x.com"}, gotTo)
	assert.Contains(t, gotMsg, "From: forms@example.com\r\n")
	assert.Contains(t, gotMsg, "To: jane@x.com\r\n")
	assert.Contains(t, gotMsg, "Subject: Thank you for your Web Development inquiry\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.Contains(t, gotMsg, "<h2>Thank you, Jane!</h2>")
}

func TestSMTPSenderMultipartWithText(t *testing.T) {
	var gotMsg string
	sender := NewSMTPSender(testEmailConfig())
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	}

	err := sender.Send(context.Background(), EmailMessage{To: "jane@x.com", Subject: "Hi", HTML: "<p>Hi</p>", Text: "Hi"})
	require.NoError(t, err)

	assert.Contains(t, gotMsg, "Content-Type: multipart/alternative;")
	assert.Contains(t, gotMsg, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, gotMsg, "Content-Type: text/html; charset=UTF-8")
}

func TestSMTPSenderStripsHeaderInjection(t *testing.T) {
	var gotMsg string
	sender := NewSMTPSender(testEmailConfig())
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "admin@example.com",
		Subject: "New Web Development inquiry from Jane\r\nBcc: victim@example.com",
		HTML:    "<p>x</p>",
	})
	require.NoError(t, err)
	assert.False(t, strings.Contains(gotMsg, "\r\nBcc:"))
}

func TestSMTPSenderWrapsTransportErrors(t *testing.T) {
	sender := NewSMTPSender(testEmailConfig())
	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("dial tcp: connection refused")
	}

	err := sender.Send(context.Background(), EmailMessage{To: "jane@x.com", Subject: "Hi", HTML: "<p>Hi</p>"})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSenderSend(t *testing.T) {
	client := &fakeSES{}
	cfg := testEmailConfig()
	cfg.FromName = "Lead Forms"
	sender := NewSESSender(client, cfg)

	err := sender.Send(context.Background(), EmailMessage{To: "jane@x.com", Subject: "Hi", HTML: "<p>Hi</p>"})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "Lead Forms <forms@example.com>", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"jane@x.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(client.input.Content.Simple.Subject.Data))
	assert.Equal(t, "<p>Hi</p>", aws.ToString(client.input.Content.Simple.Body.Html.Data))
	assert.Nil(t, client.input.Content.Simple.Body.Text)
}

func TestSESSenderWrapsErrors(t *testing.T) {
	sender := NewSESSender(&fakeSES{err: errors.New("MessageRejected")}, testEmailConfig())

	err := sender.Send(context.Background(), EmailMessage{To: "jane@x.com", Subject: "Hi", HTML: "<p>Hi</p>"})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestNewEmailSenderSelectsProvider(t *testing.T) {
	ctx := context.Background()

	cfg := testEmailConfig()
	sender, err := NewEmailSender(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, sender)

	cfg = &config.EmailConfig{Provider: config.EmailProviderConsole}
	sender, err = NewEmailSender(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleSender{}, sender)
	assert.NoError(t, sender.Send(ctx, EmailMessage{To: "jane@x.com", Subject: "Hi"}))

	cfg = &config.EmailConfig{Provider: config.EmailProviderSendGrid, SendGridAPIKey: "SG.test"}
	sender, err = NewEmailSender(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, sender)

	_, err = NewEmailSender(ctx, &config.EmailConfig{Provider: config.EmailProviderSendGrid})
	assert.Error(t, err)

	_, err = NewEmailSender(ctx, &config.EmailConfig{Provider: config.EmailProviderSMTP})
	assert.Error(t, err)
}

func TestSMTPSenderAuthOnlyWithCredentials(t *testing.T) {
	var gotAuth smtp.Auth
	capture := func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAuth = a
		return nil
	}
	msg := EmailMessage{To: "jane@x.com", Subject: "Hi", HTML: "<p>Hi</p>"}

	sender := NewSMTPSender(testEmailConfig())
	sender.sendMail = capture
	require.NoError(t, sender.Send(context.Background(), msg))
	assert.NotNil(t, gotAuth)

	cfg := testEmailConfig()
	cfg.Username = ""
	cfg.Password = ""
	sender = NewSMTPSender(cfg)
	sender.sendMail = capture
	require.NoError(t, sender.Send(context.Background(), msg))
	assert.Nil(t, gotAuth)
}
