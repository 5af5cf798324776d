package users

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	mail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
}

// SMTPNotifier delivers activation messages over SMTP.
type SMTPNotifier struct {
	client *mail.Client
	from   string
	base   string
}

// NewSMTPNotifier dials nothing up front; the client connects per send.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "unable to create smtp client")
	}

	return &SMTPNotifier{
		client: client,
		from:   cfg.From,
		base:   cfg.BaseURL,
	}, nil
}

// SendAccountActivation mails the token to the address used at signup.
func (n *SMTPNotifier) SendAccountActivation(ctx context.Context, email, token string) error {
	m := mail.NewMsg()
	if err := m.From(n.from); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "invalid sender address")
	}
	if err := m.To(email); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "invalid recipient address")
	}

	m.Subject("Account Activation")
	m.SetBodyString(mail.TypeTextPlain, activationBody(n.base, token))

	if err := n.client.DialAndSendWithContext(ctx, m); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "activation e-mail dispatch failed")
	}

	return nil
}

// LogNotifier prints the activation message instead of sending it.
// Development stand-in for a real transport.
type LogNotifier struct {
	Logger Logger
	Base   string
}

func (n LogNotifier) SendAccountActivation(_ context.Context, email, token string) error {
	logger := n.Logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	logger.Info("to: %s", email)
	logger.Info("token: %s", token)
	logger.Info("link: %s", activationLink(n.Base, token))
	return nil
}

func activationBody(base, token string) string {
	return fmt.Sprintf(
		"Your account activation token is %s\n\nActivate your account: %s\n",
		token,
		activationLink(base, token),
	)
}

func activationLink(base, token string) string {
	return fmt.Sprintf("%s/api/1.0/users/token/%s", base, token)
}
