// Package email delivers the application's transactional mail: account
// verification, magic links, password resets, and registration
// confirmations. Transport is SMTP via goemail; every send attempt is
// recorded in the email log with a pending -> sent/failed transition.
package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
)

// ErrDisabled is returned when a send is attempted without a fully
// configured SMTP transport.
var ErrDisabled = errors.New("email sending is disabled")

// Config holds the SMTP transport settings. Email is considered disabled
// if host, user, password, or the from address is missing; there are no
// fallback credentials.
type Config struct {
	Host        string // host:port
	User        string
	Password    string
	FromAddress string // RFC 5322, e.g. `"Volunteer Central" <no-reply@example.org>`
	SkipVerify  bool   // skip TLS certificate verification
}

// Client is the SMTP notification sender. A disabled client is valid to
// construct; sends through it fail with ErrDisabled.
type Client struct {
	smtp     *goemail.SMTP
	fromName string
	fromAddr string
	disabled bool
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" || cfg.FromAddress == "" {
		return &Client{disabled: true}, nil
	}

	u, err := url.Parse(fmt.Sprintf("smtps://%s:%s@%s", cfg.User, cfg.Password, cfg.Host))
	if err != nil {
		return nil, fmt.Errorf("parse smtp host: %w", err)
	}

	from, err := mail.ParseAddress(cfg.FromAddress)
	if err != nil {
		return nil, fmt.Errorf("parse from address: %w", err)
	}

	tlsConfig := &tls.Config{}
	if cfg.SkipVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &Client{
		smtp:     smtp,
		fromName: from.Name,
		fromAddr: from.Address,
	}, nil
}

// Enabled reports whether the transport is configured for delivery.
func (c *Client) Enabled() bool {
	return !c.disabled
}

// send makes a single delivery attempt. There is no retry or backoff;
// failures are reported to the caller.
func (c *Client) send(to, subject, htmlBody string) error {
	if c.disabled {
		return ErrDisabled
	}

	msg := goemail.NewHTMLMessage(c.fromAddr, subject, htmlBody)
	msg.SetName(c.fromName)
	msg.AddTo(to)

	if err := c.smtp.Send(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
