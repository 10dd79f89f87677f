package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

// ErrNotifyFailed wraps any mail submission failure. The run that produced
// the digest is still considered successful; snapshots are not rolled back.
var ErrNotifyFailed = errors.New("notification delivery failed")

// EmailNotifier sends the digest over authenticated SMTP with STARTTLS.
type EmailNotifier struct {
	server    string
	port      int
	sender    string
	password  string
	recipient string
	logger    *slog.Logger

	// now and send are swappable for tests.
	now  func() time.Time
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailNotifier(server string, port int, sender, password, recipient string, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		server:    server,
		port:      port,
		sender:    sender,
		password:  password,
		recipient: recipient,
		logger:    logger.With("component", "email_notifier"),
		now:       time.Now,
		send:      smtp.SendMail,
	}
}

func (n *EmailNotifier) SendDigest(_ context.Context, newProducts map[string][]models.Product) error {
	now := n.now()

	body, err := BuildDigest(newProducts, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	msg := n.buildMessage(Subject(newProducts, now), body)
	addr := fmt.Sprintf("%s:%d", n.server, n.port)
	auth := smtp.PlainAuth("", n.sender, n.password, n.server)

	n.logger.Info("sending digest", "recipient", n.recipient, "products", countProducts(newProducts))

	// smtp.SendMail negotiates STARTTLS when the server advertises it.
	if err := n.send(addr, auth, n.sender, []string{n.recipient}, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	n.logger.Info("digest sent", "recipient", n.recipient)
	return nil
}

func (n *EmailNotifier) buildMessage(subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.sender)
	fmt.Fprintf(&b, "To: %s\r\n", n.recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
