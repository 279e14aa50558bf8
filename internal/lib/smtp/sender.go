package smtp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/campusvitality/brokerage/internal/lib/sl"
)

// Sender отправляет служебные письма через SMTP транспорт.
type Sender struct {
	transport TransportInterface
	log       *slog.Logger
}

// NewSender создает новый экземпляр Sender.
func NewSender(transport TransportInterface, log *slog.Logger) *Sender {
	return &Sender{transport: transport, log: log}
}

// Send отправляет письмо получателю. Соединение устанавливается на каждое
// письмо: объёмы переписки здесь единичные.
func (s *Sender) Send(to, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if quitErr := client.Quit(); quitErr != nil {
			s.log.Error("failed to quit SMTP session", sl.Err(quitErr))
		}
	}()

	if err = client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
