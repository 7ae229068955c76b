package notify

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"attendance-station/internal/settings"
)

// EmailNotifier sends attendance mail to the employee's address over SMTP.
// The SMTP endpoint comes from the settings store at send time, so operators
// can change it without a restart.
type EmailNotifier struct {
	settings *settings.Service
}

func NewEmailNotifier(svc *settings.Service) *EmailNotifier {
	return &EmailNotifier{settings: svc}
}

func (n *EmailNotifier) Name() string {
	return "email"
}

func (n *EmailNotifier) NotifyAttendance(event Event) error {
	cfg := n.settings.Snapshot()
	if !cfg.EmailEnabled || cfg.SMTPServer == "" || event.EmployeeEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Attendance %s recorded", event.Action)
	body := fmt.Sprintf("%s recorded for %s on %s at %s.",
		event.Action, event.EmployeeName, event.Date, event.Time)

	from := cfg.SMTPUser
	if from == "" {
		from = "no-reply@attendance-station.local"
	}

	msg := []byte("From: " + from + "\r\n" +
		"To: " + event.EmployeeEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := net.JoinHostPort(cfg.SMTPServer, strconv.Itoa(cfg.SMTPPort))

	if cfg.SMTPUseSSL {
		return n.sendImplicitTLS(addr, cfg, from, event.EmployeeEmail, msg)
	}
	return n.sendStartTLS(addr, cfg, from, event.EmployeeEmail, msg)
}

func (n *EmailNotifier) sendStartTLS(addr string, cfg settings.Snapshot, from, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if cfg.SMTPUseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: cfg.SMTPServer}); err != nil {
			return err
		}
	}

	return n.submit(client, cfg, from, to, msg)
}

func (n *EmailNotifier) sendImplicitTLS(addr string, cfg settings.Snapshot, from, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.SMTPServer})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, cfg.SMTPServer)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	return n.submit(client, cfg, from, to, msg)
}

func (n *EmailNotifier) submit(client *smtp.Client, cfg settings.Snapshot, from, to string, msg []byte) error {
	if cfg.SMTPUser != "" && cfg.SMTPPassword != "" {
		auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPServer)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
