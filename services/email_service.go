package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"

	"golang.org/x/sync/errgroup"
)

// Notifier доставляет уведомления о переходах регистрационной машины.
// Для сервисов ошибка доставки не фатальна: они логируют её и не
// откатывают уже сохранённый переход.
type Notifier interface {
	NotifyUser(ctx context.Context, address, subject, body string) error
	NotifyAdmins(ctx context.Context, subject, body string, addresses []string) error
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type smtpNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) Notifier {
	return &smtpNotifier{cfg: cfg}
}

func (n *smtpNotifier) NotifyUser(ctx context.Context, address, subject, body string) error {
	return n.send(address, subject, body)
}

// NotifyAdmins рассылает одно и то же письмо каждому администратору.
// Отправка параллельная; возвращается первая ошибка.
func (n *smtpNotifier) NotifyAdmins(ctx context.Context, subject, body string, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	for _, address := range addresses {
		addr := address
		g.Go(func() error {
			if err := n.send(addr, subject, body); err != nil {
				return fmt.Errorf("failed to notify admin %s: %w", addr, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (n *smtpNotifier) send(to, subject, body string) error {
	if n.cfg.Host == "" {
		return errors.New("smtp host is not configured")
	}

	msg := []byte("To: " + to + "\r\n" +
		"From: " + n.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/plain; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	tlsconfig := &tls.Config{
		ServerName: n.cfg.Host,
	}

	var client *smtp.Client
	if n.cfg.Port == 465 {
		// Прямое TLS-соединение
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial failed: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, n.cfg.Host)
		if err != nil {
			return fmt.Errorf("failed to create smtp client: %w", err)
		}
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp STARTTLS failed: %w", err)
		}
	}
	defer client.Quit()

	if n.cfg.User != "" {
		auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write smtp message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close smtp DATA: %w", err)
	}

	return nil
}
