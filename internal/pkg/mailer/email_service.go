package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, fullName string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendWelcome(toEmail, fullName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Welcome to DocChat")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s!</h2>
			<p>Your account is ready. Upload a document and start planning with the guided assistant.</p>
			<p>If you didn't create this account, please ignore this email.</p>
		</div>
	`, fullName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send welcome mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Welcome mail sent to %s\n", toEmail)
	return nil
}
