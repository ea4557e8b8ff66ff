package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"path/filepath"
	"strings"

	"caspian/internal/config"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
	Enabled  bool
}

func NewMailService(cfg config.SMTP) *MailService {
	enabled := cfg.Host != "" && cfg.Port != "" && cfg.Username != "" && cfg.Password != "" && cfg.From != ""
	if !enabled {
		log.Println("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		To:       cfg.To,
		Enabled:  enabled,
	}
}

// send delivers a message over the relay. smtp.SendMail negotiates STARTTLS
// with the server before authenticating.
func (s *MailService) send(to []string, subject, contentType, body string) error {
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: Caspian <%s>\r\n"+
		"Subject: %s\r\n"+
		"MIME-version: 1.0;\nContent-Type: %s; charset=\"UTF-8\";\n\n%s",
		strings.Join(to, ","), s.From, subject, contentType, body))

	return smtp.SendMail(addr, auth, s.From, to, msg)
}

// SendContactMessage delivers a contact-form submission to the blog owner.
// It is synchronous, a relay failure propagates to the handler.
func (s *MailService) SendContactMessage(name, email, question string) error {
	if !s.Enabled {
		return fmt.Errorf("mail service is not configured")
	}

	body := fmt.Sprintf("Name: %s\nEmail: %s\nQuestion: %s", name, email, question)
	return s.send([]string{s.To}, "New Message", "text/plain", body)
}

func (s *MailService) parseTemplate(templateName string, data interface{}) (string, error) {
	path := filepath.Join("web", "templates", "email", templateName)
	t, err := template.ParseFiles(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}

// SendCommentNotification tells a post's author about a new comment. Fire and
// forget, a failure here is logged and never fails the request.
func (s *MailService) SendCommentNotification(email, commenter, postTitle, text, postLink string) {
	if !s.Enabled {
		return
	}

	go func() {
		body, err := s.parseTemplate("notification.html", map[string]string{
			"Commenter": commenter,
			"PostTitle": postTitle,
			"Text":      text,
			"PostLink":  postLink,
		})
		if err != nil {
			log.Printf("Error rendering notification email: %v", err)
			return
		}

		if err := s.send([]string{email}, "New comment on "+postTitle, "text/html", body); err != nil {
			log.Printf("Failed to send email to %s: %v", email, err)
		}
	}()
}
