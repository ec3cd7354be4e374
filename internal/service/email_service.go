package service

import (
	"context"
	"fmt"
	"html"
	netsmtp "net/smtp"
	"regexp"
	"strings"

	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/config"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
	"github.com/vhvplatform/go-crm-automation-service/internal/smtp"
	"go.mongodb.org/mongo-driver/mongo"
)

// EmailService sends reminder emails through the pooled SMTP transport
type EmailService struct {
	config        config.SMTPConfig
	pool          *smtp.Pool
	templateRepo  *repository.TemplateRepository
	bounceChecker *BounceChecker
	log           *logger.Logger
	emailRegex    *regexp.Regexp
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.SMTPConfig, pool *smtp.Pool, templateRepo *repository.TemplateRepository, bounceChecker *BounceChecker, log *logger.Logger) *EmailService {
	return &EmailService{
		config:        cfg,
		pool:          pool,
		templateRepo:  templateRepo,
		bounceChecker: bounceChecker,
		log:           log,
		emailRegex:    regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),
	}
}

// Send delivers one email. Addresses with a recent hard bounce are refused
// before any SMTP traffic happens.
func (s *EmailService) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	if !s.isValidEmail(to) {
		return fmt.Errorf("invalid recipient address: %q", to)
	}

	if s.bounceChecker != nil {
		bounced, err := s.bounceChecker.IsEmailBounced(ctx, to)
		if err != nil {
			s.log.Warn("Bounce check failed, proceeding with send", "recipient", to, "error", err)
		} else if bounced {
			return fmt.Errorf("recipient %s is suppressed after a hard bounce", to)
		}
	}

	client, err := s.pool.Get()
	if err != nil {
		return fmt.Errorf("no SMTP connection available: %w", err)
	}

	if err := s.transmit(client, to, s.buildMessage(to, subject, body, isHTML)); err != nil {
		// A failed connection must not go back into the pool
		client.Quit()
		return err
	}

	s.pool.Put(client)
	return nil
}

// SendTemplate renders a named template with variables and sends it
func (s *EmailService) SendTemplate(ctx context.Context, to, templateName string, variables map[string]string) error {
	template, err := s.templateRepo.FindByName(ctx, templateName)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("template %q not found", templateName)
		}
		return fmt.Errorf("failed to load template %q: %w", templateName, err)
	}

	subject := s.applyVariables(template.Subject, variables)
	body := s.applyVariables(template.Body, variables)
	return s.Send(ctx, to, subject, body, template.IsHTML)
}

// buildMessage assembles the RFC 5322 message bytes
func (s *EmailService) buildMessage(to, subject, body string, isHTML bool) string {
	from := s.config.FromEmail
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}

	contentType := "text/plain"
	if isHTML {
		contentType = "text/html"
	}

	return fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s; charset=UTF-8\r\n"+
		"\r\n"+
		"%s",
		from, to, subject, contentType, body)
}

// transmit runs the SMTP envelope on an established connection
func (s *EmailService) transmit(client *netsmtp.Client, to, message string) error {
	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

// applyVariables replaces {{key}} placeholders, escaping values so user
// content cannot inject markup into HTML templates
func (s *EmailService) applyVariables(template string, variables map[string]string) string {
	result := template
	for key, value := range variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, html.EscapeString(value))
	}
	return result
}

// isValidEmail performs basic syntactic validation
func (s *EmailService) isValidEmail(email string) bool {
	return s.emailRegex.MatchString(email)
}
