// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/config"
	"github.com/compranet/compras-backend/internal/models"
)

// NotificationService sends operational emails. Every send is
// best-effort: callers run it behind their own failure boundary and a
// failed send never fails the transition that triggered it.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// SendQuotationOpenedEmails notifies suppliers that a request entered
// quotation. Callers bound the supplier list (first 5 active).
func (s *NotificationService) SendQuotationOpenedEmails(suppliers []models.Supplier, request *models.QuotationRequest) error {
	tmpl := s.getEmailTemplate("quotation_opened")

	for _, supplier := range suppliers {
		if supplier.Email == "" {
			continue
		}

		data := map[string]interface{}{
			"SupplierName":  supplier.Name,
			"RequestNumber": request.RequestNumber,
			"RequestTitle":  request.Title,
			"Department":    request.Department,
			"PortalURL":     fmt.Sprintf("%s/cotacoes/%s", s.config.Frontend.BaseURL, request.ID),
		}

		body, err := s.renderTemplate(tmpl.Body, data)
		if err != nil {
			return fmt.Errorf("failed to render email template: %w", err)
		}

		subject := fmt.Sprintf("Nova cotação aberta - %s", request.RequestNumber)
		if err := s.sendEmail(supplier.Email, subject, body); err != nil {
			// Keep notifying the remaining suppliers.
			logrus.WithError(err).WithField("supplier", supplier.Name).Warn("Failed to send quotation email")
		}
	}

	return nil
}

func (s *NotificationService) SendApprovalEmail(requester *models.User, request *models.QuotationRequest) error {
	tmpl := s.getEmailTemplate("request_approved")

	data := map[string]interface{}{
		"RequesterName": requester.FullName,
		"RequestNumber": request.RequestNumber,
		"RequestTitle":  request.Title,
		"RequestURL":    fmt.Sprintf("%s/requisicoes/%s", s.config.Frontend.BaseURL, request.ID),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Requisição aprovada - %s", request.RequestNumber)
	return s.sendEmail(requester.Email, subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email skipped (SMTP not configured)")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s <%s>\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		to, s.config.Email.FromName, s.config.Email.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"quotation_opened": {
			Subject: "Nova cotação aberta",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Olá {{.SupplierName}},</h2>
	<p>Uma nova requisição está aberta para cotação: <strong>{{.RequestNumber}} - {{.RequestTitle}}</strong> ({{.Department}}).</p>
	<p><a href="{{.PortalURL}}">Enviar proposta</a></p>
	<p>Atenciosamente,<br>Portal de Compras</p>
</body>
</html>`,
		},
		"request_approved": {
			Subject: "Requisição aprovada",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Olá {{.RequesterName}},</h2>
	<p>Sua requisição <strong>{{.RequestNumber}} - {{.RequestTitle}}</strong> foi aprovada.</p>
	<p><a href="{{.RequestURL}}">Ver detalhes</a></p>
	<p>Atenciosamente,<br>Portal de Compras</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notificação",
		Body:    "<p>{{.Message}}</p>",
	}
}
