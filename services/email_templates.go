package services

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/sierra-health/medequip-api/models"
)

//go:embed templates/*.txt
var templateFS embed.FS

// EmailProduct is one product line in an inquiry email
type EmailProduct struct {
	Name     string
	Quantity int
}

// InquiryEmail is the data rendered into both inquiry emails
type InquiryEmail struct {
	Name     string
	Email    string
	Phone    string
	Message  string
	Products []EmailProduct
}

type emailConfig struct {
	tmplFile string
	subject  string
}

var emailConfigs = map[string]emailConfig{
	models.NotificationAdminInquiry: {
		tmplFile: "templates/admin_inquiry.txt",
		subject:  "New Product Inquiry",
	},
	models.NotificationCustomerInquiry: {
		tmplFile: "templates/customer_inquiry.txt",
		subject:  "Thanks for contacting us",
	},
}

var emailTemplates = mustParseTemplates()

func mustParseTemplates() map[string]*template.Template {
	tmpls := make(map[string]*template.Template, len(emailConfigs))
	for kind, cfg := range emailConfigs {
		tmpls[kind] = template.Must(template.ParseFS(templateFS, cfg.tmplFile, "templates/products.txt"))
	}
	return tmpls
}

// RenderEmail returns the subject and body for a notification kind
func RenderEmail(kind string, data InquiryEmail) (string, string, error) {
	tmpl, ok := emailTemplates[kind]
	if !ok {
		return "", "", fmt.Errorf("no email template for %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s email: %w", kind, err)
	}
	return emailConfigs[kind].subject, buf.String(), nil
}
