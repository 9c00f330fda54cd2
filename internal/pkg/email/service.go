// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/order"
	"github.com/sirupsen/logrus"
)

// Notifier sends transactional order emails over SMTP. It implements
// order.Notifier.
type Notifier struct {
	config    *config.Config
	log       *logrus.Logger
	templates map[string]*template.Template
}

// NewNotifier creates a new email notifier
func NewNotifier(cfg *config.Config, log *logrus.Logger) *Notifier {
	n := &Notifier{
		config:    cfg,
		log:       log,
		templates: make(map[string]*template.Template),
	}

	if err := n.loadTemplates(); err != nil {
		log.WithError(err).Warn("failed to load email templates")
	}

	return n
}

// SendOrderConfirmation emails the customer that the order was received
func (n *Notifier) SendOrderConfirmation(ctx context.Context, o *order.Order) error {
	data := n.orderEmailData(o)

	htmlContent, err := n.renderTemplate("order_confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	msg := &Message{
		To:          []string{o.Email},
		Subject:     fmt.Sprintf("Order %s confirmed", o.OrderNumber),
		HTMLContent: htmlContent,
	}

	return n.send(ctx, msg)
}

// SendOperatorAlert emails the shop operator about a new order
func (n *Notifier) SendOperatorAlert(ctx context.Context, o *order.Order) error {
	if n.config.Email.OperatorEmail == "" {
		return nil
	}

	data := n.orderEmailData(o)

	htmlContent, err := n.renderTemplate("operator_alert", data)
	if err != nil {
		return fmt.Errorf("failed to render operator alert template: %w", err)
	}

	msg := &Message{
		To:          []string{n.config.Email.OperatorEmail},
		Subject:     fmt.Sprintf("New order %s", o.OrderNumber),
		HTMLContent: htmlContent,
	}

	return n.send(ctx, msg)
}

// SendInvoiceEmail emails the customer their invoice with the rendered
// document attached
func (n *Notifier) SendInvoiceEmail(ctx context.Context, o *order.Order, inv *order.Invoice, document []byte) error {
	data := InvoiceEmailData{
		TemplateData:  n.baseTemplateData(o),
		OrderNumber:   o.OrderNumber,
		InvoiceNumber: inv.InvoiceNumber,
		Total:         formatAmount(o.TotalAmount),
	}

	htmlContent, err := n.renderTemplate("invoice", data)
	if err != nil {
		return fmt.Errorf("failed to render invoice template: %w", err)
	}

	msg := &Message{
		To:          []string{o.Email},
		Subject:     fmt.Sprintf("Invoice %s for order %s", inv.InvoiceNumber, o.OrderNumber),
		HTMLContent: htmlContent,
	}
	if len(document) > 0 {
		msg.AttachmentName = fmt.Sprintf("%s.pdf", inv.InvoiceNumber)
		msg.AttachmentBytes = document
	}

	return n.send(ctx, msg)
}

// send delivers a message, honoring context cancellation before dialing
func (n *Notifier) send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.sendSMTP(msg)
}

func (n *Notifier) baseTemplateData(o *order.Order) TemplateData {
	return TemplateData{
		SiteName:  n.config.Email.FromName,
		UserName:  o.ShippingAddress.FirstName,
		UserEmail: o.Email,
		Year:      time.Now().Year(),
	}
}

func (n *Notifier) orderEmailData(o *order.Order) OrderEmailData {
	lines := make([]OrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, OrderLine{
			Name:     item.ProductName,
			SKU:      item.ProductSKU,
			Size:     item.SelectedSize,
			Color:    item.SelectedColor,
			Quantity: item.Quantity,
			Price:    formatAmount(item.PricePaid),
			Total:    formatAmount(item.LineTotal()),
		})
	}

	addr := o.ShippingAddress
	shippingLines := []string{addr.Street, fmt.Sprintf("%s %s", addr.City, addr.PostalCode), addr.Country}
	if addr.Phone != "" {
		shippingLines = append(shippingLines, addr.Phone)
	}

	return OrderEmailData{
		TemplateData:  n.baseTemplateData(o),
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.CreatedAt.Format("02 Jan 2006 15:04"),
		Status:        string(o.Status),
		PaymentMethod: o.TransactionNumber,
		Subtotal:      formatAmount(o.SubtotalAmount),
		DeliveryFee:   formatAmount(o.DeliveryFee),
		Total:         formatAmount(o.TotalAmount),
		Lines:         lines,
		ShippingName:  fmt.Sprintf("%s %s", addr.FirstName, addr.LastName),
		ShippingLines: shippingLines,
	}
}

// loadTemplates loads email templates from disk, falling back to built-in
// templates when a file is missing
func (n *Notifier) loadTemplates() error {
	templateDir := "./templates/emails"

	templates := []string{
		"order_confirmation",
		"operator_alert",
		"invoice",
	}

	for _, name := range templates {
		templatePath := filepath.Join(templateDir, name+".html")
		tmpl, err := template.ParseFiles(templatePath)
		if err != nil {
			n.log.WithField("template", name).Debug("using built-in email template")
			n.templates[name] = n.createFallbackTemplate(name)
		} else {
			n.templates[name] = tmpl
		}
	}

	return nil
}

// renderTemplate renders an email template with data
func (n *Notifier) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := n.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

// createFallbackTemplate creates a basic HTML template as fallback
func (n *Notifier) createFallbackTemplate(name string) *template.Template {
	basicTemplate := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        <p>Hello {{.UserName}},</p>
        {{if .OrderNumber}}<p>This is a notification about your order <strong>{{.OrderNumber}}</strong>.</p>{{end}}
        {{if .Total}}<p>Order total: {{.Total}}</p>{{end}}
        <p>If you have any questions, please contact our support team.</p>
        <p>Best regards,<br>{{.SiteName}} Team</p>
        <hr>
        <p style="font-size: 12px; color: #666;">
            © {{.Year}} {{.SiteName}}. All rights reserved.
        </p>
    </div>
</body>
</html>`

	tmpl, _ := template.New(name).Parse(basicTemplate)
	return tmpl
}

// formatAmount renders an amount in cents as a decimal string
func formatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
