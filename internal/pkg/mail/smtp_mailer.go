package mail

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/internal/pkg/env"
)

// SendMail sends an HTML email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendInvoiceEmail renders and sends the invoice email to a client.
func SendInvoiceEmail(business *models.Business, client *models.Client, invoice *models.Invoice) error {
	if strings.TrimSpace(client.Email) == "" {
		return fmt.Errorf("client %d has no email address", client.ID)
	}

	subject := fmt.Sprintf("Invoice %s from %s", invoice.Number, business.Name)
	body := renderInvoiceBody(business, client, invoice)
	return SendMail(client.Email, subject, body)
}

// SendEstimateEmail sends an estimate with its public response link.
func SendEstimateEmail(business *models.Business, client *models.Client, estimate *models.Estimate) error {
	if strings.TrimSpace(client.Email) == "" {
		return fmt.Errorf("client %d has no email address", client.ID)
	}

	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	link := fmt.Sprintf("%s/e/%s", base, estimate.ShareToken)
	subject := fmt.Sprintf("Estimate %s from %s", estimate.Number, business.Name)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>%s has sent you estimate <strong>%s</strong> over %s %.2f.</p>"+
			"<p><a href=\"%s\">View and respond to the estimate</a></p>",
		client.Name, business.Name, estimate.Number, business.Currency, estimate.Total, link,
	)
	return SendMail(client.Email, subject, body)
}

func renderInvoiceBody(business *models.Business, client *models.Client, invoice *models.Invoice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hello %s,</p>", client.Name)
	fmt.Fprintf(&b, "<p>%s has sent you invoice <strong>%s</strong>.</p>", business.Name, invoice.Number)

	b.WriteString("<table border=\"0\" cellpadding=\"4\"><tr><th align=\"left\">Item</th><th align=\"right\">Qty</th><th align=\"right\">Price</th></tr>")
	for _, item := range invoice.LineItems() {
		fmt.Fprintf(&b, "<tr><td>%s</td><td align=\"right\">%g</td><td align=\"right\">%.2f</td></tr>",
			item.Description, item.Quantity, item.UnitPrice)
	}
	b.WriteString("</table>")

	fmt.Fprintf(&b, "<p>Subtotal: %s %.2f<br>", business.Currency, invoice.Subtotal)
	if invoice.DiscountPercent > 0 {
		fmt.Fprintf(&b, "Discount: %.2f%%<br>", invoice.DiscountPercent)
	}
	if invoice.Shipping > 0 {
		fmt.Fprintf(&b, "Shipping: %s %.2f<br>", business.Currency, invoice.Shipping)
	}
	fmt.Fprintf(&b, "<strong>Total: %s %.2f</strong></p>", business.Currency, invoice.Total)

	if invoice.DueAt != nil {
		fmt.Fprintf(&b, "<p>Due by %s.</p>", invoice.DueAt.Format("January 2, 2006"))
	}
	if invoice.Notes != "" {
		fmt.Fprintf(&b, "<p>%s</p>", invoice.Notes)
	}
	return b.String()
}
