package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"
	"github.com/rs/zerolog"

	"backed/internal/domain"
)

// ReceiptMailer sends donation receipts through Resend. Callers treat every
// send as best-effort; the donation is already committed when this runs.
type ReceiptMailer struct {
	client *resend.Client
	from   string
	alumni domain.AlumniRepository
	logger zerolog.Logger
}

func NewReceiptMailer(apiKey, from string, alumni domain.AlumniRepository, logger zerolog.Logger) *ReceiptMailer {
	return &ReceiptMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		alumni: alumni,
		logger: logger,
	}
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`
<h2>Thank you for backing {{.ProjectTitle}}!</h2>
<p>Hi {{.Name}},</p>
<p>Your donation of {{.Amount}} has been received.</p>
<table>
  <tr><td>Receipt</td><td>{{.ReceiptNumber}}</td></tr>
  <tr><td>Reference</td><td>{{.Reference}}</td></tr>
  <tr><td>Project</td><td>{{.ProjectTitle}}</td></tr>
</table>
<p>Your school community appreciates you.</p>
`))

type receiptData struct {
	Name          string
	Amount        string
	ReceiptNumber string
	Reference     string
	ProjectTitle  string
}

// SendDonationReceipt emails the donor their receipt.
func (m *ReceiptMailer) SendDonationReceipt(ctx context.Context, donation domain.Donation, project domain.Project) error {
	donor, err := m.alumni.GetByID(ctx, donation.DonorID)
	if err != nil {
		return fmt.Errorf("lookup donor for receipt: %w", err)
	}
	if donor.Email == "" {
		m.logger.Debug().
			Str("donation_id", donation.ID).
			Msg("mailer: donor has no email, skipping receipt")
		return nil
	}

	var body bytes.Buffer
	err = receiptTemplate.Execute(&body, receiptData{
		Name:          donor.FullName,
		Amount:        formatAmount(donation.Amount, donation.Currency),
		ReceiptNumber: donation.ReceiptNumber,
		Reference:     donation.PaymentReference,
		ProjectTitle:  project.Title,
	})
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("BackED <%s>", m.from),
		To:      []string{donor.Email},
		Subject: fmt.Sprintf("Donation receipt %s", donation.ReceiptNumber),
		Html:    body.String(),
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send receipt: %w", err)
	}
	return nil
}

// formatAmount renders minor units as a major-unit figure with the currency
// code.
func formatAmount(minor int64, currency string) string {
	if currency == "" {
		currency = "GHS"
	}
	return fmt.Sprintf("%s %d.%02d", currency, minor/100, minor%100)
}
