package ses

import (
	"context"
	"errors"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"collisionos/internal/port"
)

// SendEmailAPI is the subset of the SES v2 client used by the notifier.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesNotifier struct {
	client      SendEmailAPI
	fromAddress string
	fromName    string
	opsAddress  string
}

// NewSESNotifier creates a new SES-backed Notifier that mails notices to the
// operations address.
func NewSESNotifier(region, fromAddress, fromName, opsAddress string) (port.Notifier, error) {
	if opsAddress == "" {
		return nil, errors.New("ses notifier: ops address is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSESNotifierWithClient(sesv2.NewFromConfig(cfg), fromAddress, fromName, opsAddress), nil
}

// NewSESNotifierWithClient wires an existing client.
func NewSESNotifierWithClient(client SendEmailAPI, fromAddress, fromName, opsAddress string) port.Notifier {
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		opsAddress:  opsAddress,
	}
}

func (s *sesNotifier) NotifyManualIntervention(ctx context.Context, notice port.ManualInterventionNotice) error {
	subject := fmt.Sprintf("Estimate import %s needs review", notice.ImportID)
	htmlBody := buildManualInterventionHTML(notice)
	textBody := fmt.Sprintf("Import %s (%s) could not be completed automatically.\n\nTenant: %s\nStage: %s\nCustomer: %s\nEstimate: %s\nReason: %s\n",
		notice.ImportID, notice.FileName, notice.TenantID, notice.Stage, notice.CustomerName, notice.EstimateNumber, notice.Reason)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.opsAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildManualInterventionHTML(n port.ManualInterventionNotice) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Estimate import needs review</h2>
  <p>Import <strong>%s</strong> (%s) parsed but could not be turned into a job automatically.</p>
  <table cellpadding="4">
    <tr><td>Tenant</td><td>%s</td></tr>
    <tr><td>Stage</td><td>%s</td></tr>
    <tr><td>Customer</td><td>%s</td></tr>
    <tr><td>Estimate</td><td>%s</td></tr>
    <tr><td>Reason</td><td>%s</td></tr>
  </table>
</body>
</html>`,
		html.EscapeString(n.ImportID), html.EscapeString(n.FileName), html.EscapeString(n.TenantID),
		html.EscapeString(n.Stage), html.EscapeString(n.CustomerName), html.EscapeString(n.EstimateNumber),
		html.EscapeString(n.Reason))
}
