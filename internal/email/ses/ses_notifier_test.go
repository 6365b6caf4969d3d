package ses_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collisionos/internal/email/ses"
	"collisionos/internal/port"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESNotifier_SendsToOpsAddress(t *testing.T) {
	client := &fakeSES{}
	n := ses.NewSESNotifierWithClient(client, "noreply@shop.test", "Shop", "ops@shop.test")

	err := n.NotifyManualIntervention(context.Background(), port.ManualInterventionNotice{
		ImportID: "imp-1",
		FileName: "est.xml",
		Stage:    "vehicle",
		Reason:   "db <down>",
	})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, []string{"ops@shop.test"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Shop <noreply@shop.test>", *client.input.FromEmailAddress)
	assert.Contains(t, *client.input.Content.Simple.Subject.Data, "imp-1")
	assert.Contains(t, *client.input.Content.Simple.Body.Html.Data, "db &lt;down&gt;")
	assert.Contains(t, *client.input.Content.Simple.Body.Text.Data, "Stage: vehicle")
}

func TestSESNotifier_WrapsError(t *testing.T) {
	boom := errors.New("throttled")
	n := ses.NewSESNotifierWithClient(&fakeSES{err: boom}, "a@b", "A", "ops@b")

	err := n.NotifyManualIntervention(context.Background(), port.ManualInterventionNotice{ImportID: "x"})
	assert.ErrorIs(t, err, boom)
}
