package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lostluggage/models"
)

type fakeSender struct {
	sent []*mail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.resp, f.err
}

func TestSendGridNotifier_ReportChanged(t *testing.T) {
	to := models.User{ID: 1, Name: "Alice <A>", Email: "alice@example.com"}
	report := models.LostReport{ID: 7, Status: models.StatusFound, Remarks: "Matched with found report #5 (lost report #7)"}

	t.Run("accepted", func(t *testing.T) {
		sender := &fakeSender{resp: &rest.Response{StatusCode: 202}}
		n := &SendGridNotifier{client: sender, from: mail.NewEmail("Desk", "desk@example.com")}

		require.NoError(t, n.ReportChanged(context.Background(), to, report))
		require.Len(t, sender.sent, 1)

		msg := sender.sent[0]
		assert.Equal(t, "Update on lost luggage report #7", msg.Subject)
		require.Len(t, msg.Personalizations, 1)
		assert.Equal(t, "alice@example.com", msg.Personalizations[0].To[0].Address)
		require.Len(t, msg.Content, 2)
		assert.Contains(t, msg.Content[1].Value, "Alice &lt;A&gt;")
	})

	t.Run("rejected", func(t *testing.T) {
		sender := &fakeSender{resp: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
		n := &SendGridNotifier{client: sender, from: mail.NewEmail("Desk", "desk@example.com")}
		assert.Error(t, n.ReportChanged(context.Background(), to, report))
	})

	t.Run("transport error", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("dial tcp: timeout")}
		n := &SendGridNotifier{client: sender, from: mail.NewEmail("Desk", "desk@example.com")}
		assert.Error(t, n.ReportChanged(context.Background(), to, report))
	})
}

func TestNewNotifier(t *testing.T) {
	cfg := DefaultConfig()
	_, ok := NewNotifier(cfg, zap.NewNop()).(LogNotifier)
	assert.True(t, ok)

	cfg.SendGridAPIKey = "SG.test"
	_, ok = NewNotifier(cfg, zap.NewNop()).(*SendGridNotifier)
	assert.True(t, ok)
}
