package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	mailjet "github.com/mailjet/mailjet-apiv3-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trackdechets/internal/config"
	"trackdechets/internal/logging"
)

func TestNew(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New(config.MailjetConfig{}, zap.NewNop()))
	assert.IsType(t, &Mailjet{}, New(config.MailjetConfig{PublicKey: "pub", PrivateKey: "priv"}, zap.NewNop()))
}

func TestMailjet_Send(t *testing.T) {
	var got *mailjet.MessagesV31
	j := &Mailjet{
		send: func(m *mailjet.MessagesV31) (*mailjet.ResultsV31, error) {
			got = m
			return &mailjet.ResultsV31{}, nil
		},
		from:            Contact{Email: "noreply@trackdechets.fr", Name: "Trackdéchets"},
		defaultTemplate: 42,
	}

	err := j.Send(context.Background(), Mail{
		To:          []Contact{{Email: "emitter@hopital.fr", Name: "Hôpital"}},
		Subject:     "Refus",
		Vars:        map[string]any{"id": "DASRI-1"},
		Attachments: []Attachment{{Filename: "DASRI-1.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}},
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Info, 1)

	info := got.Info[0]
	assert.Equal(t, 42, info.TemplateID)
	assert.True(t, info.TemplateLanguage)
	assert.Equal(t, "noreply@trackdechets.fr", info.From.Email)
	assert.Equal(t, "emitter@hopital.fr", (*info.To)[0].Email)
	require.NotNil(t, info.Attachments)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), (*info.Attachments)[0].Base64Content)
}

func TestMailjet_SendErrors(t *testing.T) {
	j := &Mailjet{send: func(*mailjet.MessagesV31) (*mailjet.ResultsV31, error) {
		return nil, errors.New("401 unauthorized")
	}}

	assert.ErrorIs(t, j.Send(context.Background(), Mail{}), ErrNoRecipient)
	assert.ErrorContains(t, j.Send(context.Background(), Mail{To: []Contact{{Email: "a@b.fr"}}}), "401")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, j.Send(ctx, Mail{To: []Contact{{Email: "a@b.fr"}}}), context.Canceled)
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.NewWithWriter(&buf, zapcore.InfoLevel, nil))

	require.NoError(t, m.Send(context.Background(), Mail{To: []Contact{{Email: "a@b.fr"}}, Subject: "Hello"}))
	assert.Contains(t, buf.String(), `"msg":"mail_sent"`)
	assert.Contains(t, buf.String(), `"to":["a@b.fr"]`)
	assert.ErrorIs(t, m.Send(context.Background(), Mail{}), ErrNoRecipient)
}
