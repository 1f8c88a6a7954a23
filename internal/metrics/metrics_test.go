package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackdechets/internal/model"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Signed(model.KindBsff, model.StageTransport, model.StatusSent)
	m.ValidationFailed(model.KindBsff, model.StageReception, 3)
	m.ValidationFailed(model.KindBsff, model.StageReception, 0)
	m.PDFRendered(model.KindBsff, true)
	m.PDFRendered(model.KindBsff, false)
	m.MailFailed()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.signatures.WithLabelValues("BSFF", "TRANSPORT", "SENT")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.validationErrors.WithLabelValues("BSFF", "RECEPTION")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.pdfRenders.WithLabelValues("BSFF", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.mailFailures))

	_, err = New(reg)
	assert.Error(t, err, "registering twice on the same registry fails")
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Signed(model.KindBsvhu, model.StageOperation, model.StatusProcessed)
		m.ValidationFailed(model.KindBsvhu, model.StageOperation, 1)
		m.PDFRendered(model.KindBsvhu, false)
		m.MailFailed()
	})
}
