package pdf

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trackdechets/internal/config"
	"trackdechets/internal/model"
	"trackdechets/internal/validation"
)

func TestBuildData(t *testing.T) {
	signed := time.Date(2026, 10, 5, 8, 30, 0, 0, time.UTC)
	q := 12.5
	d := &model.Bsdasri{
		Meta:                      model.Meta{ID: "DASRI-20261005-0A1B2C3D4", Status: model.StatusSignedByProducer},
		EmitterCompanyName:        "Hôpital Nord",
		EmitterWasteQuantity:      &q,
		HandedOverToTransporterAt: &signed,
		EmissionSignature:         model.Signature{Author: "Jean", Date: &signed},
		RegroupedBsdasris:         []string{"DASRI-1"},
	}

	data, err := BuildData(d, validation.Bsdasri(nil), signed)
	require.NoError(t, err)

	assert.Equal(t, model.KindBsdasri, data.Kind)
	require.Len(t, data.Sections, 4)
	emission := data.Sections[0]
	assert.Equal(t, "Émission", emission.Title)
	require.NotNil(t, emission.Signature)
	assert.Nil(t, data.Sections[1].Signature)
	assert.Contains(t, emission.Rows, Row{Label: "emitterCompanyName", Value: "Hôpital Nord"})
	assert.Contains(t, emission.Rows, Row{Label: "emitterWasteQuantity", Value: "12.5"})
	assert.Equal(t, []string{"DASRI-1"}, data.Grouped)
}

func TestHTML(t *testing.T) {
	at := time.Date(2026, 10, 5, 8, 30, 0, 0, time.UTC)
	data := &Data{
		ID:      "FF-20261005-XYZ",
		Kind:    model.KindBsff,
		Title:   titles[model.KindBsff],
		Status:  model.StatusSent,
		IsDraft: true,
		Sections: []Section{{
			Title:     "Transport",
			Rows:      []Row{{Label: "transporterTransportMode", Value: "ROAD"}},
			Signature: &model.Signature{Author: "Marc <script>", Date: &at},
		}},
		GeneratedAt: at,
	}

	html, err := HTML(data)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "FF-20261005-XYZ")
	assert.Contains(t, out, "BROUILLON")
	assert.Contains(t, out, "Signé par Marc &lt;script&gt; le 05/10/2026")
	assert.NotContains(t, out, "Bordereaux regroupés")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"R12", "R12"},
		{"2026-10-05T08:30:00Z", "05/10/2026"},
		{float64(3), "3"},
		{true, "Oui"},
		{[]any{"a", "b"}, "a ; b"},
		{map[string]any{"type": "FUT", "quantity": float64(2)}, "quantity : 2, type : FUT"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, format(tt.in))
	}
}

func TestRodRenderer_CloseWithoutBrowser(t *testing.T) {
	r := NewRodRenderer(config.PDFConfig{}, zap.NewNop())
	assert.NoError(t, r.Close())
}

// closedAddr returns a local address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestRodRenderer_Connect(t *testing.T) {
	t.Run("failed connection kills the launched browser", func(t *testing.T) {
		r := NewRodRenderer(config.PDFConfig{}, zap.NewNop())
		killed := 0
		r.launch = func() (string, func(), error) {
			return "ws://" + closedAddr(t), func() { killed++ }, nil
		}

		b, err := r.connect()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connect to browser")
		assert.Nil(t, b)
		assert.Equal(t, 1, killed)
		assert.NoError(t, r.Close())
	})

	t.Run("launch failure is returned", func(t *testing.T) {
		r := NewRodRenderer(config.PDFConfig{}, zap.NewNop())
		boom := errors.New("no chromium")
		r.launch = func() (string, func(), error) { return "", nil, boom }

		_, err := r.connect()
		assert.ErrorIs(t, err, boom)
	})

	t.Run("remote browser is never launched", func(t *testing.T) {
		r := NewRodRenderer(config.PDFConfig{ControlURL: "ws://" + closedAddr(t)}, zap.NewNop())
		launched := false
		r.launch = func() (string, func(), error) {
			launched = true
			return "", nil, errors.New("unexpected launch")
		}

		_, err := r.connect()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connect to browser")
		assert.False(t, launched)
	})
}

func TestDetached(t *testing.T) {
	type key struct{}
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "trace"))
	cancel()

	ctx, stop := detached(parent)
	defer stop()

	assert.NoError(t, ctx.Err())
	assert.Equal(t, "trace", ctx.Value(key{}))
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(pageCloseTimeout), deadline, time.Second)
}
