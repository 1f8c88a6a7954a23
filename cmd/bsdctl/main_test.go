package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trackdechets/internal/model"
	serviceMocks "trackdechets/internal/service/mocks"
	"trackdechets/internal/validation"
)

const emissionReady = `{
  "id": "DASRI-20261017-ABCDEF123",
  "status": "INITIAL",
  "emitterCompanyName": "Clinique des Lilas",
  "emitterCompanySiret": "11111111111111",
  "emitterCompanyAddress": "1 rue des Lilas 75019 Paris",
  "emitterCompanyContact": "Marie Curie",
  "emitterCompanyPhone": "01 00 00 00 00",
  "emitterCompanyMail": "contact@lilas.fr",
  "wasteDetailsCode": "18 01 03*",
  "wasteDetailsOnuCode": "UN 3291",
  "emitterWasteQuantity": 12.5,
  "emitterWasteQuantityType": "ESTIMATED",
  "emitterWastePackagingsInfo": [{"type": "BOITE_CARTON", "quantity": 2, "volume": 50}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	doc := writeFile(t, "dasri.json", emissionReady)

	t.Run("ready for emission", func(t *testing.T) {
		out, err := execute("validate", "--kind", "bsdasri", "--stage", "emission", doc)
		require.NoError(t, err)
		assert.Equal(t, "OK\n", out)
	})

	t.Run("not ready for transport", func(t *testing.T) {
		out, err := execute("validate", "-k", "BSDASRI", "-s", "TRANSPORT", doc)
		assert.ErrorIs(t, err, errViolations)

		var errs validation.Errors
		require.NoError(t, json.Unmarshal([]byte(out), &errs))
		require.NotEmpty(t, errs)
		for _, e := range errs {
			assert.NotEmpty(t, e.Path)
		}
	})

	t.Run("empty document at emission", func(t *testing.T) {
		empty := writeFile(t, "empty.json", `{}`)
		out, err := execute("validate", "--kind", "bsdasri", "--stage", "emission", empty)
		assert.ErrorIs(t, err, errViolations)
		assert.Contains(t, out, `"path": "emitterCompanySiret"`)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := execute("validate", "--kind", "bsda", doc)
		assert.ErrorContains(t, err, "unknown document kind")
	})

	t.Run("unknown stage", func(t *testing.T) {
		_, err := execute("validate", "--kind", "bsdasri", "--stage", "boarding", doc)
		assert.ErrorContains(t, err, "unknown signature type")
	})

	t.Run("malformed document", func(t *testing.T) {
		bad := writeFile(t, "bad.json", `{"emitterWasteQuantity": "lots"}`)
		_, err := execute("validate", "--kind", "bsdasri", bad)
		assert.ErrorContains(t, err, "decode BSDASRI")
	})

	t.Run("kind is required", func(t *testing.T) {
		_, err := execute("validate", doc)
		assert.Error(t, err)
	})
}

func TestRequiredFor(t *testing.T) {
	out, err := execute("required-for", "--kind", "bsdasri", "transporterReceipt")
	require.NoError(t, err)
	assert.Equal(t, "TRANSPORT\n", out)

	_, err = execute("required-for", "--kind", "bsdasri", "nope")
	assert.ErrorContains(t, err, "no signature declares")
}

func TestRenderPDF_HTML(t *testing.T) {
	doc := writeFile(t, "dasri.json", emissionReady)
	target := filepath.Join(t.TempDir(), "out.html")

	_, err := execute("render-pdf", "--kind", "bsdasri", "--html", "-o", target, doc)
	require.NoError(t, err)

	html, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(html), "DASRI-20261017-ABCDEF123")
	assert.Contains(t, string(html), "Clinique des Lilas")
}

func TestLoadCompanies(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "companies.yaml", `
- siret: "33333333333333"
  name: Centre de tri
  companyTypes: [WASTEPROCESSOR, COLLECTOR]
`)
		got, err := loadCompanies(path)
		require.NoError(t, err)
		require.Contains(t, got, "33333333333333")
		assert.True(t, got["33333333333333"].IsCollector())
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "companies.json", `[{"siret": "22222222222222", "name": "Transports"}]`)
		got, err := loadCompanies(path)
		require.NoError(t, err)
		assert.Equal(t, "Transports", got["22222222222222"].Name)
	})

	t.Run("missing siret", func(t *testing.T) {
		path := writeFile(t, "companies.yaml", `- name: Anonyme`)
		_, err := loadCompanies(path)
		assert.ErrorContains(t, err, "siret is required")
	})

	t.Run("no file", func(t *testing.T) {
		got, err := loadCompanies("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestCreateUser(t *testing.T) {
	auth := new(serviceMocks.MockAuthService)
	auth.On("CreateUser", mock.Anything, "marie@lilas.fr", "Marie").
		Return(&model.User{ID: "user-1", Email: "marie@lilas.fr"}, "secret-token", nil).Once()
	auth.On("CreateUser", mock.Anything, "bad", "").
		Return(nil, "", errors.New("email invalide")).Once()

	var out bytes.Buffer
	require.NoError(t, createUser(context.Background(), &out, auth, "marie@lilas.fr", "Marie"))
	assert.Contains(t, out.String(), "user-1")
	assert.Contains(t, out.String(), "secret-token")

	assert.Error(t, createUser(context.Background(), &out, auth, "bad", ""))
	auth.AssertExpectations(t)
}
