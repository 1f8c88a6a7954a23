package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trackdechets/internal/http/middleware"
	"trackdechets/internal/model"
	"trackdechets/internal/service"
	serviceMocks "trackdechets/internal/service/mocks"
	"trackdechets/internal/validation"
)

const docID = "DASRI-20261017-ABCDEF123"

func newApp(bsd *serviceMocks.MockBsdService, companies *serviceMocks.MockCompanyService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Use(middleware.RequestID())
	r := Routes{Bsds: service.Registry{model.KindBsdasri: bsd}}
	if companies != nil {
		r.Companies = companies
	}
	RegisterRoutes(app, r)
	return app
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func dasri() *model.Bsdasri {
	return &model.Bsdasri{
		Meta:                model.Meta{ID: docID, Status: model.StatusInitial},
		EmitterCompanySiret: "11111111111111",
	}
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "bsd_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	app := fiber.New()
	RegisterRoutes(app, Routes{Gatherer: reg})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "bsd_test_total 1")
}

func TestListBsds(t *testing.T) {
	svc := new(serviceMocks.MockBsdService)
	app := newApp(svc, nil)

	t.Run("success", func(t *testing.T) {
		svc.On("List", mock.Anything, service.ListQuery{
			First:    10,
			After:    "DASRI-PREV",
			Statuses: []model.Status{model.StatusSent, model.StatusReceived},
		}).Return(&service.ListResult{
			Items:      []model.Bsd{dasri()},
			TotalCount: 1,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdasri?first=10&after=DASRI-PREV&status=sent,RECEIVED", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Items      []model.Bsdasri `json:"items"`
			TotalCount int             `json:"totalCount"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result.Items, 1)
		assert.Equal(t, docID, result.Items[0].ID)
		assert.Equal(t, 1, result.TotalCount)
		svc.AssertExpectations(t)
	})

	t.Run("invalid first", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdasri?first=abc", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, service.CodeBadUserInput, decodeError(t, resp).Error.Code)
	})

	t.Run("unknown kind", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdd", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("kind without service", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsff", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc.On("List", mock.Anything, mock.Anything).Return(nil, service.ErrUnauthenticated).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdasris", nil))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, service.CodeUnauthenticated, decodeError(t, resp).Error.Code)
	})
}

func TestCreateBsd(t *testing.T) {
	svc := new(serviceMocks.MockBsdService)
	app := newApp(svc, nil)
	input := `{"emitterCompanySiret":"11111111111111"}`

	t.Run("success", func(t *testing.T) {
		svc.On("Create", mock.Anything, json.RawMessage(input)).Return(dasri(), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/bsds/bsdasri", strings.NewReader(input))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got model.Bsdasri
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, docID, got.ID)
		svc.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.Join(service.ErrForbidden, errors.New("pas sur le bordereau"))).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/bsds/bsdasri", strings.NewReader(input)))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, service.CodeForbidden, decodeError(t, resp).Error.Code)
	})
}

func TestGetBsd(t *testing.T) {
	svc := new(serviceMocks.MockBsdService)
	app := newApp(svc, nil)

	t.Run("success", func(t *testing.T) {
		svc.On("Get", mock.Anything, docID).Return(dasri(), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdasri/"+docID, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		svc.On("Get", mock.Anything, "DASRI-NONE").Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/bsds/bsdasri/DASRI-NONE", nil)
		req.Header.Set(middleware.RequestIDHeader, "rid-42")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, service.CodeNotFound, body.Error.Code)
		assert.Equal(t, "bordereau introuvable", body.Error.Message)
		assert.Equal(t, "rid-42", body.RequestID)
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		svc.On("Get", mock.Anything, "DASRI-BOOM").Return(nil, errors.New("pq: connection refused")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdasri/DASRI-BOOM", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, service.CodeInternal, body.Error.Code)
		assert.NotContains(t, body.Error.Message, "connection refused")
	})
}

func TestUpdateAndActions(t *testing.T) {
	svc := new(serviceMocks.MockBsdService)
	app := newApp(svc, nil)

	svc.On("Update", mock.Anything, docID, json.RawMessage(`{"wasteDetailsOnuCode":"UN 3291"}`)).Return(dasri(), nil).Once()
	svc.On("Delete", mock.Anything, docID).Return(dasri(), nil).Once()
	svc.On("Publish", mock.Anything, docID).Return(dasri(), nil).Once()
	svc.On("Duplicate", mock.Anything, docID).Return(dasri(), nil).Once()

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPatch, "/bsds/bsdasri/" + docID, `{"wasteDetailsOnuCode":"UN 3291"}`, http.StatusOK},
		{http.MethodDelete, "/bsds/bsdasri/" + docID, "", http.StatusOK},
		{http.MethodPost, "/bsds/bsdasri/" + docID + "/publish", "", http.StatusOK},
		{http.MethodPost, "/bsds/bsdasri/" + docID + "/duplicate", "", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
	svc.AssertExpectations(t)
}

func TestSignBsd(t *testing.T) {
	svc := new(serviceMocks.MockBsdService)
	app := newApp(svc, nil)
	sign := func(body string) *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/bsds/bsdasri/"+docID+"/sign", strings.NewReader(body)))
		require.NoError(t, err)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		svc.On("Sign", mock.Anything, docID, service.SignInput{Stage: model.StageEmission, Author: "Marie"}).
			Return(dasri(), nil).Once()

		resp := sign(`{"type":"emission","author":"Marie"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown stage", func(t *testing.T) {
		resp := sign(`{"type":"DELIVERY","author":"Marie"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := sign(`{`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("validation error carries details", func(t *testing.T) {
		verr := &service.ValidationError{
			Stage: model.StageTransport,
			Errors: validation.Errors{{
				Path:        "transporterReceipt",
				Message:     "Le numéro de récépissé est obligatoire",
				RequiredFor: []model.Stage{model.StageTransport},
			}},
		}
		svc.On("Sign", mock.Anything, docID, mock.Anything).Return(nil, verr).Once()

		resp := sign(`{"type":"TRANSPORT","author":"Paul"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, service.CodeBadUserInput, body.Error.Code)
		require.Len(t, body.Error.Details, 1)
		assert.Equal(t, "transporterReceipt", body.Error.Details[0].Path)
		assert.Equal(t, []model.Stage{model.StageTransport}, body.Error.Details[0].RequiredFor)
	})

	t.Run("out of order", func(t *testing.T) {
		svc.On("Sign", mock.Anything, docID, mock.Anything).Return(nil, service.ErrInvalidTransition).Once()

		resp := sign(`{"type":"OPERATION","author":"Luc"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestBsdErrors(t *testing.T) {
	svc := new(serviceMocks.MockBsdService)
	app := newApp(svc, nil)
	svc.On("Errors", mock.Anything, docID).Return(validation.Errors{
		{Path: "processedAt", Message: "La date de traitement est obligatoire", RequiredFor: []model.Stage{model.StageOperation}},
	}, nil)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdasri/"+docID+"/errors", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Errors validation.Errors `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "processedAt", body.Errors[0].Path)
}

func TestBsdPDF(t *testing.T) {
	svc := new(serviceMocks.MockBsdService)
	app := newApp(svc, nil)

	t.Run("link", func(t *testing.T) {
		svc.On("PDF", mock.Anything, docID).Return(&service.PDFResult{DownloadLink: "https://s3.local/pdf", Cached: true}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdasri/"+docID+"/pdf", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got service.PDFResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "https://s3.local/pdf", got.DownloadLink)
	})

	t.Run("inline", func(t *testing.T) {
		content := "%PDF-1.7 test"
		svc.On("OpenPDF", mock.Anything, docID).Return(&service.PDFStream{
			Filename: docID + ".pdf",
			Size:     int64(len(content)),
			Body:     io.NopCloser(strings.NewReader(content)),
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdasri/"+docID+"/pdf?inline=true", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), docID+".pdf")
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, content, string(body))
	})

	t.Run("not configured", func(t *testing.T) {
		svc.On("PDF", mock.Anything, docID).Return(nil, service.ErrPDFUnavailable).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bsds/bsdasri/"+docID+"/pdf", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestRequiredFor(t *testing.T) {
	svc := new(serviceMocks.MockBsdService)
	app := newApp(svc, nil)
	svc.On("RequiredFor", "emitterWastePackagingsInfo[0].quantity").Return([]model.Stage{model.StageEmission})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/required-for/bsdasri?path=emitterWastePackagingsInfo%5B0%5D.quantity", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Path        string        `json:"path"`
		RequiredFor []model.Stage `json:"requiredFor"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []model.Stage{model.StageEmission}, body.RequiredFor)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/required-for/bsdasri", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCompanies(t *testing.T) {
	svc := new(serviceMocks.MockCompanyService)
	app := newApp(new(serviceMocks.MockBsdService), svc)

	t.Run("mine", func(t *testing.T) {
		svc.On("Mine", mock.Anything).Return([]model.Company{{Siret: "11111111111111", Name: "Clinique"}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/companies/mine", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got []model.Company
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Len(t, got, 1)
	})

	t.Run("find", func(t *testing.T) {
		svc.On("FindBySiret", mock.Anything, "33333333333333").Return(nil, service.ErrCompanyNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/companies/33333333333333", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("create", func(t *testing.T) {
		svc.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Company) bool {
			return c.Siret == "11111111111111"
		})).Return(&model.Company{ID: "company-1", Siret: "11111111111111"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/companies",
			strings.NewReader(`{"siret":"11111111111111","name":"Clinique","companyTypes":["PRODUCER"]}`)))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
	svc.AssertExpectations(t)
}
