package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"biztime-service/internal/model"
	"biztime-service/pkg/apperror"
	"biztime-service/pkg/config"
	"biztime-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var metricsOnce sync.Once

// newTestServer builds an Echo instance with the production routes and
// error handler over an in-memory SQLite database.
func newTestServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()

	metricsOnce.Do(func() {
		prometheus.InitMetrics(&config.Config{
			Metrics: config.MetricsConfig{Prefix: "biztime_test"},
		})
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory
	// database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Company{},
		&model.Industry{},
		&model.CompanyIndustry{},
		&model.Invoice{},
	)
	require.NoError(t, err)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(zap.NewNop())

	companyHandler := NewCompanyHandler(db)
	industryHandler := NewIndustryHandler(db)
	invoiceHandler := NewInvoiceHandler(db)

	e.GET("/health", HealthCheck)

	companies := e.Group("/companies")
	companies.GET("", companyHandler.ListCompanies)
	companies.POST("", companyHandler.CreateCompany)
	companies.GET("/industries", industryHandler.ListIndustries)
	companies.POST("/industries", industryHandler.CreateIndustry)
	companies.POST("/industries/:industry_code/companies/:company_code", industryHandler.AssociateCompany)
	companies.GET("/:code", companyHandler.GetCompany)
	companies.PUT("/:code", companyHandler.UpdateCompany)
	companies.DELETE("/:code", companyHandler.DeleteCompany)

	invoices := e.Group("/invoices")
	invoices.GET("", invoiceHandler.ListInvoices)
	invoices.POST("", invoiceHandler.CreateInvoice)
	invoices.GET("/:id", invoiceHandler.GetInvoice)
	invoices.PUT("/:id", invoiceHandler.UpdateInvoice)
	invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)

	return e, db
}

// doRequest runs a request through the Echo instance and returns the
// recorded response.
func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// errorBody mirrors the uniform error envelope
type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
	Message string `json:"message"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	decodeBody(t, rec, &body)
	return body
}

func seedCompanies(t *testing.T, db *gorm.DB) {
	t.Helper()
	companies := []model.Company{
		{Code: "apple", Name: "Apple", Description: "Maker of iPhones"},
		{Code: "ibm", Name: "IBM", Description: "Big Blue"},
	}
	require.NoError(t, db.Create(&companies).Error)
}

func seedInvoices(t *testing.T, db *gorm.DB) {
	t.Helper()
	today := model.Today()
	invoices := []model.Invoice{
		{CompCode: "apple", Amt: 100, Paid: false, AddDate: today, PaidDate: nil},
		{CompCode: "ibm", Amt: 200, Paid: true, AddDate: today, PaidDate: &today},
	}
	require.NoError(t, db.Create(&invoices).Error)
}
