package handler

import (
	"net/http"
	"time"

	"biztime-service/internal/model"
	"biztime-service/pkg/apperror"
	"biztime-service/pkg/logger"
	"biztime-service/prometheus"

	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompanyRequest defines the structure for company creation requests
type CompanyRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompanyUpdateRequest defines the structure for company update requests.
// The code is immutable and comes from the path.
type CompanyUpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompanyHandler serves the /companies resource
type CompanyHandler struct {
	db *gorm.DB
}

// NewCompanyHandler creates a company handler with the given database handle
func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{db: db}
}

// ListCompanies returns all companies
func (h *CompanyHandler) ListCompanies(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())

	companies := []model.Company{}
	if result := h.db.Order("code").Find(&companies); result.Error != nil {
		log.Error("Failed to retrieve companies", zap.Error(result.Error))
		return apperror.Internal("Failed to retrieve companies")
	}

	log.Info("Companies retrieved successfully", zap.Int("count", len(companies)))
	return c.JSON(http.StatusOK, echo.Map{"companies": companies})
}

// GetCompany returns a single company with its associated industries
func (h *CompanyHandler) GetCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("get")

	code := c.Param("code")
	log.Info("Getting company by code", zap.String("company_code", code))

	defer prometheus.TrackDBOperation("query")(time.Now())

	var company model.Company
	if result := h.db.Where("code = ?", code).First(&company); result.Error != nil {
		log.Warn("Company not found", zap.String("company_code", code), zap.Error(result.Error))
		return apperror.NotFound("Company with code '%s' not found", code)
	}

	// Left-join semantics: a company with no industries yields an empty
	// list, not an error.
	industries := []string{}
	result := h.db.Model(&model.Industry{}).
		Joins("JOIN companies_industries ON companies_industries.industry_code = industries.code").
		Where("companies_industries.comp_code = ?", code).
		Order("industries.industry").
		Pluck("industry", &industries)
	if result.Error != nil {
		log.Error("Failed to retrieve company industries",
			zap.String("company_code", code),
			zap.Error(result.Error))
		return apperror.Internal("Failed to retrieve company industries")
	}

	log.Info("Company retrieved successfully",
		zap.String("company_code", code),
		zap.Int("industry_count", len(industries)))
	return c.JSON(http.StatusOK, echo.Map{
		"company": model.CompanyDetail{Company: company, Industries: industries},
	})
}

// CreateCompany creates a new company, slugifying the supplied code
func (h *CompanyHandler) CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new company")
	prometheus.RecordCompanyOperation("create")

	var req CompanyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return apperror.BadRequest("Invalid request data")
	}

	if req.Code == "" || req.Name == "" || req.Description == "" {
		log.Warn("Missing required company fields")
		return apperror.BadRequest("Code, name, and description are required")
	}

	// A code like "Big Co!" becomes "big-co"
	code := slug.Make(req.Code)

	var count int64
	h.db.Model(&model.Company{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		log.Warn("Company with this code already exists", zap.String("company_code", code))
		return apperror.Conflict("Company with code '" + code + "' already exists")
	}

	company := model.Company{
		Code:        code,
		Name:        req.Name,
		Description: req.Description,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := h.db.Create(&company); result.Error != nil {
		log.Error("Failed to create company",
			zap.String("company_code", code),
			zap.Error(result.Error))
		return apperror.Internal("Failed to create company")
	}

	go h.updateCompanyCount()

	log.Info("Company created successfully",
		zap.String("company_code", company.Code),
		zap.String("name", company.Name))
	return c.JSON(http.StatusCreated, echo.Map{"company": company})
}

// UpdateCompany updates a company's name and description
func (h *CompanyHandler) UpdateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("update")

	code := c.Param("code")
	log.Info("Updating company", zap.String("company_code", code))

	var req CompanyUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("company_code", code), zap.Error(err))
		return apperror.BadRequest("Invalid request data")
	}

	if req.Name == "" || req.Description == "" {
		log.Warn("Missing required company fields", zap.String("company_code", code))
		return apperror.BadRequest("Name and description are required")
	}

	var company model.Company
	if result := h.db.Where("code = ?", code).First(&company); result.Error != nil {
		log.Warn("Company not found for update", zap.String("company_code", code), zap.Error(result.Error))
		return apperror.NotFound("Company with code '%s' not found", code)
	}

	company.Name = req.Name
	company.Description = req.Description

	defer prometheus.TrackDBOperation("update")(time.Now())

	if result := h.db.Save(&company); result.Error != nil {
		log.Error("Failed to update company", zap.String("company_code", code), zap.Error(result.Error))
		return apperror.Internal("Failed to update company")
	}

	log.Info("Company updated successfully",
		zap.String("company_code", company.Code),
		zap.String("name", company.Name))
	return c.JSON(http.StatusOK, echo.Map{"company": company})
}

// DeleteCompany deletes a company. Companies with invoices on record are
// refused; association rows are removed along with the company.
func (h *CompanyHandler) DeleteCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("delete")

	code := c.Param("code")
	log.Info("Deleting company", zap.String("company_code", code))

	var company model.Company
	if result := h.db.Where("code = ?", code).First(&company); result.Error != nil {
		log.Warn("Company not found for delete", zap.String("company_code", code), zap.Error(result.Error))
		return apperror.NotFound("Company with code '%s' not found", code)
	}

	var invoiceCount int64
	h.db.Model(&model.Invoice{}).Where("comp_code = ?", code).Count(&invoiceCount)
	if invoiceCount > 0 {
		log.Warn("Company has invoices and cannot be deleted",
			zap.String("company_code", code),
			zap.Int64("invoice_count", invoiceCount))
		return apperror.Conflict("Company with code '" + code + "' has invoices and cannot be deleted")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if result := h.db.Where("comp_code = ?", code).Delete(&model.CompanyIndustry{}); result.Error != nil {
		log.Error("Failed to delete company associations",
			zap.String("company_code", code),
			zap.Error(result.Error))
		return apperror.Internal("Failed to delete company")
	}

	result := h.db.Delete(&company)
	if result.Error != nil {
		log.Error("Failed to delete company", zap.String("company_code", code), zap.Error(result.Error))
		return apperror.Internal("Failed to delete company")
	}

	go h.updateCompanyCount()

	log.Info("Company deleted successfully",
		zap.String("company_code", code),
		zap.Int64("rows_affected", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

// Helper function to update the company count metric
func (h *CompanyHandler) updateCompanyCount() {
	var count int64
	h.db.Model(&model.Company{}).Count(&count)
	prometheus.UpdateCompanyCount(count)
}
