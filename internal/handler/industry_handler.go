package handler

import (
	"net/http"
	"time"

	"biztime-service/internal/model"
	"biztime-service/pkg/apperror"
	"biztime-service/pkg/logger"
	"biztime-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IndustryRequest defines the structure for industry creation requests
type IndustryRequest struct {
	Code     string `json:"code"`
	Industry string `json:"industry"`
}

// IndustryHandler serves the industries nested under /companies/industries
type IndustryHandler struct {
	db *gorm.DB
}

// NewIndustryHandler creates an industry handler with the given database handle
func NewIndustryHandler(db *gorm.DB) *IndustryHandler {
	return &IndustryHandler{db: db}
}

// ListIndustries returns all industries, each with the codes of its
// associated companies
func (h *IndustryHandler) ListIndustries(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordIndustryOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var industries []model.Industry
	if result := h.db.Order("code").Find(&industries); result.Error != nil {
		log.Error("Failed to retrieve industries", zap.Error(result.Error))
		return apperror.Internal("Failed to retrieve industries")
	}

	var associations []model.CompanyIndustry
	if result := h.db.Order("comp_code").Find(&associations); result.Error != nil {
		log.Error("Failed to retrieve industry associations", zap.Error(result.Error))
		return apperror.Internal("Failed to retrieve industries")
	}

	companiesByIndustry := make(map[string][]string, len(industries))
	for _, assoc := range associations {
		companiesByIndustry[assoc.IndustryCode] = append(companiesByIndustry[assoc.IndustryCode], assoc.CompCode)
	}

	details := make([]model.IndustryDetail, 0, len(industries))
	for _, industry := range industries {
		companies := companiesByIndustry[industry.Code]
		if companies == nil {
			companies = []string{}
		}
		details = append(details, model.IndustryDetail{Industry: industry, Companies: companies})
	}

	log.Info("Industries retrieved successfully", zap.Int("count", len(details)))
	return c.JSON(http.StatusOK, echo.Map{"industries": details})
}

// CreateIndustry creates a new industry
func (h *IndustryHandler) CreateIndustry(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new industry")
	prometheus.RecordIndustryOperation("create")

	var req IndustryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return apperror.BadRequest("Invalid request data")
	}

	if req.Code == "" || req.Industry == "" {
		log.Warn("Missing required industry fields")
		return apperror.BadRequest("Code and industry are required")
	}

	var count int64
	h.db.Model(&model.Industry{}).Where("code = ?", req.Code).Count(&count)
	if count > 0 {
		log.Warn("Industry with this code already exists", zap.String("industry_code", req.Code))
		return apperror.Conflict("Industry with code '" + req.Code + "' already exists")
	}

	industry := model.Industry{
		Code:     req.Code,
		Industry: req.Industry,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := h.db.Create(&industry); result.Error != nil {
		log.Error("Failed to create industry",
			zap.String("industry_code", req.Code),
			zap.Error(result.Error))
		return apperror.Internal("Failed to create industry")
	}

	log.Info("Industry created successfully",
		zap.String("industry_code", industry.Code),
		zap.String("industry", industry.Industry))
	return c.JSON(http.StatusCreated, echo.Map{"industry": industry})
}

// AssociateCompany records a company/industry association. Repeating an
// existing association is a no-op, not an error.
func (h *IndustryHandler) AssociateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordIndustryOperation("associate")

	industryCode := c.Param("industry_code")
	companyCode := c.Param("company_code")
	log.Info("Associating company with industry",
		zap.String("industry_code", industryCode),
		zap.String("company_code", companyCode))

	var count int64
	h.db.Model(&model.Company{}).Where("code = ?", companyCode).Count(&count)
	if count == 0 {
		log.Warn("Company not found for association", zap.String("company_code", companyCode))
		return apperror.NotFound("Company with code '%s' not found", companyCode)
	}

	h.db.Model(&model.Industry{}).Where("code = ?", industryCode).Count(&count)
	if count == 0 {
		log.Warn("Industry not found for association", zap.String("industry_code", industryCode))
		return apperror.NotFound("Industry with code '%s' not found", industryCode)
	}

	association := model.CompanyIndustry{
		CompCode:     companyCode,
		IndustryCode: industryCode,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	result := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&association)
	if result.Error != nil {
		log.Error("Failed to associate company with industry",
			zap.String("industry_code", industryCode),
			zap.String("company_code", companyCode),
			zap.Error(result.Error))
		return apperror.Internal("Failed to associate company with industry")
	}

	log.Info("Company associated with industry",
		zap.String("industry_code", industryCode),
		zap.String("company_code", companyCode),
		zap.Int64("rows_affected", result.RowsAffected))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Company '" + companyCode + "' associated with industry '" + industryCode + "'",
	})
}
