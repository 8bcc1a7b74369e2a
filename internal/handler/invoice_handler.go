package handler

import (
	"net/http"
	"strconv"
	"time"

	"biztime-service/internal/model"
	"biztime-service/pkg/apperror"
	"biztime-service/pkg/logger"
	"biztime-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceRequest defines the structure for invoice creation requests.
// Amt is a pointer so that an explicit zero amount passes the presence
// check.
type InvoiceRequest struct {
	CompCode string   `json:"comp_code"`
	Amt      *float64 `json:"amt"`
}

// InvoiceUpdateRequest defines the structure for partial invoice updates.
// Every field is optional; at least one must be present.
type InvoiceUpdateRequest struct {
	CompCode *string  `json:"comp_code"`
	Amt      *float64 `json:"amt"`
	Paid     *bool    `json:"paid"`
	AddDate  *string  `json:"add_date"`
	PaidDate *string  `json:"paid_date"`
}

func (r *InvoiceUpdateRequest) empty() bool {
	return r.CompCode == nil && r.Amt == nil && r.Paid == nil && r.AddDate == nil && r.PaidDate == nil
}

// InvoiceHandler serves the /invoices resource
type InvoiceHandler struct {
	db *gorm.DB
}

// NewInvoiceHandler creates an invoice handler with the given database handle
func NewInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return &InvoiceHandler{db: db}
}

// ListInvoices returns all invoices
func (h *InvoiceHandler) ListInvoices(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordInvoiceOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())

	invoices := []model.Invoice{}
	if result := h.db.Order("id").Find(&invoices); result.Error != nil {
		log.Error("Failed to retrieve invoices", zap.Error(result.Error))
		return apperror.Internal("Failed to retrieve invoices")
	}

	log.Info("Invoices retrieved successfully", zap.Int("count", len(invoices)))
	return c.JSON(http.StatusOK, echo.Map{"invoices": invoices})
}

// GetInvoice returns a single invoice with its company embedded
func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordInvoiceOperation("get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid invoice ID", zap.String("id", c.Param("id")), zap.Error(err))
		return apperror.BadRequest("Invalid invoice ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var invoice model.Invoice
	if result := h.db.First(&invoice, id); result.Error != nil {
		log.Warn("Invoice not found", zap.Uint64("invoice_id", id), zap.Error(result.Error))
		return apperror.NotFound("Invoice with id '%d' not found", id)
	}

	var company model.Company
	if result := h.db.Where("code = ?", invoice.CompCode).First(&company); result.Error != nil {
		log.Error("Failed to retrieve invoice company",
			zap.Uint64("invoice_id", id),
			zap.String("company_code", invoice.CompCode),
			zap.Error(result.Error))
		return apperror.Internal("Failed to retrieve invoice company")
	}

	log.Info("Invoice retrieved successfully",
		zap.Uint64("invoice_id", id),
		zap.String("company_code", invoice.CompCode))
	return c.JSON(http.StatusOK, echo.Map{
		"invoice": model.InvoiceDetail{Invoice: invoice, Company: company},
	})
}

// CreateInvoice creates a new invoice for an existing company. New
// invoices start unpaid, dated today.
func (h *InvoiceHandler) CreateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new invoice")
	prometheus.RecordInvoiceOperation("create")

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return apperror.BadRequest("Invalid request data")
	}

	if req.CompCode == "" || req.Amt == nil {
		log.Warn("Missing required invoice fields")
		return apperror.BadRequest("comp_code and amt are required")
	}

	var count int64
	h.db.Model(&model.Company{}).Where("code = ?", req.CompCode).Count(&count)
	if count == 0 {
		log.Warn("Company not found for invoice", zap.String("company_code", req.CompCode))
		return apperror.NotFound("Company with code '%s' not found", req.CompCode)
	}

	invoice := model.Invoice{
		CompCode: req.CompCode,
		Amt:      *req.Amt,
		Paid:     false,
		AddDate:  model.Today(),
		PaidDate: nil,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := h.db.Create(&invoice); result.Error != nil {
		log.Error("Failed to create invoice",
			zap.String("company_code", req.CompCode),
			zap.Error(result.Error))
		return apperror.Internal("Failed to create invoice")
	}

	go h.updateUnpaidCount()

	log.Info("Invoice created successfully",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("company_code", invoice.CompCode),
		zap.Float64("amt", invoice.Amt))
	return c.JSON(http.StatusCreated, echo.Map{"invoice": invoice})
}

// UpdateInvoice applies a partial update to an invoice. When the paid
// flag flips without an explicit paid_date, the paid_date is derived:
// unpaid to paid stamps today, paid to unpaid clears it, and no
// transition leaves it untouched.
func (h *InvoiceHandler) UpdateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordInvoiceOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid invoice ID", zap.String("id", c.Param("id")), zap.Error(err))
		return apperror.BadRequest("Invalid invoice ID")
	}

	log.Info("Updating invoice", zap.Uint64("invoice_id", id))

	var req InvoiceUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("invoice_id", id), zap.Error(err))
		return apperror.BadRequest("Invalid request data")
	}

	if req.empty() {
		log.Warn("No updatable invoice fields supplied", zap.Uint64("invoice_id", id))
		return apperror.BadRequest("At least one of comp_code, amt, paid, add_date or paid_date is required")
	}

	var invoice model.Invoice
	if result := h.db.First(&invoice, id); result.Error != nil {
		log.Warn("Invoice not found for update", zap.Uint64("invoice_id", id), zap.Error(result.Error))
		return apperror.NotFound("Invoice with id '%d' not found", id)
	}

	// Assemble the update column set from whichever fields are present,
	// in a fixed order. Values only ever reach the database as bind
	// parameters.
	updates := map[string]interface{}{}

	if req.CompCode != nil {
		var count int64
		h.db.Model(&model.Company{}).Where("code = ?", *req.CompCode).Count(&count)
		if count == 0 {
			log.Warn("Company not found for invoice update", zap.String("company_code", *req.CompCode))
			return apperror.NotFound("Company with code '%s' not found", *req.CompCode)
		}
		updates["comp_code"] = *req.CompCode
	}

	if req.Amt != nil {
		updates["amt"] = *req.Amt
	}

	if req.Paid != nil {
		updates["paid"] = *req.Paid
	}

	if req.AddDate != nil {
		addDate, err := model.ParseDate(*req.AddDate)
		if err != nil {
			log.Warn("Invalid add_date", zap.String("add_date", *req.AddDate), zap.Error(err))
			return apperror.BadRequest("add_date must be a valid date in YYYY-MM-DD format")
		}
		updates["add_date"] = addDate
	}

	if req.PaidDate != nil {
		paidDate, err := model.ParseDate(*req.PaidDate)
		if err != nil {
			log.Warn("Invalid paid_date", zap.String("paid_date", *req.PaidDate), zap.Error(err))
			return apperror.BadRequest("paid_date must be a valid date in YYYY-MM-DD format")
		}
		updates["paid_date"] = paidDate
	} else if req.Paid != nil {
		switch {
		case !invoice.Paid && *req.Paid:
			updates["paid_date"] = model.Today()
		case invoice.Paid && !*req.Paid:
			updates["paid_date"] = nil
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if result := h.db.Model(&invoice).Updates(updates); result.Error != nil {
		log.Error("Failed to update invoice", zap.Uint64("invoice_id", id), zap.Error(result.Error))
		return apperror.Internal("Failed to update invoice")
	}

	if result := h.db.First(&invoice, id); result.Error != nil {
		log.Error("Failed to reload invoice", zap.Uint64("invoice_id", id), zap.Error(result.Error))
		return apperror.Internal("Failed to update invoice")
	}

	go h.updateUnpaidCount()

	log.Info("Invoice updated successfully",
		zap.Uint64("invoice_id", id),
		zap.Float64("amt", invoice.Amt),
		zap.Bool("paid", invoice.Paid))
	return c.JSON(http.StatusOK, echo.Map{"invoice": invoice})
}

// DeleteInvoice deletes an invoice
func (h *InvoiceHandler) DeleteInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordInvoiceOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid invoice ID", zap.String("id", c.Param("id")), zap.Error(err))
		return apperror.BadRequest("Invalid invoice ID")
	}

	log.Info("Deleting invoice", zap.Uint64("invoice_id", id))

	var invoice model.Invoice
	if result := h.db.First(&invoice, id); result.Error != nil {
		log.Warn("Invoice not found for delete", zap.Uint64("invoice_id", id), zap.Error(result.Error))
		return apperror.NotFound("Invoice with id '%d' not found", id)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := h.db.Delete(&invoice)
	if result.Error != nil {
		log.Error("Failed to delete invoice", zap.Uint64("invoice_id", id), zap.Error(result.Error))
		return apperror.Internal("Failed to delete invoice")
	}

	go h.updateUnpaidCount()

	log.Info("Invoice deleted successfully",
		zap.Uint64("invoice_id", id),
		zap.Int64("rows_affected", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

// Helper function to update the unpaid invoice gauge
func (h *InvoiceHandler) updateUnpaidCount() {
	var count int64
	h.db.Model(&model.Invoice{}).Where("paid = ?", false).Count(&count)
	prometheus.UpdateUnpaidInvoiceCount(count)
}
