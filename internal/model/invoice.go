package model

// Invoice represents the invoice model stored in the database.
// PaidDate is non-nil exactly when Paid is true; the transition logic in
// the invoice handler maintains that invariant.
type Invoice struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	CompCode string  `json:"comp_code" gorm:"column:comp_code;type:varchar(50);index;not null"`
	Amt      float64 `json:"amt" gorm:"not null"`
	Paid     bool    `json:"paid" gorm:"not null;default:false"`
	AddDate  Date    `json:"add_date" gorm:"type:date"`
	PaidDate *Date   `json:"paid_date" gorm:"type:date"`
}

// InvoiceDetail is an invoice with its company embedded, returned by the
// single-invoice endpoint.
type InvoiceDetail struct {
	Invoice
	Company Company `json:"company"`
}
