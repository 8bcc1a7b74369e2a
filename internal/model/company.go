package model

// Company represents the company model stored in the database
type Company struct {
	Code        string `json:"code" gorm:"primaryKey;type:varchar(50)"`
	Name        string `json:"name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`
}

// CompanyDetail is a company with its associated industry names,
// returned by the single-company endpoint.
type CompanyDetail struct {
	Company
	Industries []string `json:"industries"`
}
