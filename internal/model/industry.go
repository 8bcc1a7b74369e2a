package model

// Industry represents the industry model stored in the database
type Industry struct {
	Code     string `json:"code" gorm:"primaryKey;type:varchar(50)"`
	Industry string `json:"industry" gorm:"type:varchar(100);not null"`
}

// IndustryDetail is an industry with the codes of its associated
// companies, returned by the industry listing.
type IndustryDetail struct {
	Industry
	Companies []string `json:"companies"`
}

// CompanyIndustry is the company/industry association row. The composite
// primary key makes duplicate associations impossible; inserts use
// ON CONFLICT DO NOTHING so repeats are no-ops.
type CompanyIndustry struct {
	CompCode     string `json:"comp_code" gorm:"column:comp_code;primaryKey;type:varchar(50)"`
	IndustryCode string `json:"industry_code" gorm:"column:industry_code;primaryKey;type:varchar(50)"`
}

// TableName overrides the default table name
func (CompanyIndustry) TableName() string {
	return "companies_industries"
}
