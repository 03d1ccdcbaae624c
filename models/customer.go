package models

// Customer is a company the business sells to.
type Customer struct {
	Base
	Name          string `gorm:"not null;index" json:"name"`
	CompanyName   string `json:"companyName"`
	TaxOffice     string `json:"taxOffice"`
	TaxNumber     string `gorm:"index" json:"taxNumber"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `gorm:"type:text" json:"address"`
	City          string `json:"city"`
	ContactPerson string `json:"contactPerson"`
	Notes         string `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
