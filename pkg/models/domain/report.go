package domain

// Report represents a period spend report rendered by the terminal exporter
type Report struct {
	Title         string
	Provider      string
	Period        BillingPeriod
	Sections      []ReportSection
	TotalAmount   float64
	TotalQuantity float64
	Threshold     float64
	Currency      string
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
}

// ReportDetail represents one row of a section
type ReportDetail struct {
	Name     string
	Amount   float64
	Quantity float64
	Share    float64 // fraction of the period total amount
}
