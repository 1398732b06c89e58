package model

import "time"

const DefaultCurrency = "INR"

type Price struct {
	InterviewType InterviewType `json:"interview_type"`
	Amount        int64         `json:"amount"` // paise
	Currency      string        `json:"currency"`
	UpdatedBy     *int64        `json:"updated_by"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// DefaultPrices are seeded at startup for types without a price.
var DefaultPrices = map[InterviewType]int64{
	InterviewTypeDSA:          1000_00,
	InterviewTypeSystemDesign: 1500_00,
}
