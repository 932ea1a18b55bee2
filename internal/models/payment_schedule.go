package models

// PaymentScheduleEntry represents one month of an amortized repayment schedule
type PaymentScheduleEntry struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"` // outstanding after this payment
}
