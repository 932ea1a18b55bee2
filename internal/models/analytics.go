package models

// Risk levels
const (
	RiskLevelLow      = "Low Risk"
	RiskLevelModerate = "Moderate Risk"
	RiskLevelHigh     = "High Risk"
)

// SpendingAnalysis represents the category-level spending breakdown
type SpendingAnalysis struct {
	Categories         []SpendingCategory `json:"categories"`
	TotalSpending      float64            `json:"totalSpending"`
	TotalIncome        float64            `json:"totalIncome"`
	SavingsRate        float64            `json:"savingsRate"`
	SpendingHabitsText string             `json:"spendingHabitsText"`
}

// SpendingCategory represents one slice of spending
type SpendingCategory struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"` // INR
	Color      string  `json:"color"`  // hex
}

// PercentageTotal sums the category percentages
func (s SpendingAnalysis) PercentageTotal() float64 {
	var total float64
	for _, c := range s.Categories {
		total += c.Percentage
	}
	return total
}

// AIInsights represents the qualitative financial health summary
type AIInsights struct {
	FinancialHealthSummary string           `json:"financialHealthSummary"`
	RiskLevel              string           `json:"riskLevel"`
	RiskExplanation        string           `json:"riskExplanation"`
	SpendingBehavior       SpendingBehavior `json:"spendingBehavior"`
}

// SpendingBehavior represents observed spending patterns
type SpendingBehavior struct {
	Patterns         []string `json:"patterns"`
	UnusualActivity  string   `json:"unusualActivity"`
	ConsistencyScore string   `json:"consistencyScore"`
}
