package models

// TrustFactorAnalysis lists the signals behind the score
type TrustFactorAnalysis struct {
	PositiveSignals []PositiveSignal `json:"positiveSignals"`
	MissingSignals  []MissingSignal  `json:"missingSignals"`
	RiskFactors     []RiskFactor     `json:"riskFactors"`
}

type PositiveSignal struct {
	Signal      string `json:"signal"`
	Description string `json:"description"`
	Strength    string `json:"strength"`
}

type MissingSignal struct {
	Signal   string `json:"signal"`
	HowToFix string `json:"howToFix"`
}

// RiskFactor contrasts a conventional lender's reading with the alternative one
type RiskFactor struct {
	Factor              string `json:"factor"`
	TraditionalBankView string `json:"traditionalBankView"`
	CredzoView          string `json:"credzoView"`
}
