package model

// Risk level labels shared by dividend, earnings and composite scoring.
const (
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskVeryHigh = "Very High"
	RiskUnknown  = "Unknown"
)

// HoldingWeight pairs a symbol with its share of total portfolio value.
type HoldingWeight struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// ConcentrationRisk holds standard portfolio concentration measures.
type ConcentrationRisk struct {
	HerfindahlIndex float64         `json:"herfindahlIndex"`
	MaxWeight       float64         `json:"maxWeight"`
	Top5Weight      float64         `json:"top5Weight"`
	NumHoldings     int             `json:"numHoldings"`
	TopHoldings     []HoldingWeight `json:"topHoldings"`
}

// DividendRisk scores one symbol's dividend sustainability on a 0-100 scale
// from the volatility and trend of its trailing payment amounts.
type DividendRisk struct {
	SustainabilityScore float64   `json:"sustainabilityScore"`
	Volatility          float64   `json:"volatility"`
	GrowthTrend         float64   `json:"growthTrend"`
	RiskLevel           string    `json:"riskLevel"`
	RecentAmounts       []float64 `json:"recentAmounts,omitempty"`
}

// EarningsRisk summarizes earnings-derived risk for one symbol.
type EarningsRisk struct {
	Symbol             string           `json:"symbol"`
	Score              float64          `json:"earningsRiskScore"`
	OverallRiskLevel   string           `json:"overallRiskLevel"`
	SurpriseAnalysis   SurpriseAnalysis `json:"surpriseAnalysis"`
	RevenueAnalysis    TrendAnalysis    `json:"revenueAnalysis"`
	ProfitabilityRisk  TrendAnalysis    `json:"profitabilityAnalysis"`
	GuidanceRiskLevel  string           `json:"guidanceRiskLevel"`
	ValuationRiskLevel string           `json:"valuationRiskLevel"`
	PEGRatio           float64          `json:"pegRatio"`
	DataAvailable      bool             `json:"earningsDataAvailable"`
	QuartersAnalyzed   int              `json:"quartersAnalyzed"`
}

// SurpriseAnalysis captures how reported earnings compared with estimates.
type SurpriseAnalysis struct {
	AvgSurprise        float64 `json:"avgSurprise"`
	SurpriseVolatility float64 `json:"surpriseVolatility"`
	BeatRate           float64 `json:"beatRate"`
	Beats              int     `json:"beats"`
	Misses             int     `json:"misses"`
	RiskLevel          string  `json:"riskLevel"`
}

// TrendAnalysis captures the average, volatility and direction of a quarterly
// fundamental series (revenue growth, profit margin).
type TrendAnalysis struct {
	Avg        float64 `json:"avg"`
	Volatility float64 `json:"volatility"`
	Trend      float64 `json:"trend"`
	RiskLevel  string  `json:"riskLevel"`
}

// RiskHoldingDetail is the per-holding valuation breakdown in a risk report.
type RiskHoldingDetail struct {
	Symbol string  `json:"symbol"`
	Shares float64 `json:"shares"`
	Price  float64 `json:"price"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// RiskReport is the composite risk analysis for a portfolio. RiskScore runs
// 0-100 with higher meaning lower risk.
type RiskReport struct {
	PortfolioID      string                  `json:"portfolioID"`
	PortfolioValue   float64                 `json:"portfolioValue"`
	NumHoldings      int                     `json:"numHoldings"`
	RiskScore        float64                 `json:"riskScore"`
	OverallRiskLevel string                  `json:"overallRiskLevel"`
	Volatility       float64                 `json:"volatility"`
	Beta             float64                 `json:"beta"`
	SharpeRatio      float64                 `json:"sharpeRatio"`
	MaxDrawdown      float64                 `json:"maxDrawdown"`
	VaR95            float64                 `json:"var95"`
	VaR99            float64                 `json:"var99"`
	Concentration    ConcentrationRisk       `json:"concentration"`
	DividendRisks    map[string]DividendRisk `json:"dividendRisks"`
	EarningsRisks    map[string]EarningsRisk `json:"earningsRisks"`
	AvgEarningsRisk  float64                 `json:"avgEarningsRisk"`
	Holdings         []RiskHoldingDetail     `json:"holdings"`
	Recommendations  []string                `json:"recommendations"`
}
