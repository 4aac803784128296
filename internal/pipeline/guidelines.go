package pipeline

// Underwriting guideline constants embedded in stage instructions.
const (
	minCoverageUSD      = 50_000
	maxCoverageUSD      = 5_000_000
	standardMaxUSD      = 1_000_000
	minApplicantAge     = 18
	maxApplicantAge     = 75
	seniorAgeThreshold  = 65
	incomeMultiplier    = 10
	maxDebtToIncome     = 0.4
	minNetWorthUSD      = 100_000
	autoApprovalAgeMin  = 25
	autoApprovalAgeMax  = 55
	autoApprovalMaxUSD  = 1_000_000
	drivingLookbackYrs  = 5
	healthRiskWeight    = 0.4
	ageRiskWeight       = 0.3
	lifestyleRiskWeight = 0.2
	financialRiskWeight = 0.1
)

const requiredDocuments = `Application form: mandatory
Medical records: required if age over 50 or coverage over 500000 USD (physician statement, medical exam, lab results)
Driving records: required if coverage over 1000000 USD, 5 year lookback
Financial statements: required if coverage over 500000 USD (tax returns, bank statements, investment accounts)
Identity verification: mandatory`

const declineCriteria = `terminal illness, financial fraud, regulatory violations, age limit exceeded`

const manualReviewTriggers = `high coverage amount, complex medical history, financial inconsistencies, regulatory flags`

const riskCategories = `preferred_plus (multiplier 0.8, max age 55), preferred (1.0, max age 65), standard (1.2, max age 70), substandard (1.5, max age 75)`
