package aggregate

import "layoffs/internal/schema"

// DefaultTopN is the rank cutoff used when Summarize gets n <= 0.
const DefaultTopN = 5

// Summary bundles every aggregate over one cleaned set.
type Summary struct {
	Overview            Headlines        `json:"overview"`
	CompanyExtremes     []CompanyExtreme `json:"company_extremes"`
	CompanyTotals       []CompanyTotal   `json:"company_totals"`
	IndustryTotals      []GroupTotal     `json:"industry_totals"`
	CountryTotals       []GroupTotal     `json:"country_totals"`
	YearTotals          []YearTotal      `json:"year_totals"`
	MonthTotals         []MonthTotal     `json:"month_totals"`
	RollingMonthly      []RollingMonth   `json:"rolling_monthly"`
	TopCompaniesPerYear []RankedCompany  `json:"top_companies_per_year"`
	Shutdowns           []schema.Record  `json:"shutdowns"`
}

// Summarize runs all aggregates over recs.
func Summarize(recs []schema.Record, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return Summary{
		Overview:            Overview(recs),
		CompanyExtremes:     CompanyExtremes(recs),
		CompanyTotals:       CompanyTotals(recs),
		IndustryTotals:      IndustryTotals(recs),
		CountryTotals:       CountryTotals(recs),
		YearTotals:          YearTotals(recs),
		MonthTotals:         MonthTotals(recs),
		RollingMonthly:      RollingMonthly(recs),
		TopCompaniesPerYear: TopCompaniesPerYear(recs, topN),
		Shutdowns:           Shutdowns(recs),
	}
}
