// Package report exports aggregate summaries as CSV files and JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"layoffs/internal/aggregate"
	"layoffs/internal/schema"
)

// Report file names, one per aggregate.
const (
	FileCompanyExtremes     = "company_extremes.csv"
	FileCompanyTotals       = "company_totals.csv"
	FileIndustryTotals      = "industry_totals.csv"
	FileCountryTotals       = "country_totals.csv"
	FileYearTotals          = "year_totals.csv"
	FileMonthTotals         = "month_totals.csv"
	FileRollingMonthly      = "rolling_monthly.csv"
	FileTopCompaniesPerYear = "top_companies_per_year.csv"
	FileShutdowns           = "shutdowns.csv"
)

type table struct {
	file   string
	header []string
	rows   [][]string
}

// WriteCSV writes one CSV file per aggregate into dir, creating it if needed,
// and returns the paths written. Nil values are written as empty cells.
func WriteCSV(dir string, s aggregate.Summary) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create dir %s: %w", dir, err)
	}
	var paths []string
	for _, t := range tables(s) {
		path := filepath.Join(dir, t.file)
		if err := writeTable(path, t); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTable(path string, t table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	_ = w.Write(t.header)
	_ = w.WriteAll(t.rows) // WriteAll flushes
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report: close %s: %w", path, err)
	}
	return nil
}

func tables(s aggregate.Summary) []table {
	ts := make([]table, 0, 9)

	t := table{file: FileCompanyExtremes, header: []string{"company", "max_total_laid_off", "min_total_laid_off"}}
	for _, r := range s.CompanyExtremes {
		t.rows = append(t.rows, []string{r.Company, fmtInt(r.MaxTotal), fmtInt(r.MinTotal)})
	}
	ts = append(ts, t)

	t = table{file: FileCompanyTotals, header: []string{"company", "total_laid_off", "percentage_laid_off"}}
	for _, r := range s.CompanyTotals {
		t.rows = append(t.rows, []string{r.Company, fmtInt(r.TotalLaidOff), fmtFloat(r.PercentageLaidOff)})
	}
	ts = append(ts, t)

	ts = append(ts, groupTable(FileIndustryTotals, schema.ColIndustry, s.IndustryTotals))
	ts = append(ts, groupTable(FileCountryTotals, schema.ColCountry, s.CountryTotals))

	t = table{file: FileYearTotals, header: []string{"year", "total_laid_off"}}
	for _, r := range s.YearTotals {
		t.rows = append(t.rows, []string{strconv.Itoa(r.Year), fmtInt(r.TotalLaidOff)})
	}
	ts = append(ts, t)

	t = table{file: FileMonthTotals, header: []string{"month", "total_laid_off"}}
	for _, r := range s.MonthTotals {
		t.rows = append(t.rows, []string{r.Month, fmtInt(r.TotalLaidOff)})
	}
	ts = append(ts, t)

	t = table{file: FileRollingMonthly, header: []string{"month", "total_laid_off", "rolling_total"}}
	for _, r := range s.RollingMonthly {
		t.rows = append(t.rows, []string{r.Month, fmtInt(r.TotalLaidOff), strconv.FormatInt(r.Rolling, 10)})
	}
	ts = append(ts, t)

	t = table{file: FileTopCompaniesPerYear, header: []string{"year", "rank", "company", "total_laid_off"}}
	for _, r := range s.TopCompaniesPerYear {
		t.rows = append(t.rows, []string{strconv.Itoa(r.Year), strconv.Itoa(r.Rank), r.Company, strconv.FormatInt(r.TotalLaidOff, 10)})
	}
	ts = append(ts, t)

	t = table{file: FileShutdowns, header: schema.Columns}
	for _, r := range s.Shutdowns {
		t.rows = append(t.rows, recordRow(r))
	}
	ts = append(ts, t)

	return ts
}

func groupTable(file, key string, rows []aggregate.GroupTotal) table {
	t := table{file: file, header: []string{key, "total_laid_off"}}
	for _, r := range rows {
		t.rows = append(t.rows, []string{fmtStr(r.Key), fmtInt(r.TotalLaidOff)})
	}
	return t
}

func recordRow(r schema.Record) []string {
	return []string{
		r.Company,
		fmtStr(r.Location),
		fmtStr(r.Industry),
		fmtInt(r.TotalLaidOff),
		fmtFloat(r.PercentageLaidOff),
		fmtDate(r.Date),
		fmtStr(r.Stage),
		fmtStr(r.Country),
		fmtFloat(r.FundsRaised),
	}
}

func fmtStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func fmtInt(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func fmtFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func fmtDate(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format(schema.DateLayout)
}

// WriteJSON writes s as indented JSON. Nil values are null and dates use the
// 2006-01-02 layout.
func WriteJSON(w io.Writer, s aggregate.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(s)); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// WriteJSONFile writes s to path, creating parent directories.
func WriteJSONFile(path string, s aggregate.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", path, err)
	}
	if err := WriteJSON(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type jsonHeadlines struct {
	Rows          int      `json:"rows"`
	MaxTotal      *int64   `json:"max_total_laid_off"`
	MaxPercentage *float64 `json:"max_percentage_laid_off"`
	FirstDate     *string  `json:"first_date"`
	LastDate      *string  `json:"last_date"`
}

type jsonRecord struct {
	Company           string   `json:"company"`
	Location          *string  `json:"location"`
	Industry          *string  `json:"industry"`
	TotalLaidOff      *int64   `json:"total_laid_off"`
	PercentageLaidOff *float64 `json:"percentage_laid_off"`
	Date              *string  `json:"date"`
	Stage             *string  `json:"stage"`
	Country           *string  `json:"country"`
	FundsRaised       *float64 `json:"funds_raised_millions"`
}

type jsonSummary struct {
	Overview            jsonHeadlines              `json:"overview"`
	CompanyExtremes     []aggregate.CompanyExtreme `json:"company_extremes"`
	CompanyTotals       []aggregate.CompanyTotal   `json:"company_totals"`
	IndustryTotals      []aggregate.GroupTotal     `json:"industry_totals"`
	CountryTotals       []aggregate.GroupTotal     `json:"country_totals"`
	YearTotals          []aggregate.YearTotal      `json:"year_totals"`
	MonthTotals         []aggregate.MonthTotal     `json:"month_totals"`
	RollingMonthly      []aggregate.RollingMonth   `json:"rolling_monthly"`
	TopCompaniesPerYear []aggregate.RankedCompany  `json:"top_companies_per_year"`
	Shutdowns           []jsonRecord               `json:"shutdowns"`
}

func dateStr(p *time.Time) *string {
	if p == nil {
		return nil
	}
	s := p.Format(schema.DateLayout)
	return &s
}

func toJSON(s aggregate.Summary) jsonSummary {
	out := jsonSummary{
		Overview: jsonHeadlines{
			Rows:          s.Overview.Rows,
			MaxTotal:      s.Overview.MaxTotal,
			MaxPercentage: s.Overview.MaxPercentage,
			FirstDate:     dateStr(s.Overview.FirstDate),
			LastDate:      dateStr(s.Overview.LastDate),
		},
		CompanyExtremes:     s.CompanyExtremes,
		CompanyTotals:       s.CompanyTotals,
		IndustryTotals:      s.IndustryTotals,
		CountryTotals:       s.CountryTotals,
		YearTotals:          s.YearTotals,
		MonthTotals:         s.MonthTotals,
		RollingMonthly:      s.RollingMonthly,
		TopCompaniesPerYear: s.TopCompaniesPerYear,
		Shutdowns:           make([]jsonRecord, 0, len(s.Shutdowns)),
	}
	for _, r := range s.Shutdowns {
		out.Shutdowns = append(out.Shutdowns, jsonRecord{
			Company:           r.Company,
			Location:          r.Location,
			Industry:          r.Industry,
			TotalLaidOff:      r.TotalLaidOff,
			PercentageLaidOff: r.PercentageLaidOff,
			Date:              dateStr(r.Date),
			Stage:             r.Stage,
			Country:           r.Country,
			FundsRaised:       r.FundsRaised,
		})
	}
	return out
}
