package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"layoffs/internal/schema"
)

func i64(n int64) *int64     { return &n }
func f64(f float64) *float64 { return &f }
func str(s string) *string   { return &s }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// fixture covers nil totals, nil dates, nil industries and a company whose
// counts are all nil.
func fixture() []schema.Record {
	return []schema.Record{
		{Company: "Acme", Industry: str("Retail"), Country: str("United States"), TotalLaidOff: i64(10), PercentageLaidOff: f64(0.1), Date: day(2022, time.March, 4)},
		{Company: "Acme", Industry: str("Retail"), Country: str("United States"), TotalLaidOff: i64(30), Date: day(2023, time.January, 9)},
		{Company: "Beta", Industry: str("Crypto"), Country: str("Canada"), TotalLaidOff: i64(40), PercentageLaidOff: f64(1), FundsRaised: f64(50), Date: day(2023, time.January, 20)},
		{Company: "Gamma", Country: str("Canada"), PercentageLaidOff: f64(0.5), Date: day(2023, time.February, 1)},
		{Company: "Delta", Industry: str("Crypto"), TotalLaidOff: i64(5), PercentageLaidOff: f64(1), FundsRaised: f64(900)},
		{Company: "Echo", Industry: str("Food"), Country: str("India"), PercentageLaidOff: f64(1)},
	}
}

func TestCompanyExtremes(t *testing.T) {
	t.Parallel()

	want := []CompanyExtreme{
		{Company: "Acme", MaxTotal: i64(30), MinTotal: i64(10)},
		{Company: "Beta", MaxTotal: i64(40), MinTotal: i64(40)},
		{Company: "Delta", MaxTotal: i64(5), MinTotal: i64(5)},
		{Company: "Echo"},
		{Company: "Gamma"},
	}
	if diff := cmp.Diff(want, CompanyExtremes(fixture())); diff != "" {
		t.Fatalf("CompanyExtremes (-want +got):\n%s", diff)
	}
}

func TestCompanyTotals(t *testing.T) {
	t.Parallel()

	want := []CompanyTotal{
		{Company: "Acme", TotalLaidOff: i64(40), PercentageLaidOff: f64(0.1)},
		{Company: "Beta", TotalLaidOff: i64(40), PercentageLaidOff: f64(1)},
		{Company: "Delta", TotalLaidOff: i64(5), PercentageLaidOff: f64(1)},
		{Company: "Echo", PercentageLaidOff: f64(1)},
		{Company: "Gamma", PercentageLaidOff: f64(0.5)},
	}
	if diff := cmp.Diff(want, CompanyTotals(fixture())); diff != "" {
		t.Fatalf("CompanyTotals (-want +got):\n%s", diff)
	}
}

func TestIndustryAndCountryTotals(t *testing.T) {
	t.Parallel()

	wantIndustry := []GroupTotal{
		{Key: str("Crypto"), TotalLaidOff: i64(45)},
		{Key: str("Retail"), TotalLaidOff: i64(40)},
		{Key: str("Food")},
		{Key: nil},
	}
	if diff := cmp.Diff(wantIndustry, IndustryTotals(fixture())); diff != "" {
		t.Fatalf("IndustryTotals (-want +got):\n%s", diff)
	}

	wantCountry := []GroupTotal{
		{Key: str("Canada"), TotalLaidOff: i64(40)},
		{Key: str("United States"), TotalLaidOff: i64(40)},
		{Key: nil, TotalLaidOff: i64(5)},
		{Key: str("India")},
	}
	if diff := cmp.Diff(wantCountry, CountryTotals(fixture())); diff != "" {
		t.Fatalf("CountryTotals (-want +got):\n%s", diff)
	}
}

func TestYearAndMonthTotals(t *testing.T) {
	t.Parallel()

	wantYears := []YearTotal{
		{Year: 2023, TotalLaidOff: i64(70)},
		{Year: 2022, TotalLaidOff: i64(10)},
	}
	if diff := cmp.Diff(wantYears, YearTotals(fixture())); diff != "" {
		t.Fatalf("YearTotals (-want +got):\n%s", diff)
	}

	wantMonths := []MonthTotal{
		{Month: "2022-03", TotalLaidOff: i64(10)},
		{Month: "2023-01", TotalLaidOff: i64(70)},
		{Month: "2023-02"},
	}
	if diff := cmp.Diff(wantMonths, MonthTotals(fixture())); diff != "" {
		t.Fatalf("MonthTotals (-want +got):\n%s", diff)
	}

	wantRolling := []RollingMonth{
		{Month: "2022-03", TotalLaidOff: i64(10), Rolling: 10},
		{Month: "2023-01", TotalLaidOff: i64(70), Rolling: 80},
		{Month: "2023-02", Rolling: 80},
	}
	if diff := cmp.Diff(wantRolling, RollingMonthly(fixture())); diff != "" {
		t.Fatalf("RollingMonthly (-want +got):\n%s", diff)
	}
}

/*
TestTopCompaniesPerYear checks dense ranking: ties share a rank and the next
distinct total gets the following rank, not a skipped one.
*/
func TestTopCompaniesPerYear(t *testing.T) {
	t.Parallel()

	recs := []schema.Record{
		{Company: "A", TotalLaidOff: i64(100), Date: day(2022, 1, 1)},
		{Company: "B", TotalLaidOff: i64(100), Date: day(2022, 2, 1)},
		{Company: "C", TotalLaidOff: i64(50), Date: day(2022, 3, 1)},
		{Company: "C", TotalLaidOff: i64(10), Date: day(2022, 4, 1)},
		{Company: "D", TotalLaidOff: i64(20), Date: day(2022, 5, 1)},
		{Company: "E", PercentageLaidOff: f64(0.2), Date: day(2022, 5, 1)},
		{Company: "A", TotalLaidOff: i64(1), Date: day(2023, 1, 1)},
		{Company: "Z", TotalLaidOff: i64(999)},
	}
	want := []RankedCompany{
		{Year: 2022, Company: "A", TotalLaidOff: 100, Rank: 1},
		{Year: 2022, Company: "B", TotalLaidOff: 100, Rank: 1},
		{Year: 2022, Company: "C", TotalLaidOff: 60, Rank: 2},
		{Year: 2023, Company: "A", TotalLaidOff: 1, Rank: 1},
	}
	if diff := cmp.Diff(want, TopCompaniesPerYear(recs, 2)); diff != "" {
		t.Fatalf("TopCompaniesPerYear (-want +got):\n%s", diff)
	}
}

func TestShutdowns(t *testing.T) {
	t.Parallel()

	var got []string
	for _, r := range Shutdowns(fixture()) {
		got = append(got, r.Company)
	}
	if diff := cmp.Diff([]string{"Delta", "Beta", "Echo"}, got); diff != "" {
		t.Fatalf("Shutdowns (-want +got):\n%s", diff)
	}
}

func TestOverview(t *testing.T) {
	t.Parallel()

	want := Headlines{
		Rows:          6,
		MaxTotal:      i64(40),
		MaxPercentage: f64(1),
		FirstDate:     day(2022, time.March, 4),
		LastDate:      day(2023, time.February, 1),
	}
	if diff := cmp.Diff(want, Overview(fixture())); diff != "" {
		t.Fatalf("Overview (-want +got):\n%s", diff)
	}
}

/*
TestSummarize_Empty: an empty cleaned set yields empty, non-nil aggregates.
*/
func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil, 0)
	if s.CompanyExtremes == nil || s.CompanyTotals == nil || s.IndustryTotals == nil || s.CountryTotals == nil ||
		s.YearTotals == nil || s.MonthTotals == nil || s.RollingMonthly == nil || s.TopCompaniesPerYear == nil ||
		s.Shutdowns == nil {
		t.Fatalf("nil aggregate in %+v", s)
	}
	if n := len(s.CompanyTotals) + len(s.YearTotals) + len(s.MonthTotals) + len(s.IndustryTotals); n != 0 {
		t.Fatalf("empty input produced %d aggregate rows", n)
	}
	if s.Overview != (Headlines{}) {
		t.Fatalf("overview = %+v, want zero", s.Overview)
	}
}

func TestSummarize_DoesNotMutate(t *testing.T) {
	t.Parallel()

	in := fixture()
	Summarize(in, 3)
	if diff := cmp.Diff(fixture(), in); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}
