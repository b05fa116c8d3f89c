package schema

// Column names in canonical storage order.
const (
	ColCompany           = "company"
	ColLocation          = "location"
	ColIndustry          = "industry"
	ColTotalLaidOff      = "total_laid_off"
	ColPercentageLaidOff = "percentage_laid_off"
	ColDate              = "date"
	ColStage             = "stage"
	ColCountry           = "country"
	ColFundsRaised       = "funds_raised_millions"
)

// Columns is the canonical column order used by parsers and storage.
var Columns = []string{
	ColCompany,
	ColLocation,
	ColIndustry,
	ColTotalLaidOff,
	ColPercentageLaidOff,
	ColDate,
	ColStage,
	ColCountry,
	ColFundsRaised,
}

// Field describes one column of the cleaned table.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "text" | "int" | "float" | "date"
	Required bool   `json:"required,omitempty"`
}

// Contract names the column set a source must provide and the types the
// cleaned table exposes.
type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`

	// Aliases maps alternative header names onto canonical columns.
	Aliases map[string]string `json:"aliases,omitempty"`
}

// Layoffs is the contract of the layoffs table.
var Layoffs = Contract{
	Name: "layoffs",
	Fields: []Field{
		{Name: ColCompany, Type: "text", Required: true},
		{Name: ColLocation, Type: "text"},
		{Name: ColIndustry, Type: "text"},
		{Name: ColTotalLaidOff, Type: "int"},
		{Name: ColPercentageLaidOff, Type: "float"},
		{Name: ColDate, Type: "date"},
		{Name: ColStage, Type: "text"},
		{Name: ColCountry, Type: "text"},
		{Name: ColFundsRaised, Type: "float"},
	},
	Aliases: map[string]string{
		"funds_raised":    ColFundsRaised,
		"funds_raised_mm": ColFundsRaised,
		"laid_off":        ColTotalLaidOff,
		"percentage":      ColPercentageLaidOff,
	},
}

// Missing returns the contract columns absent from header, in contract order.
// Every column is needed to build a Raw row, so all of them are checked.
func (c Contract) Missing(header map[string]int) []string {
	var out []string
	for _, f := range c.Fields {
		if _, ok := header[f.Name]; !ok {
			out = append(out, f.Name)
		}
	}
	return out
}

// Canonical maps a normalized header name through the alias table.
func (c Contract) Canonical(name string) string {
	if mapped, ok := c.Aliases[name]; ok {
		return mapped
	}
	return name
}
