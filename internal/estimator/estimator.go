// Package estimator prices a used vehicle from its year, mileage and
// condition with a fixed linear depreciation model.
package estimator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formula is one of the two depreciation variants the service supports.
type Formula struct {
	Name      string
	Anchor    float64
	PerYear   float64
	LowRatio  float64
	HighRatio float64
}

var (
	Standard   = Formula{Name: "standard", Anchor: 20000, PerYear: 1000, LowRatio: 0.85, HighRatio: 1.15}
	Simplified = Formula{Name: "simplified", Anchor: 25000, PerYear: 2000, LowRatio: 0.70, HighRatio: 1.15}
)

const floorValue = 3000

var conditionMultipliers = map[string]float64{
	"excellent": 1.1,
	"good":      1.0,
	"fair":      0.85,
	"poor":      0.7,
}

// FormulaByName returns the named formula, or false when unknown.
func FormulaByName(name string) (Formula, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Standard.Name:
		return Standard, true
	case Simplified.Name:
		return Simplified, true
	}
	return Formula{}, false
}

type Input struct {
	Year      int    `json:"year" validate:"required,gte=1900,lte=2100"`
	Make      string `json:"make" validate:"required"`
	Model     string `json:"model" validate:"required"`
	Mileage   int    `json:"mileage" validate:"gte=0"`
	Condition string `json:"condition"`
	Region    string `json:"region"`
}

type Estimate struct {
	Low       float64 `json:"low"`
	Fair      float64 `json:"fair"`
	Max       float64 `json:"max"`
	Rationale string  `json:"rationale"`
}

// Estimator is safe for concurrent use.
type Estimator struct {
	formula       Formula
	referenceYear int
}

// New returns an Estimator; referenceYear <= 0 means the current year.
func New(f Formula, referenceYear int) *Estimator {
	if referenceYear <= 0 {
		referenceYear = time.Now().Year()
	}
	return &Estimator{formula: f, referenceYear: referenceYear}
}

// NewByName is New for a formula picked by name.
func NewByName(name string, referenceYear int) (*Estimator, error) {
	f, ok := FormulaByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown estimator formula %q", name)
	}
	return New(f, referenceYear), nil
}

// Estimate is deterministic for a fixed reference year. Region is accepted
// but does not affect the price.
func (e *Estimator) Estimate(in Input) Estimate {
	age := e.referenceYear - in.Year
	base := e.formula.Anchor - float64(age)*e.formula.PerYear

	switch {
	case in.Mileage > 100000:
		base -= 5000
	case in.Mileage > 75000:
		base -= 3000
	case in.Mileage > 50000:
		base -= 1500
	}

	condition := normalizeCondition(in.Condition)
	if m, ok := conditionMultipliers[condition]; ok {
		base *= m
	}
	base = math.Max(base, floorValue)

	fair := round2(base)
	return Estimate{
		Low:       round2(base * e.formula.LowRatio),
		Fair:      fair,
		Max:       round2(base * e.formula.HighRatio),
		Rationale: rationale(in, condition, fair),
	}
}

func normalizeCondition(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return "good"
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var printer = message.NewPrinter(language.English)

func rationale(in Input, condition string, fair float64) string {
	return fmt.Sprintf(
		"Based on %d %s %s with %s miles in %s condition. Market analysis shows similar vehicles trading at $%s. This estimate considers current market demand and vehicle history.",
		in.Year, in.Make, in.Model, Thousands(int64(in.Mileage)), condition, Thousands(int64(math.Round(fair))),
	)
}

// Thousands formats n with comma separators, e.g. 30000 -> "30,000".
func Thousands(n int64) string {
	return printer.Sprintf("%d", n)
}
