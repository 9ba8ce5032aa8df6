package model

import (
	"encoding/json"
	"fmt"

	"github.com/siherrmann/fingrapher/helper"
)

// GraphEntity is a node matched by a graph lookup with its full property set
type GraphEntity struct {
	EntityType string                 `json:"entity_type"`
	Attributes map[string]interface{} `json:"attributes"`
}

// MarshalJSON writes non-finite attribute values as null
func (e GraphEntity) MarshalJSON() ([]byte, error) {
	attributes, _ := helper.CleanNaN(map[string]interface{}(e.Attributes)).(map[string]interface{})
	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	return json.Marshal(struct {
		EntityType string                 `json:"entity_type"`
		Attributes map[string]interface{} `json:"attributes"`
	}{e.EntityType, attributes})
}

// Attr returns an attribute formatted as a string, or "" if missing
func (e GraphEntity) Attr(key string) string {
	return Metadata(e.Attributes).String(key)
}

// Float returns a numeric attribute and whether it was present and numeric
func (e GraphEntity) Float(key string) (float64, bool) {
	switch v := e.Attributes[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Company holds the properties of a Company node
type Company struct {
	Ticker          string  `json:"ticker"`
	Name            string  `json:"name"`
	Sector          string  `json:"sector,omitempty"`
	Industry        string  `json:"industry,omitempty"`
	Country         string  `json:"country,omitempty"`
	Employees       int64   `json:"employees,omitempty"`
	Website         string  `json:"website,omitempty"`
	Description     string  `json:"description,omitempty"`
	CurrentPrice    float64 `json:"current_price,omitempty"`
	MarketCap       float64 `json:"market_cap,omitempty"`
	Revenue         float64 `json:"revenue,omitempty"`
	RevenueGrowth   float64 `json:"revenue_growth,omitempty"`
	ProfitMargin    float64 `json:"profit_margin,omitempty"`
	OperatingMargin float64 `json:"operating_margin,omitempty"`
	PERatio         float64 `json:"pe_ratio,omitempty"`
	DebtToEquity    float64 `json:"debt_to_equity,omitempty"`
	ROE             float64 `json:"roe,omitempty"`
}

// Validate checks the fields required to key a Company node
func (c Company) Validate() error {
	if c.Ticker == "" {
		return helper.NewError("company validation", fmt.Errorf("ticker is required"))
	}
	return nil
}

// Properties returns the node property set with non-finite values as nil
func (c Company) Properties() map[string]interface{} {
	props := map[string]interface{}{
		"ticker":           c.Ticker,
		"name":             c.Name,
		"sector":           c.Sector,
		"industry":         c.Industry,
		"country":          c.Country,
		"employees":        c.Employees,
		"website":          c.Website,
		"description":      c.Description,
		"current_price":    c.CurrentPrice,
		"market_cap":       c.MarketCap,
		"revenue":          c.Revenue,
		"revenue_growth":   c.RevenueGrowth,
		"profit_margin":    c.ProfitMargin,
		"operating_margin": c.OperatingMargin,
		"pe_ratio":         c.PERatio,
		"debt_to_equity":   c.DebtToEquity,
		"roe":              c.ROE,
	}
	cleaned, _ := helper.CleanNaN(props).(map[string]interface{})
	return cleaned
}
