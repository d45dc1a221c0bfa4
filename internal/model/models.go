// Package model defines shared data structures for the war room.
//
// Scraper output is only loosely structured: the employer field may be an
// object, a bare string, or null; location and salary blocks may be missing
// entirely. All of that coercion lives here so the ingestion pipeline and the
// blacklist matcher see one consistent shape.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JobRecord mirrors a row of the jobs table.
type JobRecord struct {
	ID            string `db:"id" json:"id"`
	Title         string `db:"title" json:"title"`
	Company       string `db:"company" json:"company"`
	City          string `db:"city" json:"city"`
	Region        string `db:"region" json:"region"`
	FreshnessDays int    `db:"freshness_days" json:"freshness_days"`
	AnnualPay     int    `db:"annual_pay" json:"annual_pay"`
	PayDisplay    string `db:"pay_display" json:"pay_display"`
	Score         int    `db:"score" json:"score"`
	RawPayload    string `db:"raw_payload" json:"-"`
	Status        string `db:"status" json:"status"`
}

// Posting is a single scraped job listing as found in a batch file.
// Every field is optional; accessors below never dereference nil.
type Posting struct {
	Key           string            `json:"key"`
	URL           string            `json:"url"`
	Title         string            `json:"title"`
	Employer      Employer          `json:"employer"`
	Location      *Location         `json:"location"`
	DatePublished string            `json:"datePublished"`
	BaseSalary    *PayRange         `json:"baseSalary"`
	Attributes    map[string]string `json:"attributes"`
	Description   *Description      `json:"description"`
}

// EmployerName returns the coerced employer name, possibly empty.
func (p *Posting) EmployerName() string { return p.Employer.Name }

// CityRegion returns the location sub-fields, empty strings when the
// location block is absent.
func (p *Posting) CityRegion() (city, region string) {
	if p.Location == nil {
		return "", ""
	}
	return p.Location.City, p.Location.Admin1Code
}

// DescriptionText returns the best available description body: HTML first,
// then plain text, then empty.
func (p *Posting) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	if p.Description.HTML != "" {
		return p.Description.HTML
	}
	return p.Description.Text
}

// Employer tolerates the three shapes scrapers emit for the employer field:
// an object with a name, a bare string, or null/absent.
type Employer struct {
	Name string
}

// UnmarshalJSON never fails the enclosing posting on a malformed employer;
// unrecognized shapes coerce to an empty name.
func (e *Employer) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		e.Name = ""
		return nil
	}
	switch t := v.(type) {
	case nil:
		e.Name = ""
	case string:
		e.Name = t
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			e.Name = name
		} else {
			e.Name = ""
		}
	default:
		e.Name = fmt.Sprint(t)
	}
	return nil
}

// MarshalJSON keeps the object form on the way out.
func (e Employer) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"name": e.Name})
}

// Location carries the two sub-fields the record store keeps.
type Location struct {
	City       string `json:"city"`
	Admin1Code string `json:"admin1Code"`
}

// PayRange mirrors the baseSalary block.
type PayRange struct {
	Min        PayAmount `json:"min"`
	UnitOfWork string    `json:"unitOfWork"`
}

// PayAmount accepts a JSON number or a numeric string. Anything else leaves
// it unset, which the pay normalizer treats as unknown.
type PayAmount struct {
	Value float64
	OK    bool
}

func (a *PayAmount) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		a.Value, a.OK = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64); perr == nil {
			a.Value, a.OK = f, true
		}
	}
	return nil
}

func (a PayAmount) MarshalJSON() ([]byte, error) {
	if !a.OK {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

// Description mirrors the description block.
type Description struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// TitleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest. Used for the stored company name.
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
