package entity

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Airport holds reference data for an IATA airport
type Airport struct {
	ID       uint   `json:"-"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	CityCode string `json:"city_code,omitempty"`
	CityName string `json:"city_name,omitempty"`
	GmtTz    string `json:"gmt_offset,omitempty"`
	TzName   string `json:"time_zone,omitempty"`
}

// Location loads the airport's IANA time zone
func (a *Airport) Location() (*time.Location, error) {
	if a.TzName == "" {
		return nil, fmt.Errorf("airport %s has no time zone", a.Code)
	}
	loc, err := time.LoadLocation(a.TzName)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q for %s: %w", a.TzName, a.Code, err)
	}
	return loc, nil
}
