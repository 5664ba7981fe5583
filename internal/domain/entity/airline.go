package entity

// Airline represents an airline entity
type Airline struct {
	ID   uint   `json:"-"`
	Code string `json:"code"`
	Name string `json:"name"`
}
