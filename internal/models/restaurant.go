package models

// Restaurant is a read-only catalog entry shown to customers.
type Restaurant struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CuisineType string  `json:"cuisineType"`
	Distance    string  `json:"distance"`
	Rating      float64 `json:"rating"`
}
