package model

import "time"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

type Opportunity struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  *int64    `json:"category_id"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Spots       int       `json:"spots"`
	SpotsFilled int       `json:"spots_filled"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
