package v1

import "time"

type ChartPoint struct {
	Label    string    `json:"label"`
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	Category string    `json:"category,omitempty"`
}

type ChartData struct {
	Points []ChartPoint `json:"points"`
}
