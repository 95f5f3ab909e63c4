package meter

import "time"

// Data is one reading from a feedwater meter.
type Data struct {
	Id            string    `json:"id"`
	Model         string    `json:"model"`
	Time          time.Time `json:"time"`
	Flow_M3H      float64   `json:"flow_m3h,omitempty"`
	Total_M3      float64   `json:"total_m3,omitempty"`
	Temperature_C float64   `json:"temperature_c,omitempty"`
}
