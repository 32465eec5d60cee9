// Package types contains common types used across the application
package types

// Target is one matching record in the shape exposed to API clients.
type Target struct {
	NPI                   string  `json:"npi"`
	State                 string  `json:"state"`
	Region                string  `json:"region"`
	Speciality            string  `json:"speciality"`
	AttendanceProbability float64 `json:"attendance_probability"`
}

// Query echoes the resolved query parameters back to clients.
type Query struct {
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Day     int    `json:"day"`
	DayName string `json:"day_name"`
}

// TargetList is the response body of a targeting query.
type TargetList struct {
	RunID     string   `json:"run_id"`
	Query     Query    `json:"query"`
	Threshold float64  `json:"threshold"`
	Ranked    bool     `json:"ranked"`
	Count     int      `json:"count"`
	Empty     bool     `json:"empty"`
	Message   string   `json:"message"`
	Targets   []Target `json:"targets"`
}
