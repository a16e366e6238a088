package models

var knownCities = [...]string{"stockholm", "london", "paris", "tokyo", "newyork", "berlin", "sydney", "toronto"}

var conditions = [...]string{"sunny", "cloudy", "rainy", "snowy", "windy", "foggy"}

// Temperature bounds in degrees Celsius, inclusive.
const (
	MinTemperature = -10
	MaxTemperature = 35
)

// Usage counter bounds, inclusive.
const (
	MinRequestsToday = 1000
	MaxRequestsToday = 10000
	MinActiveUsers   = 50
	MaxActiveUsers   = 500
)

// WeatherReading is a single simulated observation. Built per request and never stored.
type WeatherReading struct {
	City        string  `json:"city"`
	Temperature int     `json:"temperature"`
	Condition   string  `json:"condition"`
	Timestamp   float64 `json:"timestamp"` // epoch seconds
}

// UsageMetrics is the synthetic payload of /metrics-custom.
type UsageMetrics struct {
	RequestsToday int `json:"requests_today"`
	ActiveUsers   int `json:"active_users"`
}

// HealthStatus is the body of /health.
type HealthStatus struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON body for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// KnownCities returns a copy of the decorative city list. It is not used for validation.
func KnownCities() []string {
	out := make([]string, len(knownCities))
	copy(out, knownCities[:])
	return out
}

// Conditions returns a copy of the possible weather conditions.
func Conditions() []string {
	out := make([]string, len(conditions))
	copy(out, conditions[:])
	return out
}

// IsKnownCity reports whether city (already lower-cased) is in the known list.
func IsKnownCity(city string) bool {
	for _, c := range knownCities {
		if c == city {
			return true
		}
	}
	return false
}

// IsCondition reports whether s is one of the known conditions.
func IsCondition(s string) bool {
	for _, c := range conditions {
		if c == s {
			return true
		}
	}
	return false
}

// ConditionAt returns the condition at index i modulo the list length.
func ConditionAt(i int) string {
	n := len(conditions)
	return conditions[((i%n)+n)%n]
}

// ConditionCount returns the number of known conditions.
func ConditionCount() int {
	return len(conditions)
}
