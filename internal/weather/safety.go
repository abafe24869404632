// server/internal/weather/safety.go
package weather

import (
	"fmt"
	"strings"
)

// Safety levels.
const (
	SafetySafe    = "safe"
	SafetyCaution = "caution"
	SafetyUnsafe  = "unsafe"
)

// Calamity is one hazardous condition detected in an observation.
type Calamity struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"` // moderate, high
	Description string `json:"description"`
}

// SafetyReport is the travel advisory derived from an observation.
type SafetyReport struct {
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	Calamities []Calamity `json:"calamities"`
}

// AssessSafety derives a travel advisory from current conditions. Thresholds:
// >20 mm/h rain or thunderstorm-class conditions are unsafe, >10 mm/h rain or
// >20 m/s wind warrant caution.
func AssessSafety(obs Observation) SafetyReport {
	condition := strings.ToLower(obs.Condition)
	calamities := []Calamity{}
	level := SafetySafe

	if obs.Rainfall > 20.0 {
		calamities = append(calamities, Calamity{
			Type:        "Heavy Rainfall",
			Severity:    "high",
			Description: fmt.Sprintf("Heavy rainfall detected: %.1fmm/h", obs.Rainfall),
		})
		level = SafetyUnsafe
	} else if obs.Rainfall > 10.0 {
		calamities = append(calamities, Calamity{
			Type:        "Moderate Rainfall",
			Severity:    "moderate",
			Description: fmt.Sprintf("Moderate rainfall: %.1fmm/h", obs.Rainfall),
		})
		level = SafetyCaution
	}

	switch condition {
	case "thunderstorm", "extreme":
		calamities = append(calamities, Calamity{
			Type:        "Severe Weather",
			Severity:    "high",
			Description: fmt.Sprintf("Severe weather condition: %s", condition),
		})
		level = SafetyUnsafe
	case "heavy rain", "squall", "tornado":
		calamities = append(calamities, Calamity{
			Type:        "Dangerous Weather",
			Severity:    "high",
			Description: fmt.Sprintf("Dangerous weather: %s", condition),
		})
		level = SafetyUnsafe
	}

	if obs.WindSpeed > 20.0 {
		calamities = append(calamities, Calamity{
			Type:        "Strong Winds",
			Severity:    "moderate",
			Description: fmt.Sprintf("Strong winds: %.1fm/s", obs.WindSpeed),
		})
		if level == SafetySafe {
			level = SafetyCaution
		}
	}

	var message string
	switch level {
	case SafetyUnsafe:
		message = "NOT SAFE TO TRAVEL - Severe weather conditions detected"
	case SafetyCaution:
		message = "TRAVEL WITH CAUTION - Adverse weather conditions"
	default:
		message = "SAFE TO TRAVEL - Weather conditions are favorable"
	}

	return SafetyReport{Status: level, Message: message, Calamities: calamities}
}
