package ymaps

import "encoding/json"

// MarkerStyle is the display class of an organization marker.
type MarkerStyle int

const (
	// MarkerUnknownHours covers both missing and unreadable hours data.
	MarkerUnknownHours MarkerStyle = iota
	// MarkerHasHours means regular opening hours are published.
	MarkerHasHours
	// MarkerAllDay means the organization is open 24 hours every day.
	MarkerAllDay
)

// Static map marker codes.
const (
	MarkerCodeGreen = "pm2gnm"
	MarkerCodeBlue  = "pm2blm"
	MarkerCodeGrey  = "pm2grm"
	MarkerCodeRed   = "pm2rdm"
	// MarkerCodeRedLarge marks a single searched location.
	MarkerCodeRedLarge = "pm2rdl"
)

// String returns the tag name of the style.
func (s MarkerStyle) String() string {
	switch s {
	case MarkerAllDay:
		return "24-hour"
	case MarkerHasHours:
		return "has-hours"
	default:
		return "unknown-hours"
	}
}

// Code returns the static map marker code for the style.
func (s MarkerStyle) Code() string {
	switch s {
	case MarkerAllDay:
		return MarkerCodeGreen
	case MarkerHasHours:
		return MarkerCodeBlue
	default:
		return MarkerCodeGrey
	}
}

// ClassifyHours maps an optional Hours object to a marker style. An object
// with any availability that is both TwentyFourHours and Everyday is
// MarkerAllDay; any other decodable object is MarkerHasHours, including one
// without an Availabilities list. Absent, null and malformed data, a null
// Availabilities included, all yield MarkerUnknownHours.
func ClassifyHours(raw json.RawMessage) MarkerStyle {
	if !hasValue(raw) {
		return MarkerUnknownHours
	}

	var hours struct {
		Availabilities json.RawMessage `json:"Availabilities"`
	}
	if err := json.Unmarshal(raw, &hours); err != nil {
		return MarkerUnknownHours
	}
	if len(hours.Availabilities) == 0 {
		return MarkerHasHours
	}
	if !hasValue(hours.Availabilities) {
		return MarkerUnknownHours
	}

	var availabilities []struct {
		TwentyFourHours bool `json:"TwentyFourHours"`
		Everyday        bool `json:"Everyday"`
	}
	if err := json.Unmarshal(hours.Availabilities, &availabilities); err != nil {
		return MarkerUnknownHours
	}

	for _, a := range availabilities {
		if a.TwentyFourHours && a.Everyday {
			return MarkerAllDay
		}
	}
	return MarkerHasHours
}
