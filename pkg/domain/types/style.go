package types

import "fmt"

// Style is a named tone transformation applied to a base reply
type Style string

const (
	StyleSupportive   Style = "supportive"
	StyleMotivational Style = "motivational"
	StylePlayful      Style = "playful"
	StyleFirm         Style = "firm"
)

// AllStyles returns all styles in selection-table order
func AllStyles() []Style {
	return []Style{
		StyleSupportive,
		StyleMotivational,
		StylePlayful,
		StyleFirm,
	}
}

// IsValid checks if the style is valid
func (s Style) IsValid() bool {
	switch s {
	case StyleSupportive,
		StyleMotivational,
		StylePlayful,
		StyleFirm:
		return true
	default:
		return false
	}
}

// String returns the string representation of the style
func (s Style) String() string {
	return string(s)
}

// ParseStyle parses a string into a Style
func ParseStyle(s string) (Style, error) {
	style := Style(s)
	if !style.IsValid() {
		return "", fmt.Errorf("invalid style: %s", s)
	}
	return style, nil
}
