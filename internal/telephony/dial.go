// Package telephony builds dial links for the call action.
package telephony

import (
	"strings"
)

// EmergencyNumber is dialled when a doctor has no contact number.
const EmergencyNumber = "911"

// DialURI returns a tel: URI for number, or for EmergencyNumber when number
// is blank. Visual separators are kept; tel: allows them.
func DialURI(number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		number = EmergencyNumber
	}
	return "tel:" + strings.ReplaceAll(number, " ", "")
}
