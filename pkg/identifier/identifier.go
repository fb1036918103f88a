// Package identifier generates and validates the human-readable record
// tokens used across the platform.
package identifier

import (
	"fmt"
	"math/rand/v2"
	"regexp"
)

var (
	appointmentPattern = regexp.MustCompile(`^APPT\d{3}[A-Z]$`)
	doctorPattern      = regexp.MustCompile(`^DOC\d{3}$`)
	patientPattern     = regexp.MustCompile(`^PAT\d{5}$`)
	labAdminPattern    = regexp.MustCompile(`^LAB\d{3}$`)
	licensePattern     = regexp.MustCompile(`^[A-Z]{2}\d{5}$`)
	pincodePattern     = regexp.MustCompile(`^\d{6}$`)
	datePattern        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NewAppointmentID generates an appointment token: "APPT" + 3 digits + one
// uppercase letter. The token space is small (~26,000), so callers must not
// treat the result as unique; the store's primary-key constraint is the
// guarantor and inserts are retried with a fresh token on conflict.
func NewAppointmentID() string {
	return fmt.Sprintf("APPT%03d%c", rand.IntN(1000), 'A'+rune(rand.IntN(26)))
}

// IsAppointmentID reports whether s matches the appointment token format.
func IsAppointmentID(s string) bool {
	return appointmentPattern.MatchString(s)
}

// IsDoctorID reports whether s matches the "DOC" + 3 digits format.
func IsDoctorID(s string) bool {
	return doctorPattern.MatchString(s)
}

// IsPatientDisplayID reports whether s matches the externally visible
// "PAT" + 5 digits format. Patients also carry an internal storage key;
// appointment rows always reference the display form.
func IsPatientDisplayID(s string) bool {
	return patientPattern.MatchString(s)
}

// IsLabAdminID reports whether s matches the "LAB" + 3 digits format.
func IsLabAdminID(s string) bool {
	return labAdminPattern.MatchString(s)
}

// IsLicenseNumber reports whether s matches the medical license format:
// two uppercase letters followed by five digits.
func IsLicenseNumber(s string) bool {
	return licensePattern.MatchString(s)
}

// IsPincode reports whether s is a 6-digit postal code.
func IsPincode(s string) bool {
	return pincodePattern.MatchString(s)
}

// IsAppointmentDate reports whether s is a YYYY-MM-DD calendar date string.
// Only the shape is checked here; callers needing a real date parse it.
func IsAppointmentDate(s string) bool {
	return datePattern.MatchString(s)
}
