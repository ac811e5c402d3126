package domain

import (
	"strconv"
	"strings"
	"time"

	dErrors "lifeline/pkg/domain-errors"
)

// User records carry dates of birth as dd-mm-yyyy strings. The format is a
// carry-over from the registration form and is parsed here in exactly one
// place.

// ParseDOB parses a dd-mm-yyyy date of birth string.
func ParseDOB(s string) (time.Time, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "date of birth must be in dd-mm-yyyy form")
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "date of birth day is not numeric")
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "date of birth month is not numeric")
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "date of birth year is not numeric")
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "date of birth is out of range")
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 31-02 becomes 02/03 or 03-03);
	// reject such inputs instead of silently shifting the birthday.
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "date of birth is not a calendar date")
	}
	return date, nil
}

// AgeAt returns full years between dob and now, decrementing by one when the
// birthday in now's year has not yet passed.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// AgeFromDOB parses a dd-mm-yyyy string and derives the age at now. The
// second return value is false when the string does not parse; callers
// rendering records without a usable dob omit the age rather than defaulting.
func AgeFromDOB(s string, now time.Time) (int, bool) {
	dob, err := ParseDOB(s)
	if err != nil {
		return 0, false
	}
	return AgeAt(dob, now), true
}
