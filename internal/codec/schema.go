package codec

import (
	"fmt"
	"math"
	"regexp"

	"foodshare/pkg/types"
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{2}/\d{2}/\d{4}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidDate reports whether s is in YYYY-MM-DD or MM/DD/YYYY form.
func ValidDate(s string) bool {
	return datePattern.MatchString(s)
}

func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// recordFromMap validates a decoded payload and copies the known fields into a
// donor record. Unknown keys are ignored.
func recordFromMap(raw map[string]any) (*types.DonorRecord, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: payload is not an object", types.ErrDecode)
	}

	f := fields{raw: raw}
	rec := &types.DonorRecord{
		FirstName:              f.text("firstName", nil),
		Email:                  f.text("email", checkEmail),
		FirstGiftDate:          f.text("firstGiftDate", checkDate),
		LastGiftDate:           f.text("lastGiftDate", checkDate),
		LastGiftAmount:         f.number("lastGiftAmount"),
		LifetimeGiving:         f.number("lifetimeGiving"),
		ConsecutiveYearsGiving: f.count("consecutiveYearsGiving"),
		TotalGifts:             f.count("totalGifts"),
		LargestGiftAmount:      f.number("largestGiftAmount"),
		LargestGiftDate:        f.text("largestGiftDate", checkDate),
		GivingFY22:             f.number("givingFY22"),
		GivingFY23:             f.number("givingFY23"),
		GivingFY24:             f.number("givingFY24"),
		GivingFY25:             f.number("givingFY25"),
		Amount:                 f.number("amount"),
	}
	if f.err != nil {
		return nil, f.err
	}

	return rec, nil
}

func checkEmail(s string) bool {
	// empty email is allowed and means "no email"
	return s == "" || ValidEmail(s)
}

func checkDate(s string) bool {
	return ValidDate(s)
}

// fields reads typed values out of a decoded JSON object, keeping the first
// schema violation.
type fields struct {
	raw map[string]any
	err error
}

func (f *fields) fail(key, reason string) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: %s %s", types.ErrDecode, key, reason)
	}
}

func (f *fields) text(key string, valid func(string) bool) *string {
	v, ok := f.raw[key]
	if !ok {
		return nil
	}

	s, ok := v.(string)
	if !ok {
		f.fail(key, "must be a string")
		return nil
	}
	if valid != nil && !valid(s) {
		f.fail(key, "has an invalid format")
		return nil
	}
	return &s
}

func (f *fields) number(key string) *float64 {
	v, ok := f.raw[key]
	if !ok {
		return nil
	}

	n, ok := v.(float64)
	if !ok {
		f.fail(key, "must be a number")
		return nil
	}
	if n < 0 {
		f.fail(key, "must not be negative")
		return nil
	}
	return &n
}

func (f *fields) count(key string) *int {
	n := f.number(key)
	if n == nil {
		return nil
	}
	if *n != math.Trunc(*n) || *n > math.MaxInt32 {
		f.fail(key, "must be a whole number")
		return nil
	}

	i := int(*n)
	return &i
}
