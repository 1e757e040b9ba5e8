// Package timefmt formats the current time with date(1) style patterns.
package timefmt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lestrrat-go/strftime"
)

// DefaultPattern is used when no +FORMAT is given
const DefaultPattern = "%H:%M:%S"

// Formatter is a compiled strftime pattern
type Formatter struct {
	pattern  string
	compiled *strftime.Strftime
	now      func() time.Time
}

// nanoseconds appends the zero padded nanosecond field like date(1) %N
type nanoseconds struct{}

func (nanoseconds) Append(b []byte, t time.Time) []byte {
	ns := strconv.Itoa(t.Nanosecond())
	for i := len(ns); i < 9; i++ {
		b = append(b, '0')
	}
	return append(b, ns...)
}

// meridiem appends lower case am/pm like date(1) %P
type meridiem struct{}

func (meridiem) Append(b []byte, t time.Time) []byte {
	if t.Hour() < 12 {
		return append(b, "am"...)
	}
	return append(b, "pm"...)
}

// isoYear appends the ISO 8601 week-numbering year like date(1) %G
type isoYear struct{}

func (isoYear) Append(b []byte, t time.Time) []byte {
	year, _ := t.ISOWeek()
	return strconv.AppendInt(b, int64(year), 10)
}

// New compiles pattern. An unknown conversion is reported here rather than
// on every call.
func New(pattern string) (*Formatter, error) {
	compiled, err := strftime.New(pattern,
		strftime.WithMilliseconds('L'),
		strftime.WithUnixSeconds('s'),
		strftime.WithSpecification('N', nanoseconds{}),
		strftime.WithSpecification('P', meridiem{}),
		strftime.WithSpecification('G', isoYear{}),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid time format %q: %v", pattern, err)
	}
	return &Formatter{pattern: pattern, compiled: compiled, now: time.Now}, nil
}

// Pattern returns the pattern the formatter was compiled from
func (f *Formatter) Pattern() string {
	return f.pattern
}

// Format renders t in the local time zone
func (f *Formatter) Format(t time.Time) string {
	return f.compiled.FormatString(t.Local())
}

// Now renders the current time
func (f *Formatter) Now() string {
	return f.Format(f.now())
}
