package util

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// error

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

// Is lets errors.Is match on the error code as well as on the wrapped error.
func (e *Error) Is(target error) bool {
	return e.code != nil && e.code == target
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func NewErrorf(code error, format string, a ...interface{}) error {
	return WrapErrorf(nil, code, format, a...)
}

func (e *Error) Code() error {
	return e.code
}

var (
	ErrInternalServerError     = errors.New("internal Server Error")
	ErrNotFound                = errors.New("your requested Item is not found")
	ErrBadParamInput           = errors.New("given Param is not valid")
	ErrValidation              = errors.New("given Param failed validation")
	ErrNotInitialized          = errors.New("no data loaded yet")
	ErrIO                      = errors.New("unable to read input file")
	ErrCoordinatesNotSupported = errors.New("annotator not created with coordinates support")
)

var MessageInternalServerError string = "internal server error"

func DegreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func RadiansToDegree(rad float64) float64 {
	return 180.0 * rad / math.Pi
}

func StringToFloat64(str string) (float64, error) {
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	return val, nil
}

func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Fields splits s on commas, trimming spaces around every field.
func Fields(s string) []string {
	ff := strings.Split(s, ",")
	for i := range ff {
		ff[i] = strings.TrimSpace(ff[i])
	}
	return ff
}

func AssertPanic(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}
