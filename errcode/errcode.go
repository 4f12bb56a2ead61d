package errcode

// Code is a stable, service-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Sensor/driver conditions.
	DeviceNotFound   Code = "device_not_found"
	UnsupportedRate  Code = "unsupported_rate"
	UnsupportedScale Code = "unsupported_scale"
	InvalidParams    Code = "invalid_params"
	CapacityExceeded Code = "capacity_exceeded"
	BusError         Code = "bus_error"

	Error Code = "error" // generic fallback
)

// E wraps a cause with its code and the operation that failed.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
