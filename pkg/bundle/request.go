package bundle

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest marks request validation failures. Handlers map it to a
// 400 response.
var ErrInvalidRequest = errors.New("invalid request")

// Request selection modes.
const (
	// TypeDate selects open orders created on one calendar day (UTC).
	TypeDate = "date"

	// TypeOrderRange selects open orders in an inclusive order-number range.
	TypeOrderRange = "order_range"
)

// dateLayout is the accepted date format for date-mode requests.
const dateLayout = "2006-01-02"

// Request is the body of a bundle invocation.
type Request struct {
	Type  string `json:"type"`
	Date  string `json:"date,omitempty"`
	Start int    `json:"start,omitempty"`
	End   int    `json:"end,omitempty"`
}

// Validate checks the request before any upstream call is made.
func (r Request) Validate() error {
	switch r.Type {
	case TypeDate:
		if _, err := time.Parse(dateLayout, r.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD (got %q)", ErrInvalidRequest, r.Date)
		}
	case TypeOrderRange:
		if r.Start <= 0 || r.End <= 0 {
			return fmt.Errorf("%w: start and end must be positive", ErrInvalidRequest)
		}
		if r.Start > r.End {
			return fmt.Errorf("%w: start %d exceeds end %d", ErrInvalidRequest, r.Start, r.End)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, r.Type)
	}
	return nil
}

// ParsedDate returns the date of a date-mode request.
func (r Request) ParsedDate() (time.Time, error) {
	return time.Parse(dateLayout, r.Date)
}

// Detail renders the selection parameters for messages and history records.
func (r Request) Detail() string {
	if r.Type == TypeOrderRange {
		return fmt.Sprintf("orders %d-%d", r.Start, r.End)
	}
	return r.Date
}
