package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchemaNotFound         = errors.New("protocol: schema not found")
	ErrDuplicateSchema        = errors.New("protocol: duplicate schema")
	ErrInvalidSchema          = errors.New("protocol: invalid schema document")
	ErrFieldTypeMismatch      = errors.New("protocol: field type mismatch")
	ErrMissingField           = errors.New("protocol: missing required field")
	ErrMalformedFrame         = errors.New("protocol: malformed frame")
	ErrUnsupportedVersion     = errors.New("protocol: unsupported version")
	ErrMixedFrameTypes        = errors.New("protocol: mixed frame types")
	ErrMixedVersions          = errors.New("protocol: mixed envelope versions")
	ErrMultipleFullFrames     = errors.New("protocol: more than one full frame")
	ErrNoFrames               = errors.New("protocol: no frames")
	ErrInconsistentTotalPages = errors.New("protocol: inconsistent total pages")
	ErrIncompleteTransmission = errors.New("protocol: incomplete transmission")
	ErrValidation             = errors.New("protocol: payload validation failed")
)

// FieldTypeMismatchError reports a value that does not fit its schema node.
// Key is the dotted path of the field inside the payload.
type FieldTypeMismatchError struct {
	Key      string
	Expected string
	Actual   string
}

func (e *FieldTypeMismatchError) Error() string {
	key := e.Key
	if key == "" {
		key = "<root>"
	}
	return fmt.Sprintf("protocol: field %s: expected %s, got %s", key, e.Expected, e.Actual)
}

func (e *FieldTypeMismatchError) Is(target error) bool {
	return target == ErrFieldTypeMismatch
}

// MissingFieldError indicates a required object property was not present.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("protocol: missing required field %s", e.Key)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// IncompleteTransmissionError is the resumable signal raised while pages of a
// chunked transmission are still missing. Callers collect more frames and
// decode again with the superset.
type IncompleteTransmissionError struct {
	AvailablePages []int
	TotalPages     int
}

func (e *IncompleteTransmissionError) Error() string {
	pages := make([]string, len(e.AvailablePages))
	for i, p := range e.AvailablePages {
		pages[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf(
		"protocol: incomplete transmission: have pages [%s] of %d",
		strings.Join(pages, ","),
		e.TotalPages,
	)
}

func (e *IncompleteTransmissionError) Is(target error) bool {
	return target == ErrIncompleteTransmission
}

// Missing returns the page indices not yet received.
func (e *IncompleteTransmissionError) Missing() []int {
	have := make(map[int]struct{}, len(e.AvailablePages))
	for _, p := range e.AvailablePages {
		if p >= 0 && p < e.TotalPages {
			have[p] = struct{}{}
		}
	}
	missing := make([]int, 0, max(0, e.TotalPages-len(have)))
	for i := 0; i < e.TotalPages; i++ {
		if _, ok := have[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// IsIncomplete unwraps err into an IncompleteTransmissionError.
func IsIncomplete(err error) (*IncompleteTransmissionError, bool) {
	var incomplete *IncompleteTransmissionError
	if errors.As(err, &incomplete) {
		return incomplete, true
	}
	return nil, false
}
