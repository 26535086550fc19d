// Package dummy provides a pass-through encoder for plain-text responses.
package dummy

import "encoding/json"

// Stringer is implemented by values that render themselves as text.
type Stringer interface {
	String() string
}

// Unmarshaler is implemented by values that accept raw text.
type Unmarshaler interface {
	Unmarshal(bs []byte) error
}

// Encoder passes string-like values through unchanged and falls back to
// JSON for everything else.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	switch t := v.(type) {
	case Stringer:
		return []byte(t.String()), nil
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	case *string:
		return []byte(*t), nil
	case *[]byte:
		return *t, nil
	}
	return json.Marshal(v)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	switch t := ret.(type) {
	case Unmarshaler:
		return t.Unmarshal(bs)
	case *string:
		*t = string(bs)
		return nil
	case *[]byte:
		*t = bs
		return nil
	}
	return json.Unmarshal(bs, ret)
}

// Validate is a no-op, plain text has no schema.
func (e *Encoder) Validate(any) error {
	return nil
}

// GetFormatInstructions returns no instructions for plain text.
func (e *Encoder) GetFormatInstructions() string {
	return ""
}
