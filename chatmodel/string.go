package chatmodel

import "strings"

// String wraps plain text so free-form model output can be used where a
// ContentProvider is expected.
type String struct {
	value string
}

func NewString(str string) *String {
	return &String{value: str}
}

// GetContent returns the wrapped text.
func (s String) GetContent() string {
	return s.value
}

func (s String) String() string {
	return s.value
}

func (s String) Bytes() []byte {
	return []byte(s.value)
}

// Unmarshal stores the raw content, stripping quotes left over from
// JSON-encoded strings.
func (s *String) Unmarshal(bs []byte) error {
	s.value = strings.Trim(string(bs), `"`)
	return nil
}
