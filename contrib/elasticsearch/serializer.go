package elasticsearch

import (
	"errors"
	"unicode/utf8"
)

// ErrBodyNotUTF8 is returned when an 8.x+ request body cannot be rendered as
// text.
var ErrBodyNotUTF8 = errors.New("request body is not valid UTF-8")

// Serializer renders a request body for the body tag.
type Serializer interface {
	Dumps(body []byte) (string, error)
}

// TextSerializer is used by the pre-8 clients. The body is already text.
type TextSerializer struct{}

func (TextSerializer) Dumps(body []byte) (string, error) {
	return string(body), nil
}

// UTF8Serializer is used by the 8.x+ clients, which encode bodies to bytes.
// Bodies that do not decode as UTF-8 are rejected.
type UTF8Serializer struct{}

func (UTF8Serializer) Dumps(body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", ErrBodyNotUTF8
	}
	return string(body), nil
}
