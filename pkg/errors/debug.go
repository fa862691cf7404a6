package errors

import (
	"errors"
	"fmt"
)

// ErrorDump is the log-side view of an error: everything the client envelope hides.
type ErrorDump struct {
	TopMessage string         `json:"top_message"`
	Code       Code           `json:"code,omitempty"`
	HTTPStatus int            `json:"http_status,omitempty"`
	Retryable  bool           `json:"retryable,omitempty"`
	Details    any            `json:"details,omitempty"`
	Chain      []string       `json:"chain,omitempty"`
}

// Dump walks the wrap chain of err. Typed links render as "CODE: message" so the
// upstream cause stays readable next to the gateway's own message.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.HTTPStatus = te.HTTPStatus()
		d.Retryable = MetadataFor(te.Code()).Retryable
		d.Details = te.Details()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		var link string
		if te, ok := e.(*Error); ok {
			link = fmt.Sprintf("%s: %s", te.Code(), te.Message())
		} else {
			link = fmt.Sprintf("%T: %v", e, e)
		}
		d.Chain = append(d.Chain, link)
	}
	return d
}
