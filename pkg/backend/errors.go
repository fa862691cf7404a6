package backend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
)

// statusError maps a non-2xx backend response. The backend message is kept verbatim.
func statusError(status int, body []byte) error {
	message := upstreamMessage(body)

	var code pkgerrors.Code
	switch status {
	case http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		code = pkgerrors.CodeForbidden
	case http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case http.StatusConflict:
		code = pkgerrors.CodeConflict
	default:
		code = pkgerrors.CodeUpstream
	}

	if message == "" {
		message = pkgerrors.MetadataFor(code).PublicMessage
	}
	err := pkgerrors.New(code, message).WithDetails(map[string]any{"upstream_status": status})
	if code == pkgerrors.CodeUpstream {
		if status >= 500 {
			return err.WithHTTPStatus(http.StatusBadGateway)
		}
		return err.WithHTTPStatus(status)
	}
	return err
}

// upstreamMessage reads {"message": "..."} JSON, falling back to the plain-text body.
func upstreamMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '{' {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			if msg := strings.TrimSpace(payload.Message); msg != "" {
				return msg
			}
			return strings.TrimSpace(payload.Error)
		}
	}
	if trimmed[0] == '<' {
		return ""
	}
	return string(trimmed)
}

func unavailable(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeUpstreamUnavailable, err, pkgerrors.ConnectivityMessage)
}
