package api

import (
	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/http/response"
)

// MessageResponse is returned by operations that have nothing but a
// confirmation to report. It becomes the envelope's message.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// EnvelopeTransformer wraps every response body in response.Envelope.
// Errors become {success: false, error, code, details}; anything else is
// placed under data.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope, *response.Envelope:
		return v, nil
	case *APIError:
		return response.Fail(body.Code, body.Message, body.Details), nil
	case *domainerrors.Error:
		return response.Fail(string(body.Code), body.Message, body.Details), nil
	case MessageResponse:
		return response.Envelope{Success: true, Message: body.Message}, nil
	case *MessageResponse:
		return response.Envelope{Success: true, Message: body.Message}, nil
	case error:
		return response.Fail(statusToCode(0), body.Error(), nil), nil
	default:
		return response.OK(v), nil
	}
}
