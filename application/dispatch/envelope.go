package dispatch

import (
	"encoding/json"

	apperrors "flowengine/pkg/errors"
)

// ResponseType tells the caller whether Result or Error is set
type ResponseType string

const (
	ResponseSuccess ResponseType = "success"
	ResponseError   ResponseType = "error"
)

// Request is one caller-assigned unit of work. ID is echoed back unchanged.
type Request struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response answers exactly one Request
type Response struct {
	ID     string       `json:"id"`
	Type   ResponseType `json:"type"`
	Result interface{}  `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// NewSuccessResponse wraps a result for request id
func NewSuccessResponse(id string, result interface{}) Response {
	return Response{ID: id, Type: ResponseSuccess, Result: result}
}

// NewErrorResponse converts err to the message a caller sees
func NewErrorResponse(id string, err error) Response {
	return Response{ID: id, Type: ResponseError, Error: apperrors.Message(err)}
}

// Encode renders resp as one JSON document. When the result cannot be
// encoded, for example because it holds a non-finite number, the returned
// bytes carry an error response for the same id and err reports why.
func Encode(resp Response) (data []byte, err error) {
	data, err = json.Marshal(resp)
	if err == nil {
		return data, nil
	}
	fallback, _ := json.Marshal(NewErrorResponse(resp.ID, apperrors.NewInternalError("failed to encode result")))
	return fallback, err
}

// IsError reports whether the response carries an error
func (r Response) IsError() bool {
	return r.Type == ResponseError
}
