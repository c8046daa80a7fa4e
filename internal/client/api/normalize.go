// Package api is the client side of the plant care REST API: a single
// request gateway, the response normalizer behind it, credential handling
// and typed CRUD calls.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// Result is the uniform outcome of a gateway call. Exactly one of Data or
// Message is meaningful: Message is empty on success.
type Result struct {
	// Status is the HTTP status, or 500 for failures without a response.
	Status int
	// Data is the response body on 200 and 201; nil on 204.
	Data json.RawMessage
	// Message is the extracted error message.
	Message string
	// Details carries the raw body for unclassified statuses.
	Details string
	// AuthError flags a 401 so callers can refresh and retry.
	AuthError bool
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Message == "" }

// Err returns the failure as an *Error, or nil on success.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Status: r.Status, Message: r.Message, Details: r.Details, Auth: r.AuthError}
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (r Result) Decode(v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return &Error{Status: http.StatusInternalServerError, Message: fmt.Sprintf("invalid response body: %v", err)}
	}
	return nil
}

// Error is a normalized API failure.
type Error struct {
	Status  int
	Message string
	Details string
	// Auth is set for authentication failures.
	Auth bool
}

func (e *Error) Error() string { return e.Message }

// failure builds a 500-class result for errors raised before or while
// reading a response.
func failure(err error) Result {
	return Result{Status: http.StatusInternalServerError, Message: err.Error()}
}

// Normalize classifies resp by status code and closes its body.
//
//	200, 201  payload is the body
//	204       no payload
//	400       first validation message: "error" key, else first field error, else raw text
//	401       "Unauthorized", flagged as an auth error
//	404       "Resource not found"
//	other     "API error: <status>" with the raw body as details
func Normalize(resp *http.Response) Result {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Errorf("read response: %w", err))
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if !json.Valid(body) {
			return failure(fmt.Errorf("invalid JSON in %d response", resp.StatusCode))
		}
		return Result{Status: resp.StatusCode, Data: body}
	case http.StatusNoContent:
		return Result{Status: resp.StatusCode}
	case http.StatusBadRequest:
		return Result{Status: resp.StatusCode, Message: validationMessage(body)}
	case http.StatusUnauthorized:
		return Result{Status: resp.StatusCode, Message: "Unauthorized", AuthError: true}
	case http.StatusNotFound:
		return Result{Status: resp.StatusCode, Message: "Resource not found"}
	default:
		return Result{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("API error: %d", resp.StatusCode),
			Details: string(body),
		}
	}
}

func validationMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		if len(body) == 0 {
			return "Bad request"
		}
		return string(body)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return "Invalid input"
	}
	if e := doc.Get("error"); e.Exists() {
		return e.String()
	}

	msg := "Invalid input"
	doc.ForEach(func(_, value gjson.Result) bool {
		if value.IsArray() {
			if first := value.Get("0"); first.Exists() {
				msg = first.String()
				return false
			}
			return true
		}
		msg = value.String()
		return false
	})
	return msg
}
