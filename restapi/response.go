/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package restapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/vahairstudio/site-api/log"
)

// ContentTypeAppJSON represents MIME media type for JSON.
const ContentTypeAppJSON = "application/json"

// HeaderRetryAfter tells clients how many seconds to wait before repeating a rejected request.
const HeaderRetryAfter = "Retry-After"

// marshalJSON keeps booking URLs readable: "&" and "<" are not escaped.
func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// RespondJSON sends respData as JSON with 200 status code.
func RespondJSON(rw http.ResponseWriter, respData interface{}, logger log.FieldLogger) {
	RespondCodeAndJSON(rw, http.StatusOK, respData, logger)
}

// RespondCodeAndJSON sends respData as JSON with the given status code.
// Content-Type is set to application/json unless the handler has already set it.
// A nil respData gives an empty body.
func RespondCodeAndJSON(rw http.ResponseWriter, statusCode int, respData interface{}, logger log.FieldLogger) {
	if respData == nil {
		rw.WriteHeader(statusCode)
		return
	}

	body, err := marshalJSON(respData)
	if err != nil {
		if logger != nil {
			logger.Error("failed to marshal response body", log.Error(err))
		}
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	if rw.Header().Get("Content-Type") == "" {
		rw.Header().Set("Content-Type", ContentTypeAppJSON)
	}
	rw.WriteHeader(statusCode)
	if _, err = rw.Write(body); err != nil && logger != nil {
		logger.Error("failed to write response body", log.Error(err))
	}
}

// RespondRetryLater sends respData with the given status code (usually 429 or 503)
// and a Retry-After header.
func RespondRetryLater(
	rw http.ResponseWriter, statusCode int, retryAfterSeconds int, respData interface{}, logger log.FieldLogger,
) {
	rw.Header().Set(HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
	RespondCodeAndJSON(rw, statusCode, respData, logger)
}

// ErrorResponseData is the body of responses with an Error.
type ErrorResponseData struct {
	Err *Error `json:"error"`
}

// RespondError writes err with the given status code, logs it and counts it in the response errors metric.
// Client errors (4xx) are logged as warnings.
func RespondError(rw http.ResponseWriter, httpStatusCode int, err *Error, logger log.FieldLogger) {
	if logger != nil {
		logResponseError(err, httpStatusCode, logger)
	}
	incResponseErrors(err)
	RespondCodeAndJSON(rw, httpStatusCode, ErrorResponseData{err}, logger)
}

// RespondInternalError sends response with 500 HTTP status code and internal error in body in JSON format.
func RespondInternalError(rw http.ResponseWriter, domain string, logger log.FieldLogger) {
	RespondError(rw, http.StatusInternalServerError, NewInternalError(domain), logger)
}

// RespondMalformedRequestError responds with the status code and message of reqErr.
func RespondMalformedRequestError(rw http.ResponseWriter, domain string, reqErr *MalformedRequestError, logger log.FieldLogger) {
	RespondError(rw, reqErr.HTTPStatusCode, NewError(domain, errorCodeForStatus(reqErr.HTTPStatusCode), reqErr.Message), logger)
}

func logResponseError(err *Error, httpStatusCode int, logger log.FieldLogger) {
	fields := []log.Field{
		log.Int("status", httpStatusCode),
		log.String("error_code", err.Code),
		log.String("error_message", err.Message),
	}
	if len(err.Context) != 0 {
		ctxLines := make([]string, 0, len(err.Context))
		for k, v := range err.Context {
			ctxLines = append(ctxLines, fmt.Sprintf("%s: %v", k, v))
		}
		fields = append(fields, log.Strings("error_context", ctxLines))
	}
	if httpStatusCode < http.StatusInternalServerError {
		logger.Warn("error in response", fields...)
		return
	}
	logger.Error("error in response", fields...)
}
