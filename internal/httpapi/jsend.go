package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSend envelope statuses.
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

type jsendResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, jsendResponse{Status: statusSuccess, Data: data})
}

// fail reports a request the client can fix or retry. data is omitted when nil.
func fail(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, jsendResponse{Status: statusFail, Message: message, Data: data})
}

func failValidation(c echo.Context, fieldErrors map[string]string) error {
	return fail(c, http.StatusBadRequest, "Validation failed", map[string]any{
		"validation_errors": fieldErrors,
	})
}

func failField(c echo.Context, field, reason string) error {
	return failValidation(c, map[string]string{field: reason})
}

func failNotFound(c echo.Context, message string) error {
	return fail(c, http.StatusNotFound, message, nil)
}

func failUnavailable(c echo.Context, message string) error {
	return fail(c, http.StatusServiceUnavailable, message, nil)
}

func failUnauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return fail(c, http.StatusUnauthorized, "Authentication required", nil)
}

// failUpstream reports a translation provider failure together with the progress
// made before it.
func failUpstream(c echo.Context, batchIndex, translated int, retryable bool, stats any) error {
	return fail(c, http.StatusBadGateway, "Translation provider failed", map[string]any{
		"batch_index": batchIndex,
		"translated":  translated,
		"retryable":   retryable,
		"stats":       stats,
	})
}

// internalError never echoes err details to the client.
func internalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, jsendResponse{
		Status:  statusError,
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}
