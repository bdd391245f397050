package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxUserID extracts the verified user id injected by the Auth middleware.
// An empty id means the middleware did not run; fail with 401 before any
// service call.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get("userID").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}
