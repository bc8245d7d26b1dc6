package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type PaginatedResponse struct {
	Success    bool  `json:"success"`
	Data       any   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

func Ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// Error writes the failure envelope with the given status.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func BadRequest(c echo.Context, err error) error {
	return Error(c, http.StatusBadRequest, err.Error())
}

func BadRequestWithMessage(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c echo.Context) error {
	return Error(c, http.StatusUnauthorized, "Invalid or missing API key")
}

func NotFound(c echo.Context, message string) error {
	return Error(c, http.StatusNotFound, message)
}

func InternalServerError(c echo.Context, err error) error {
	return Error(c, http.StatusInternalServerError, err.Error())
}

func ServiceUnavailable(c echo.Context, message string) error {
	return Error(c, http.StatusServiceUnavailable, message)
}

func Paginated(c echo.Context, data any, page, pageSize int, totalCount int64) error {
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return c.JSON(http.StatusOK, PaginatedResponse{
		Success:    true,
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	})
}
