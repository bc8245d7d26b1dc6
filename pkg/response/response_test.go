package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPaginated_ComputesTotalPagesCorrectly(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	c := e.NewContext(req, rec)

	// totalCount=45, pageSize=20 -> totalPages = 3
	data := []int{1, 2, 3}
	page := 2
	pageSize := 20
	var totalCount int64 = 45

	if err := Paginated(c, data, page, pageSize, totalCount); err != nil {
		t.Fatalf("Paginated returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if !body.Success {
		t.Errorf("expected Success=true, got false")
	}
	if body.Page != page {
		t.Errorf("expected Page=%d, got %d", page, body.Page)
	}
	if body.PageSize != pageSize {
		t.Errorf("expected PageSize=%d, got %d", pageSize, body.PageSize)
	}
	if body.TotalCount != totalCount {
		t.Errorf("expected TotalCount=%d, got %d", totalCount, body.TotalCount)
	}
	if body.TotalPages != 3 {
		t.Errorf("expected TotalPages=3, got %d", body.TotalPages)
	}
}

func TestPaginated_ZeroRowsHasZeroPages(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil), rec)

	if err := Paginated(c, []string{}, 1, 20, 0); err != nil {
		t.Fatalf("Paginated returned error: %v", err)
	}

	var body PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.TotalPages != 0 {
		t.Errorf("expected TotalPages=0, got %d", body.TotalPages)
	}
}

func TestErrorEnvelopes(t *testing.T) {
	cases := []struct {
		name   string
		write  func(c echo.Context) error
		status int
		msg    string
	}{
		{
			name:   "not found",
			write:  func(c echo.Context) error { return NotFound(c, "No deliveries recorded for run r-1") },
			status: http.StatusNotFound,
			msg:    "No deliveries recorded for run r-1",
		},
		{
			name:   "unauthorized",
			write:  Unauthorized,
			status: http.StatusUnauthorized,
			msg:    "Invalid or missing API key",
		},
		{
			name:   "unavailable",
			write:  func(c echo.Context) error { return ServiceUnavailable(c, "Delivery log is not enabled") },
			status: http.StatusServiceUnavailable,
			msg:    "Delivery log is not enabled",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			if err := tc.write(c); err != nil {
				t.Fatalf("writer returned error: %v", err)
			}
			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}

			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if body.Success {
				t.Errorf("expected Success=false")
			}
			if body.Error != tc.msg {
				t.Errorf("expected error %q, got %q", tc.msg, body.Error)
			}
		})
	}
}
