package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOKPage_TotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 1},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		OKPage(c, []int{}, tt.total, 1, tt.pageSize)

		var body struct {
			Data PageData `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("解析响应失败: %v", err)
		}
		if body.Data.Pagination.TotalPages != tt.want {
			t.Errorf("total=%d page_size=%d: 期望 %d 页，实际: %d", tt.total, tt.pageSize, tt.want, body.Data.Pagination.TotalPages)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(c *gin.Context)
		status int
		code   int
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, 10001, "x") }, http.StatusBadRequest, 10001},
		{"not found", func(c *gin.Context) { NotFound(c, 12101, "x") }, http.StatusNotFound, 12101},
		{"conflict", func(c *gin.Context) { Conflict(c, 13103, "x") }, http.StatusConflict, 13103},
		{"unprocessable", func(c *gin.Context) { UnprocessableEntity(c, 13105, "x") }, http.StatusUnprocessableEntity, 13105},
		{"too many", func(c *gin.Context) { TooManyRequests(c, 10004, "x") }, http.StatusTooManyRequests, 10004},
		{"internal", InternalError, http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.write(c)

			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
			var resp Response
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, resp.Code)
			}
		})
	}
}
