package resp

import (
	"github.com/gin-gonic/gin"

	v1 "adminpanel/pkg/api/v1"
)

// Status writes the {statusCode, message, data} shape most endpoints use.
func Status(c *gin.Context, code int, message string, data any) {
	body := gin.H{"statusCode": code, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

// Fail writes an error in the statusCode shape.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"statusCode": code, "message": message})
}

// Native writes the {success, data} shape some endpoints use.
func Native(c *gin.Context, code int, data any) {
	c.JSON(code, v1.Response[any]{Success: true, Data: data})
}

func NewPagination(page, limit, total int) v1.Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return v1.Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  pages,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}
