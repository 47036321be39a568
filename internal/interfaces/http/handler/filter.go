package handler

import (
	"strconv"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// parseFilter builds a shared.Filter from common list query parameters.
// filterKeys whitelists the query parameters copied into Filter.Filters;
// repositories validate the keys they understand.
func parseFilter(c *gin.Context, filterKeys ...string) shared.Filter {
	filter := shared.DefaultFilter()

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("page_size")); err == nil && pageSize > 0 {
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
		filter.PageSize = pageSize
	}
	if orderBy := c.Query("order_by"); orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir := c.Query("order_dir"); orderDir == "asc" || orderDir == "desc" {
		filter.OrderDir = orderDir
	}
	filter.Search = c.Query("search")

	for _, key := range filterKeys {
		if value := c.Query(key); value != "" {
			filter.Filters[key] = value
		}
	}

	return filter
}
