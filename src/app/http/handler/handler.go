// Package handler contains HTTP handlers for the API.
// Handlers are responsible for:
// - Parsing and validating HTTP requests
// - Calling use case methods
// - Converting results to HTTP responses
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"hackboard/src/app/http/response"
	"hackboard/src/app/middleware"
)

// parseHackathonID extracts the hackathon id path parameter. On failure it
// writes a 400 response and returns false.
func parseHackathonID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("hackathon_id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid hackathon id", middleware.GetRequestID(c))
		return 0, false
	}
	return id, true
}

// parsePagination reads page/per_page query parameters, leaving clamping
// to the service layer.
func parsePagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "0"))
	return page, perPage
}
