package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"hackboard/src/app/http/response"
	"hackboard/src/core/ports"
)

const judgeHeader = "X-User-Id"

// JudgeIDKey is the context key holding the authenticated judge id.
const JudgeIDKey = "judge_id"

// JudgeAuth enforces that the incoming request is made by a judge of the
// addressed hackathon. It reads the X-User-Id header and asks the
// authorization collaborator whether the judge belongs to the hackathon's
// pool. On success it stores the judge id in the context.
func JudgeAuth(auth ports.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := GetRequestID(c)

		judgeIDStr := c.GetHeader(judgeHeader)
		if judgeIDStr == "" {
			response.Unauthorized(c, "missing X-User-Id header", requestID)
			c.Abort()
			return
		}

		judgeID, err := strconv.ParseInt(judgeIDStr, 10, 64)
		if err != nil || judgeID <= 0 {
			response.BadRequest(c, "invalid X-User-Id", requestID)
			c.Abort()
			return
		}

		hackathonID, err := strconv.ParseInt(c.Param("hackathon_id"), 10, 64)
		if err != nil || hackathonID <= 0 {
			response.BadRequest(c, "invalid hackathon id", requestID)
			c.Abort()
			return
		}

		ok, err := auth.IsJudge(c.Request.Context(), hackathonID, judgeID)
		if err != nil {
			response.InternalError(c, requestID)
			c.Abort()
			return
		}
		if !ok {
			response.Forbidden(c, "judge does not belong to this hackathon", requestID)
			c.Abort()
			return
		}

		c.Set(JudgeIDKey, judgeID)
		c.Next()
	}
}

// GetJudgeID retrieves the authenticated judge id from the Gin context.
func GetJudgeID(c *gin.Context) (int64, bool) {
	if v, exists := c.Get(JudgeIDKey); exists {
		if id, ok := v.(int64); ok {
			return id, true
		}
	}
	return 0, false
}
