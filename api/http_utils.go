package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitfsorg/slugline/internal/log"
	"github.com/bitfsorg/slugline/searcher"
)

const inputKey = "iEntity"

// ValidateInput binds the JSON body into InputEntityType and stores it for
// GetInput. Binding failures abort with 400 and a MalformedInput body.
func ValidateInput[InputEntityType any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input InputEntityType
		if err := c.ShouldBindJSON(&input); err != nil {
			SendErrorResponse(c, http.StatusBadRequest, &ErrorBody{
				Kind:    searcher.KindMalformedInput,
				Message: err.Error(),
			})
			return
		}
		c.Set(inputKey, input)
		c.Next()
	}
}

// GetInput returns the body stored by ValidateInput.
func GetInput[BodyType any](c *gin.Context) BodyType {
	return c.MustGet(inputKey).(BodyType)
}

// SendErrorResponse aborts the request with status and a failed SubmitResponse.
func SendErrorResponse(c *gin.Context, status int, body *ErrorBody) {
	log.Warnw("request failed", "path", c.FullPath(), "status", status, "kind", body.Kind, "message", body.Message)
	c.AbortWithStatusJSON(status, SubmitResponse{
		Success: false,
		Message: body.Message,
		Error:   body,
	})
}

// SendResponse writes obj as JSON with status.
func SendResponse[OutputObjectType any](c *gin.Context, status int, obj OutputObjectType) {
	c.JSON(status, obj)
}

// RequestLogger logs one line per request through the process logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP())
	}
}

// statusFor maps an error kind to the HTTP status reported with it.
func statusFor(kind string) int {
	switch kind {
	case searcher.KindMalformedInput:
		return http.StatusBadRequest
	case searcher.KindMissingAnchor, searcher.KindAssetNotFound, searcher.KindPackageRejected:
		return http.StatusUnprocessableEntity
	case searcher.KindNoSearcherFunds, searcher.KindInsufficientSearcherFunds:
		return http.StatusServiceUnavailable
	case searcher.KindRPCFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
