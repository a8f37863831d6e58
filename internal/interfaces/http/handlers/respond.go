package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/interfaces/http/middleware"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

// RegisterValidators teaches gin's validator to compare decimal amounts
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return 0.0
	}, decimal.Decimal{})
}

// errorBody maps an error to its status and response body. Internal errors
// never leak their message.
func errorBody(err error) (int, gin.H) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		return status, gin.H{"error": "Internal Server Error"}
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return status, gin.H{"error": appErr.Message, "code": appErr.Code}
	}
	return status, gin.H{"error": "Resource not found", "code": "NOT_FOUND"}
}

func respondError(c *gin.Context, log *logrus.Logger, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
		}).Error("request failed")
	}
	c.JSON(status, body)
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"code":    "VALIDATION_ERROR",
		"details": err.Error(),
	})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  "VALIDATION_ERROR",
		})
		return 0, false
	}
	return uint(id), true
}
