package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/inventory-service/internal/audit"
	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/service"
	"github.com/suteetoe/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// Handler translates HTTP requests into core operations
type Handler struct {
	svc  *service.Inventory
	logs *audit.Store
}

// New creates a handler over the inventory core and the audit store
func New(svc *service.Inventory, logs *audit.Store) *Handler {
	return &Handler{svc: svc, logs: logs}
}

// RequestValidator adapts go-playground/validator to echo
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator returns a validator using json field names in messages
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i any) error {
	return rv.validate.Struct(i)
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict, errs.KindInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response. Storage details are logged, never returned.
func fail(c echo.Context, err error, msg string) error {
	log := logger.FromEcho(c)
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
		return c.JSON(status, echo.Map{
			"error": "internal server error",
			"code":  errs.CodeOf(err),
		})
	}

	log.Warn(msg,
		zap.String("code", errs.CodeOf(err)),
		zap.String("reason", errs.PublicMessage(err)))
	return c.JSON(status, echo.Map{
		"error": errs.PublicMessage(err),
		"code":  errs.CodeOf(err),
	})
}

// bind decodes and validates the request body into req. When it returns
// false a 400 response has been written and err is the result of writing it.
func bind(c echo.Context, req any) (bool, error) {
	log := logger.FromEcho(c)
	if err := c.Bind(req); err != nil {
		log.Warn("Invalid request data", zap.Error(err))
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if c.Echo().Validator == nil {
		return true, nil
	}
	if err := c.Validate(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
		}
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		log.Warn("Request validation failed", zap.Strings("problems", problems))
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data", "details": problems})
	}
	return true, nil
}

func parseID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validation(errs.CodeInvalidValue, "invalid %s '%s'", name, raw)
	}
	return uint(id), nil
}

func queryID(c echo.Context, name string) (uint, bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, errs.Validation(errs.CodeInvalidValue, "invalid %s '%s'", name, raw)
	}
	return uint(id), true, nil
}

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "inventory-service",
	})
}
