package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/leodymann/wi-api/internal/apierror"
	"github.com/leodymann/wi-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetros inválidos: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindInvalidArgument:   http.StatusBadRequest,
	apperr.KindInvalidTransition: http.StatusUnprocessableEntity,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindUnauthorized:      http.StatusUnauthorized,
	apperr.KindTransientSend:     http.StatusBadGateway,
	apperr.KindConfiguration:     http.StatusInternalServerError,
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	if s, ok := kindStatus[apperr.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// respondError writes the apierror envelope for err. Internal errors are
// logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	kind := apperr.KindOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("handler: request failed")
		c.JSON(status, apierror.New("Erro interno do servidor").WithKind(string(kind), nil))
		return
	}
	var details map[string]any
	var e *apperr.Error
	if errors.As(err, &e) {
		details = e.Details
	}
	c.JSON(status, apierror.New(apperr.Message(err)).WithKind(string(kind), details))
}
