package apiserver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	orderapp "github.com/Apurer/go-gin-users-orders/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-users-orders/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-users-orders/internal/domains/orders/ports"
	userapp "github.com/Apurer/go-gin-users-orders/internal/domains/users/application"
	userdomain "github.com/Apurer/go-gin-users-orders/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-users-orders/internal/domains/users/ports"
	apierrors "github.com/Apurer/go-gin-users-orders/internal/shared/errors"
)

var problems = apierrors.NewChainedResponder("", timeoutErrorMapper, userErrorMapper, orderErrorMapper)

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}

// respondBindError reports malformed bodies and failed binding tags as validation problems.
func respondBindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = describeFieldError(fe)
		}
		problems.Respond(c, apierrors.NewValidationProblem(fields).WithDetail("request failed validation"))
		return
	}
	problems.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind().String() == "string" {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind().String() == "string" {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "finite":
		return "must be a finite number"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// parseIDParam reads the :id path segment, which must be a positive int64.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		problems.Respond(c, apierrors.NewValidationProblem(map[string]string{
			"id": "must be a positive integer",
		}).WithDetail(fmt.Sprintf("invalid id %q", c.Param("id"))))
		return 0, false
	}
	return id, true
}

func timeoutErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apierrors.ErrUnavailable.WithDetail("request did not complete in time"), true
	}
	return apierrors.ProblemDetail{}, false
}

func userErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, userports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, userports.ErrDuplicateEmail):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, userports.ErrUserHasOrders):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrInvalidInput):
		return fieldProblem(err, userFieldErrors), true
	}
	return apierrors.ProblemDetail{}, false
}

func orderErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, orderports.ErrUnknownUser):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, orderapp.ErrInvalidInput):
		return fieldProblem(err, orderFieldErrors), true
	}
	return apierrors.ProblemDetail{}, false
}

type fieldError struct {
	err   error
	field string
}

var userFieldErrors = []fieldError{
	{userdomain.ErrEmptyName, "name"},
	{userdomain.ErrNameTooLong, "name"},
	{userdomain.ErrInvalidEmail, "email"},
}

var orderFieldErrors = []fieldError{
	{orderdomain.ErrEmptyItem, "item"},
	{orderdomain.ErrInvalidAmount, "amount"},
	{orderdomain.ErrInvalidUserID, "user_id"},
}

// fieldProblem names the offending field for a wrapped domain validation error.
func fieldProblem(err error, candidates []fieldError) apierrors.ProblemDetail {
	fields := map[string]string{}
	for _, candidate := range candidates {
		if errors.Is(err, candidate.err) {
			fields[candidate.field] = candidate.err.Error()
		}
	}
	return apierrors.NewValidationProblem(fields).WithDetail(err.Error())
}
