package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Cluster count bounds accepted from callers.
const (
	MinClusters = 2
	MaxClusters = 32
)

// validate is a singleton validator instance
var validate = validator.New()

// ClusterRequest holds the parameters of a clustering request. The algorithm
// name is checked by the clustering package so unknown names can be reported
// in its own error shape.
type ClusterRequest struct {
	Algorithm string `json:"algorithm" validate:"max=64"`
	K         int    `json:"k" validate:"omitempty,min=2,max=32"`
}

// ValidateClusterRequest validates a clustering request
func ValidateClusterRequest(req *ClusterRequest) error {
	if req == nil {
		return errors.New("cluster request cannot be nil")
	}
	return Struct(req)
}

// Struct validates any struct against its validate tags.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%s: field is required", field))
		case "min":
			errs = append(errs, fmt.Errorf("%s: must be at least %s", field, e.Param()))
		case "max":
			errs = append(errs, fmt.Errorf("%s: must not exceed %s", field, e.Param()))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: must be one of [%s]", field, e.Param()))
		default:
			errs = append(errs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.Join(errs...)
}
