package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mtorres1190/MATT-Report/internal/dataprocessing"
	apierrors "github.com/mtorres1190/MATT-Report/internal/errors"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// filterQuery is the shared report filter carried on query parameters.
type filterQuery struct {
	Division      string `json:"division"`
	From          string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Investor      string `json:"investor" validate:"omitempty,oneof=Investor Retail"`
	RealtorDirect string `json:"realtor_direct" validate:"omitempty,oneof=Realtor Direct"`
}

// parseFilter builds a row filter from query parameters. division may
// repeat to select several divisions.
func parseFilter(r *http.Request) (dataprocessing.Filter, error) {
	q := r.URL.Query()
	fq := filterQuery{
		From:          q.Get("from"),
		To:            q.Get("to"),
		Investor:      q.Get("investor"),
		RealtorDirect: q.Get("realtor_direct"),
	}
	if err := validate.Struct(fq); err != nil {
		return dataprocessing.Filter{}, apierrors.NewValidationError(validationDetail(err))
	}

	var filter dataprocessing.Filter
	filter.Divisions = q["division"]
	filter.Investor = fq.Investor
	filter.RealtorDirect = fq.RealtorDirect

	var err error
	if filter.SaleDateFrom, err = parseQueryDate(fq.From); err != nil {
		return dataprocessing.Filter{}, err
	}
	if filter.SaleDateTo, err = parseQueryDate(fq.To); err != nil {
		return dataprocessing.Filter{}, err
	}
	return filter, nil
}

// parseQueryDate parses an optional YYYY-MM-DD query parameter.
func parseQueryDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apierrors.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}

// requireQueryDate parses a mandatory YYYY-MM-DD query parameter.
func requireQueryDate(q map[string][]string, name string) (time.Time, error) {
	values := q[name]
	if len(values) == 0 || values[0] == "" {
		return time.Time{}, apierrors.NewValidationError(fmt.Sprintf("query parameter %q is required", name))
	}
	return parseQueryDate(values[0])
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
