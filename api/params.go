package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/errs"
)

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewInvalidFieldError(name, fmt.Sprintf("%q is not a positive integer", raw))
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter no smaller than min.
func queryInt(values url.Values, name string, def, minimum int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewInvalidFieldError(name, fmt.Sprintf("%q is not an integer", raw))
	}
	if n < minimum {
		return 0, errs.NewInvalidFieldError(name, fmt.Sprintf("must be at least %d", minimum))
	}
	return n, nil
}

// listQuery reads search, skip, take, orderBy and order.
func listQuery(r *http.Request) (database.ListQuery, error) {
	values := r.URL.Query()

	skip, err := queryInt(values, "skip", 0, 0)
	if err != nil {
		return database.ListQuery{}, err
	}
	take, err := queryInt(values, "take", database.DefaultTake, 1)
	if err != nil {
		return database.ListQuery{}, err
	}

	return database.ListQuery{
		Search:  values.Get("search"),
		Skip:    skip,
		Take:    take,
		OrderBy: values.Get("orderBy"),
		Order:   values.Get("order"),
	}, nil
}

// queryTechnologyID reads the optional technologyId filter. Zero means unset.
func queryTechnologyID(r *http.Request) (uint, error) {
	id, err := queryInt(r.URL.Query(), "technologyId", 0, 1)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// queryList splits comma separated values, also accepting the parameter repeated.
func queryList(values url.Values, name string) []string {
	var out []string
	for _, raw := range values[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
