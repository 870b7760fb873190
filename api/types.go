package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	technologyHandler technologyHandler
	projectHandler    projectHandler
	questionHandler   questionHandler
	resourceHandler   resourceHandler
	healthHandler     healthHandler
}

// Envelope wraps every successful response body.
type Envelope struct {
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

type technologyRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Projects    *[]string `json:"projects"`
}

type projectRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Technologies *[]string `json:"technologies"`
}

type questionRequest struct {
	Question     *string `json:"question"`
	Answer       *string `json:"answer"`
	TechnologyID *uint   `json:"technologyId"`
}

type resourceRequest struct {
	Title        *string `json:"title"`
	URL          *string `json:"url"`
	TechnologyID *uint   `json:"technologyId"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
