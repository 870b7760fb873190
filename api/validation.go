package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rpupo63/tech-knowledge-api/errs"
	"github.com/rpupo63/tech-knowledge-api/models"
	"github.com/xeipuuv/gojsonschema"
)

const maxBodyBytes = 1 << 20

// fieldRule constrains one body property. Zero limits are not emitted.
type fieldRule struct {
	Type      string
	Required  bool
	MinLength int
	MaxLength int
	Minimum   int
	MinItems  int
	MaxItems  int
	Format    string
	Items     *fieldRule
}

// ruleTable maps body property names to their rules.
type ruleTable map[string]fieldRule

var nonEmptyString = &fieldRule{Type: "string", MinLength: 1}

// tagItem matches the width of the technology_tags value column.
var tagItem = &fieldRule{Type: "string", MinLength: 1, MaxLength: models.TagMaxLength}

var technologyRules = ruleTable{
	"name":        {Type: "string", Required: true, MinLength: 2, MaxLength: 50},
	"description": {Type: "string", Required: true, MinLength: 10, MaxLength: 500},
	"tags":        {Type: "array", Required: true, MinItems: 1, MaxItems: 10, Items: tagItem},
	"projects":    {Type: "array", Items: nonEmptyString},
}

var projectRules = ruleTable{
	"name":         {Type: "string", Required: true, MinLength: 3, MaxLength: 100},
	"description":  {Type: "string", Required: true, MinLength: 10, MaxLength: 500},
	"technologies": {Type: "array", Items: nonEmptyString},
}

var questionRules = ruleTable{
	"question":     {Type: "string", Required: true, MinLength: 1},
	"answer":       {Type: "string", Required: true, MinLength: 1},
	"technologyId": {Type: "integer", Required: true, Minimum: 1},
}

var resourceRules = ruleTable{
	"title":        {Type: "string", Required: true, MinLength: 1},
	"url":          {Type: "string", Required: true, MinLength: 1, Format: "uri"},
	"technologyId": {Type: "integer", Required: true, Minimum: 1},
}

func (r fieldRule) jsonSchema() map[string]interface{} {
	s := map[string]interface{}{"type": r.Type}
	if r.MinLength > 0 {
		s["minLength"] = r.MinLength
	}
	if r.MaxLength > 0 {
		s["maxLength"] = r.MaxLength
	}
	if r.Minimum > 0 {
		s["minimum"] = r.Minimum
	}
	if r.MinItems > 0 {
		s["minItems"] = r.MinItems
	}
	if r.MaxItems > 0 {
		s["maxItems"] = r.MaxItems
	}
	if r.Format != "" {
		s["format"] = r.Format
	}
	if r.Items != nil {
		s["items"] = r.Items.jsonSchema()
	}
	return s
}

// jsonSchema renders the table as an object schema rejecting unknown properties.
// partial drops every required constraint, which is how PATCH bodies are checked.
func (t ruleTable) jsonSchema(partial bool) map[string]interface{} {
	properties := make(map[string]interface{}, len(t))
	required := []string{}
	for name, rule := range t {
		properties[name] = rule.jsonSchema()
		if rule.Required && !partial {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	s := map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// bodySchema is a compiled create schema and its partial counterpart.
type bodySchema struct {
	name    string
	create  *gojsonschema.Schema
	partial *gojsonschema.Schema
}

func compileBodySchema(name string, rules ruleTable) (bodySchema, error) {
	create, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(rules.jsonSchema(false)))
	if err != nil {
		return bodySchema{}, fmt.Errorf("cannot compile %s schema: %w", name, err)
	}
	partial, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(rules.jsonSchema(true)))
	if err != nil {
		return bodySchema{}, fmt.Errorf("cannot compile partial %s schema: %w", name, err)
	}
	return bodySchema{name: name, create: create, partial: partial}, nil
}

func mustCompileBodySchema(name string, rules ruleTable) bodySchema {
	s, err := compileBodySchema(name, rules)
	if err != nil {
		panic(err)
	}
	return s
}

var (
	technologySchema = mustCompileBodySchema("technology", technologyRules)
	projectSchema    = mustCompileBodySchema("project", projectRules)
	questionSchema   = mustCompileBodySchema("question", questionRules)
	resourceSchema   = mustCompileBodySchema("resource", resourceRules)
)

// decodeBody reads the request body, validates it against the create or partial
// schema and decodes it into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, schema bodySchema, partial bool, dst any) error {
	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return errs.NewUnsupportedMediaTypeError(contentType, []string{"application/json"})
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errs.NewMaxBodySizeExceededError(maxBytesErr.Limit)
		}
		return errs.NewMalformedPayloadError(schema.name, err)
	}

	compiled := schema.create
	if partial {
		compiled = schema.partial
	}
	if err := validateBody(compiled, body, schema.name); err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errs.NewMalformedPayloadError(schema.name, err)
	}
	return nil
}

func validateBody(schema *gojsonschema.Schema, body []byte, payloadType string) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return errs.NewMalformedPayloadError(payloadType, errors.New("empty body"))
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errs.NewMalformedPayloadError(payloadType, err)
	}
	if result.Valid() {
		return nil
	}

	field := ""
	reasons := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		name := resultField(e)
		if field == "" {
			field = name
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", name, e.Description()))
	}
	return errs.NewInvalidFieldError(field, strings.Join(reasons, "; "))
}

// resultField names the property a schema error is about. Errors on the root
// object (required, additionalProperties) carry the property in their details.
func resultField(e gojsonschema.ResultError) string {
	if f := e.Field(); f != gojsonschema.STRING_CONTEXT_ROOT {
		return f
	}
	if property, ok := e.Details()["property"].(string); ok && property != "" {
		return property
	}
	return "body"
}
