package api

import (
	"strings"
	"testing"

	"github.com/rpupo63/tech-knowledge-api/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleTableSchema(t *testing.T) {
	full := technologyRules.jsonSchema(false)
	assert.Equal(t, []string{"description", "name", "tags"}, full["required"])
	assert.Equal(t, false, full["additionalProperties"])

	properties := full["properties"].(map[string]interface{})
	tags := properties["tags"].(map[string]interface{})
	assert.Equal(t, 1, tags["minItems"])
	assert.Equal(t, 10, tags["maxItems"])
	assert.Equal(t, map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 100}, tags["items"])

	partial := technologyRules.jsonSchema(true)
	_, hasRequired := partial["required"]
	assert.False(t, hasRequired)
	assert.Equal(t, full["properties"], partial["properties"])
}

func TestValidateBody(t *testing.T) {
	err := validateBody(questionSchema.create, []byte(`{"question":"Q?","answer":"A","technologyId":1}`), "question")
	require.NoError(t, err)

	err = validateBody(questionSchema.create, []byte(`{"question":"Q?","answer":"A"}`), "question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "technologyId")

	err = validateBody(questionSchema.create, []byte(`{"question":"Q?","answer":"A","technologyId":1.5}`), "question")
	require.Error(t, err)

	err = validateBody(questionSchema.partial, []byte(`{"answer":"B"}`), "question")
	require.NoError(t, err)

	err = validateBody(questionSchema.partial, []byte(`{"technologyId":0}`), "question")
	require.Error(t, err)

	err = validateBody(questionSchema.partial, []byte(``), "question")
	require.Error(t, err)
}

func TestValidateBodyTagLength(t *testing.T) {
	body := func(tag string) []byte {
		return []byte(`{"name":"Rust","description":"A systems programming language","tags":["` + tag + `"]}`)
	}

	require.NoError(t, validateBody(technologySchema.create, body(strings.Repeat("t", 100)), "technology"))

	err := validateBody(technologySchema.create, body(strings.Repeat("t", 101)), "technology")
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))
	assert.Equal(t, 400, errs.StatusCode(err))

	err = validateBody(technologySchema.partial, body(strings.Repeat("t", 101)), "technology")
	assert.Error(t, err)
}
