package response

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"id": "abc"})

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("boom")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "boom", resp.Error)
	assert.Nil(t, resp.Data)
}

func TestValidationError_FieldMap(t *testing.T) {
	type req struct {
		Username string `validate:"required"`
		Price    int    `validate:"gt=0"`
	}

	err := validator.New().Struct(req{})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Equal(t, []string{"field Username is a required field"}, resp.Fields["Username"])
	assert.NotEmpty(t, resp.Fields["Price"])
}

func TestResponse_JSONOmitsEmpty(t *testing.T) {
	raw, err := json.Marshal(Error("nope"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "Error", got["status"])
	assert.Equal(t, "nope", got["error"])
	_, hasData := got["data"]
	assert.False(t, hasData)
	_, hasStack := got["stack"]
	assert.False(t, hasStack)
}
