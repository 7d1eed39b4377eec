package structex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/structex"
)

func TestParseSchema(t *testing.T) {
	t.Parallel()

	t.Run("parses flat object with hint leaves", func(t *testing.T) {
		t.Parallel()

		schema, err := structex.ParseSchema([]byte(`{"name": "str", "age": "int"}`))

		require.NoError(t, err)
		assert.False(t, schema.IsList())
		assert.Equal(t, `{"name": "str", "age": "int"}`, schema.Describe())
	})

	t.Run("preserves field order from the document", func(t *testing.T) {
		t.Parallel()

		schema, err := structex.ParseSchema([]byte(`{"zeta": "str", "alpha": "str", "mid": "str"}`))

		require.NoError(t, err)
		assert.Equal(t, `{"zeta": "str", "alpha": "str", "mid": "str"}`, schema.Describe())
	})

	t.Run("parses nested objects and lists", func(t *testing.T) {
		t.Parallel()

		schema, err := structex.ParseSchema([]byte(`{
			"title": "str",
			"crimes": [{"name": "str", "date": "YYYY-MM-DD"}]
		}`))

		require.NoError(t, err)
		assert.Equal(t, `{"title": "str", "crimes": [{"name": "str", "date": "YYYY-MM-DD"}]}`, schema.Describe())
	})

	t.Run("top-level list marks schema as list", func(t *testing.T) {
		t.Parallel()

		schema, err := structex.ParseSchema([]byte(`[{"name": "str"}]`))

		require.NoError(t, err)
		assert.True(t, schema.IsList())
		assert.Equal(t, `{"name": "str"}`, schema.Item().Describe())
	})

	t.Run("accepts numeric and boolean example values as hints", func(t *testing.T) {
		t.Parallel()

		schema, err := structex.ParseSchema([]byte(`{"price": 9.99, "in_stock": true}`))

		require.NoError(t, err)
		assert.Equal(t, `{"price": "9.99", "in_stock": "true"}`, schema.Describe())
	})

	t.Run("rejects multi-element list", func(t *testing.T) {
		t.Parallel()

		_, err := structex.ParseSchema([]byte(`["str", "int"]`))

		require.Error(t, err)
		assert.Equal(t, structex.EINVALID, structex.ErrorCode(err))
	})

	t.Run("rejects empty list", func(t *testing.T) {
		t.Parallel()

		_, err := structex.ParseSchema([]byte(`[]`))

		require.Error(t, err)
		assert.Equal(t, structex.EINVALID, structex.ErrorCode(err))
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		_, err := structex.ParseSchema([]byte(`{"name": `))

		require.Error(t, err)
		assert.Equal(t, structex.EINVALID, structex.ErrorCode(err))
	})

	t.Run("rejects trailing content", func(t *testing.T) {
		t.Parallel()

		_, err := structex.ParseSchema([]byte(`{"name": "str"} extra`))

		require.Error(t, err)
		assert.Equal(t, structex.EINVALID, structex.ErrorCode(err))
	})

	t.Run("identical schemas describe identically", func(t *testing.T) {
		t.Parallel()

		doc := []byte(`{"a": "str", "b": [{"c": "int"}]}`)
		first, err := structex.ParseSchema(doc)
		require.NoError(t, err)
		second, err := structex.ParseSchema(doc)
		require.NoError(t, err)

		assert.Equal(t, first.Describe(), second.Describe())
	})
}
