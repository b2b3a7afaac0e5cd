package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/colindex/column"
	"github.com/viant/colindex/composite"
)

func TestDefinition_Names(t *testing.T) {
	var cases = []struct {
		def       Definition
		name      string
		namespace string
		accessor  string
		layout    column.Layout
	}{
		{Definition{Model: "User", Attributes: []string{"email"}, Unique: true}, "email", "UserByEmail", "FindByEmail", column.Standard},
		{Definition{Model: "User", Attributes: []string{"city", "zip"}}, "city_zip", "UserByCityZip", "FindAllByCityAndZip", column.Super},
		{Definition{Model: "User", Attributes: []string{"created_at"}}, "created_at", "UserByCreatedAt", "FindAllByCreatedAt", column.Super},
		{Definition{Model: "User", Attributes: []string{"city", "zip"}, Separator: "-"}, "city-zip", "UserByCityZip", "FindAllByCityAndZip", column.Super},
	}
	for _, c := range cases {
		assert.Equal(t, c.name, c.def.Name())
		assert.Equal(t, c.namespace, c.def.Namespace())
		assert.Equal(t, c.accessor, c.def.Accessor())
		assert.Equal(t, c.layout, c.def.NamespaceDef().Layout)
		assert.Equal(t, c.namespace, c.def.NamespaceDef().Name)
	}
	assert.Equal(t, column.TimeToken, Definition{Model: "User", Attributes: []string{"city"}}.NamespaceDef().SubComparator)
}

func TestDefinition_Keys(t *testing.T) {
	def := Definition{Model: "User", Attributes: []string{"city", "zip"}}
	rec := newDoc("u1", "city", "nyc", "zip", 10001)

	key, err := def.KeyFor("nyc", 10001)
	require.NoError(t, err)
	assert.Equal(t, key, def.Key(rec))
	assert.Equal(t, composite.Encode("nyc", "10001"), key)

	_, err = def.KeyFor("nyc")
	assert.ErrorIs(t, err, ErrArity)

	collide, err := def.KeyFor("a_b", "c")
	require.NoError(t, err)
	other, err := def.KeyFor("a", "b_c")
	require.NoError(t, err)
	assert.NotEqual(t, collide, other)

	missing := newDoc("u2", "city", "nyc")
	assert.Equal(t, composite.Encode("nyc", ""), def.Key(missing))

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	tdef := Definition{Model: "Event", Attributes: []string{"at"}}
	tkey, err := tdef.KeyFor(at.UTC())
	require.NoError(t, err)
	assert.Equal(t, tkey, tdef.Key(newDoc("e", "at", at)))
}

func TestDefinition_Matches(t *testing.T) {
	def := Definition{Model: "User", Attributes: []string{"city", "zip"}}
	rec := newDoc("u1", "city", "nyc", "zip", 10001)
	assert.True(t, def.Matches(rec, []any{"nyc", 10001}))
	assert.True(t, def.Matches(rec, []any{"nyc", "10001"}))
	assert.False(t, def.Matches(rec, []any{"nyc", 10002}))
	assert.False(t, def.Matches(rec, []any{"nyc"}))
}

func TestDefinition_Validate(t *testing.T) {
	var cases = []struct {
		def Definition
		ok  bool
	}{
		{Definition{Model: "User", Attributes: []string{"email"}}, true},
		{Definition{Attributes: []string{"email"}}, false},
		{Definition{Model: "User"}, false},
		{Definition{Model: "User", Attributes: []string{""}}, false},
		{Definition{Model: "User", Attributes: []string{"a", "a"}}, false},
	}
	for _, c := range cases {
		err := c.def.Validate()
		if c.ok {
			assert.NoError(t, err, "%+v", c.def)
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidDefinition, "%+v", c.def)
	}
}
