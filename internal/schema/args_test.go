package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return New("widget", map[string]*Property{
		"id":     {Type: TypeInteger, Context: All, Readonly: true},
		"title":  {Type: TypeString, Context: ViewEdit, Required: true},
		"status": {Type: TypeString, Context: EditOnly, Enum: []string{"draft", "publish"}, Default: "draft"},
		"note":   {Type: TypeString, Context: EditOnly},
		"slug":   {Type: TypeString, Context: []Context{ContextView}},
	})
}

func TestEndpointArgs(t *testing.T) {
	args := EndpointArgs(testSchema(), "")

	assert.ElementsMatch(t, []string{"title", "status", "note"}, keys(args))
	assert.True(t, args["title"].Required)
	assert.False(t, args["note"].Required)
	assert.Nil(t, args["note"].Default)
	assert.Equal(t, "draft", args["status"].Default)

	require.NotNil(t, args["status"].Validate)
	assert.Error(t, args["status"].Validate("archived", "status"))
	assert.NoError(t, args["status"].Validate("publish", "status"))

	clean, err := args["title"].Sanitize(5, "title")
	require.NoError(t, err)
	assert.Equal(t, "5", clean)

	viewArgs := EndpointArgs(testSchema(), ContextView)
	assert.ElementsMatch(t, []string{"title", "slug"}, keys(viewArgs))
}

func TestUpdateArgsDropRequiredAndDefaults(t *testing.T) {
	args := UpdateArgs(testSchema())
	assert.False(t, args["title"].Required)
	assert.Nil(t, args["status"].Default)
	assert.NotNil(t, args["status"].Validate)
}

func TestMerge(t *testing.T) {
	a := map[string]ArgSpec{"x": {Description: "a"}, "y": {}}
	b := map[string]ArgSpec{"x": {Description: "b"}}
	m := Merge(a, b)
	assert.Equal(t, "b", m["x"].Description)
	assert.Len(t, m, 2)
	assert.Equal(t, "a", a["x"].Description)
}

func TestFilterByContext(t *testing.T) {
	s := testSchema()
	s.Properties["content"] = &Property{
		Type:    TypeObject,
		Context: ViewEdit,
		Properties: map[string]*Property{
			"raw":      {Type: TypeString, Context: EditOnly},
			"rendered": {Type: TypeString, Context: ViewEdit},
		},
	}
	data := map[string]any{
		"id":      1,
		"title":   "t",
		"status":  "draft",
		"slug":    "s",
		"content": map[string]any{"raw": "r", "rendered": "<p>r</p>"},
		"_links":  map[string]any{},
	}

	view := FilterByContext(data, s, ContextView)
	assert.ElementsMatch(t, []string{"id", "title", "slug", "content", "_links"}, mapKeys(view))
	assert.Equal(t, map[string]any{"rendered": "<p>r</p>"}, view["content"])

	embed := FilterByContext(data, s, ContextEmbed)
	assert.ElementsMatch(t, []string{"id", "_links"}, mapKeys(embed))

	edit := FilterByContext(data, s, ContextEdit)
	assert.ElementsMatch(t, []string{"id", "title", "status", "content", "_links"}, mapKeys(edit))
	assert.Len(t, data, 6)
}

func TestParseContext(t *testing.T) {
	assert.Equal(t, ContextEdit, ParseContext("edit"))
	assert.Equal(t, ContextEmbed, ParseContext("embed"))
	assert.Equal(t, ContextView, ParseContext(""))
	assert.Equal(t, ContextView, ParseContext("bogus"))
}

func keys(m map[string]ArgSpec) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func mapKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
