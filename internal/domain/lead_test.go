package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadHeadline(t *testing.T) {
	assert.Equal(t, "CEO at Acme", Lead{Title: "CEO", Company: "Acme"}.Headline())
	assert.Equal(t, "CEO", Lead{Title: " CEO "}.Headline())
	assert.Equal(t, "Acme", Lead{Company: "Acme"}.Headline())
	assert.Equal(t, "", Lead{}.Headline())
}

func TestParseTool(t *testing.T) {
	tool, err := ParseTool(" Apollo ")
	require.NoError(t, err)
	assert.Equal(t, ToolApollo, tool)

	_, err = ParseTool("linkedin")
	assert.Error(t, err)
}

func TestSystemMode(t *testing.T) {
	m, err := ParseSystemMode("LIVE")
	require.NoError(t, err)
	assert.True(t, m.IsLive())
	assert.Equal(t, ModeTest, m.Other())

	_, err = ParseSystemMode("staging")
	assert.Error(t, err)

	assert.Equal(t, ModeTest, SystemMode("").Normalize())
}

func TestRedactFilters(t *testing.T) {
	in := map[string]string{"searchUrl": "u", "sessionCookie": "secret"}
	out := RedactFilters(in)
	assert.Equal(t, map[string]string{"searchUrl": "u"}, out)
	assert.Equal(t, "secret", in["sessionCookie"], "input is not modified")
	assert.True(t, IsSensitiveFilter("sessionCookie"))
	assert.False(t, IsSensitiveFilter("searchUrl"))
}
