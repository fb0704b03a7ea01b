package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "name: test"},
		{"array", `["name"]`},
		{"null", "null"},
		{"truncated", `{"name": "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data))
			assert.ErrorIs(t, err, ErrManifestParse)
		})
	}
}

func TestParseManifestPresence(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		present bool
	}{
		{"absent", `{}`, false},
		{"null", `{"name":null}`, false},
		{"false", `{"name":false}`, false},
		{"zero", `{"name":0}`, false},
		{"empty string", `{"name":""}`, false},
		{"string", `{"name":"x"}`, true},
		{"number", `{"name":1}`, true},
		{"true", `{"name":true}`, true},
		{"empty object", `{"name":{}}`, true},
		{"empty array", `{"name":[]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.present, m.Name.Present)
		})
	}
}

func TestParseManifestFields(t *testing.T) {
	m, err := ParseManifest([]byte("\xef\xbb\xbf" + `{
		"name": "Reader",
		"manifest_version": "3",
		"permissions": ["tabs", 5, "storage"],
		"content_scripts": [{"matches": ["<all_urls>"]}],
		"browser_action": {"default_popup": "popup.html"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Reader", m.Name.Value)
	assert.True(t, m.Name.IsText)
	assert.True(t, m.ManifestVersion.Is(3))
	assert.True(t, m.HasPermissions)
	assert.Equal(t, []string{"tabs", "storage"}, m.Permissions)
	assert.True(t, m.HasPermission("tabs"))
	assert.False(t, m.HasPermission("cookies"))
	assert.False(t, m.HasIcons)
	assert.Equal(t, 2, m.PurposeCount())
}

func TestParseManifestIconOrder(t *testing.T) {
	m, err := ParseManifest([]byte(`{"icons": {"128": "c.png", "legacy": "l.png", "16": "a.png", "48": "b.png", "016": "z.png", "16": "a2.png"}}`))
	require.NoError(t, err)
	require.True(t, m.HasIcons)

	assert.Equal(t, []IconEntry{
		{Size: "16", Path: "a2.png"},
		{Size: "48", Path: "b.png"},
		{Size: "128", Path: "c.png"},
		{Size: "legacy", Path: "l.png"},
		{Size: "016", Path: "z.png"},
	}, m.Icons)
	assert.True(t, m.HasIcon("48"))
	assert.False(t, m.HasIcon("32"))
}

func TestParseManifestIconsNotObject(t *testing.T) {
	m, err := ParseManifest([]byte(`{"icons": "icon.png"}`))
	require.NoError(t, err)
	assert.True(t, m.HasIcons)
	assert.Empty(t, m.Icons)
}

func TestTextLen(t *testing.T) {
	n, ok := Text{Value: "héllo", IsText: true}.Len()
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	_, ok = Text{Value: "12"}.Len()
	assert.False(t, ok)
}
