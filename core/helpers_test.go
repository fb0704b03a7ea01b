package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huangsam/storecheck/core/policy"
	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/schema"
)

const cleanManifest = `{
	"name": "Tab Organizer",
	"description": "Keeps your tabs neatly grouped by site.",
	"version": "1.2.0",
	"manifest_version": 3,
	"icons": {
		"16": "icons/16.png", "19": "icons/19.png", "32": "icons/32.png", "38": "icons/38.png",
		"48": "icons/48.png", "64": "icons/64.png", "96": "icons/96.png", "128": "icons/128.png"
	},
	"permissions": ["storage"],
	"action": {}
}`

// failingManifest is missing its version, description and icons.
const failingManifest = `{"name": "Tabs", "manifest_version": 3, "permissions": ["tabs", "history"]}`

var iconSizes = []string{"16", "19", "32", "38", "48", "64", "96", "128"}

// writeExtension creates an unpacked extension under a new temp dir and returns its path.
func writeExtension(t *testing.T, manifest string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "icons"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, policy.ManifestFile), []byte(manifest), 0o644))
	for _, size := range iconSizes {
		require.NoError(t, os.WriteFile(filepath.Join(root, "icons", size+".png"), []byte("png"), 0o644))
	}
	return root
}

func cleanSubmission(t *testing.T) *policy.Submission {
	t.Helper()
	files := policy.FileSet{{Name: policy.ManifestFile, Size: int64(len(cleanManifest))}}
	for _, size := range iconSizes {
		files = append(files, policy.FileEntry{Name: "icons/" + size + ".png", Size: 3})
	}
	sub, err := policy.NewSubmission("inline", []byte(cleanManifest), files)
	require.NoError(t, err)
	return sub
}

func testConfig(paths ...string) *contract.Config {
	return &contract.Config{
		Paths:        paths,
		Workers:      2,
		Output:       schema.TextOut,
		FailOn:       schema.NoSeverity,
		CacheBackend: schema.NoneBackend,
		Rulebook:     schema.DefaultRulebook(),
	}
}
