package policy

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/storecheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func crx3(payload []byte) []byte {
	header := []byte("proto-header")
	out := []byte(crxMagic)
	out = binary.LittleEndian.AppendUint32(out, 3)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(header)))
	out = append(out, header...)
	return append(out, payload...)
}

func crx2(payload []byte) []byte {
	key, sig := []byte("public-key"), []byte("signature")
	out := []byte(crxMagic)
	out = binary.LittleEndian.AppendUint32(out, 2)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(key)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(sig)))
	out = append(out, key...)
	out = append(out, sig...)
	return append(out, payload...)
}

var sampleTree = map[string]string{
	"manifest.json":  `{"name":"Sample","version":"1.0","description":"A sample extension","manifest_version":3,"icons":{"16":"icons/16.png"}}`,
	"icons/16.png":   "png-bytes",
	"popup/app.html": "<html></html>",
}

func TestLoadSubmissionDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, sampleTree)
	writeTree(t, root, map[string]string{".git/HEAD": "ref: refs/heads/main"})

	sub, err := LoadSubmission(root)
	require.NoError(t, err)

	names := make([]string, 0, len(sub.Files))
	for _, f := range sub.Files {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"manifest.json", "icons/16.png", "popup/app.html"}, names)
	assert.Equal(t, "Sample", sub.Manifest.Name.Value)
	assert.Equal(t, root, sub.Source)
	assert.Len(t, sub.Digest, 64)

	report := sub.Validate(schema.DefaultRulebook())
	assert.Empty(t, withTitle(report.Findings, "Icon file not found"))
}

func TestLoadSubmissionManifestFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, sampleTree)

	sub, err := LoadSubmission(filepath.Join(root, ManifestFile))
	require.NoError(t, err)
	assert.Len(t, sub.Files, 3)
}

func TestLoadSubmissionArchives(t *testing.T) {
	wrapped := map[string]string{}
	for name, content := range sampleTree {
		wrapped["sample-1.0/"+name] = content
	}
	wrapped["sample-1.0/vendor/lib/manifest.json"] = `{"name":"nested"}`
	payload := zipBytes(t, wrapped)

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"zip", "sample.zip", payload},
		{"crx3", "sample.crx", crx3(payload)},
		{"crx2", "sample.crx", crx2(payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(p, tt.data, 0o644))

			sub, err := LoadSubmission(p)
			require.NoError(t, err)
			assert.Equal(t, "Sample", sub.Manifest.Name.Value)

			_, ok := sub.Files.Lookup("icons/16.png")
			assert.True(t, ok)
			_, ok = sub.Files.Lookup("vendor/lib/manifest.json")
			assert.True(t, ok)
		})
	}
}

func TestLoadArchive(t *testing.T) {
	payload := zipBytes(t, sampleTree)

	fromZip, err := LoadArchive("upload.zip", payload)
	require.NoError(t, err)
	fromCRX, err := LoadArchive("upload.crx", crx3(payload))
	require.NoError(t, err)
	assert.Equal(t, fromZip.Digest, fromCRX.Digest)
}

func TestLoadSubmissionErrors(t *testing.T) {
	t.Run("missing manifest in directory", func(t *testing.T) {
		_, err := LoadSubmission(t.TempDir())
		assert.ErrorIs(t, err, ErrManifestMissing)
	})

	t.Run("missing manifest in zip", func(t *testing.T) {
		_, err := LoadArchive("x.zip", zipBytes(t, map[string]string{"readme.txt": "hi"}))
		assert.ErrorIs(t, err, ErrManifestMissing)
	})

	t.Run("unparseable manifest", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"manifest.json": "{not json"})
		_, err := LoadSubmission(root)
		assert.ErrorIs(t, err, ErrManifestParse)
	})

	t.Run("not an archive", func(t *testing.T) {
		_, err := LoadArchive("x.zip", []byte("plain text"))
		assert.ErrorIs(t, err, ErrInvalidPackage)
	})

	t.Run("bad crx version", func(t *testing.T) {
		data := append([]byte(crxMagic), 9, 0, 0, 0, 0, 0, 0, 0)
		_, err := stripCRXHeader(data)
		assert.ErrorIs(t, err, ErrInvalidPackage)
	})

	t.Run("truncated crx header", func(t *testing.T) {
		data := binary.LittleEndian.AppendUint32([]byte(crxMagic+"\x03\x00\x00\x00"), 1000)
		_, err := stripCRXHeader(data)
		assert.ErrorIs(t, err, ErrInvalidPackage)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "ext.tar")
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		_, err := LoadSubmission(p)
		assert.ErrorIs(t, err, ErrInvalidPackage)
	})
}

func TestSubmissionDigest(t *testing.T) {
	manifest := []byte(`{"name":"Sample"}`)
	a, err := NewSubmission("a", manifest, FileSet{{Name: "a.js", Size: 1}, {Name: "b.js", Size: 2}})
	require.NoError(t, err)
	b, err := NewSubmission("b", manifest, FileSet{{Name: "b.js", Size: 2}, {Name: "a.js", Size: 1}})
	require.NoError(t, err)
	c, err := NewSubmission("c", manifest, FileSet{{Name: "a.js", Size: 1}, {Name: "b.js", Size: 3}})
	require.NoError(t, err)

	assert.Equal(t, a.Digest, b.Digest)
	assert.NotEqual(t, a.Digest, c.Digest)
	assert.Equal(t, "a.js", a.Files[0].Name, "digest must not reorder the file set")
}
