package policy

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/storecheck/schema"
)

// ManifestFile is the name of the manifest at the root of every package.
const ManifestFile = "manifest.json"

// ErrManifestMissing is returned when a package has no manifest.json.
var ErrManifestMissing = errors.New("manifest.json not found")

// ErrInvalidPackage is returned for unreadable archives and CRX headers.
var ErrInvalidPackage = errors.New("invalid extension package")

// Submission is a manifest and file set ready for validation.
type Submission struct {
	Source   string
	Manifest *Manifest
	Files    FileSet
	Digest   string // sha256 of the manifest bytes and the sorted file list
}

// Validate runs the validator over the submission.
func (s *Submission) Validate(rb *schema.Rulebook) schema.Report {
	return Validate(s.Manifest, s.Files, rb)
}

// NewSubmission builds a submission from in-memory inputs.
func NewSubmission(source string, manifestJSON []byte, files FileSet) (*Submission, error) {
	m, err := ParseManifest(manifestJSON)
	if err != nil {
		return nil, err
	}
	return &Submission{
		Source:   source,
		Manifest: m,
		Files:    files,
		Digest:   digest(manifestJSON, files),
	}, nil
}

// LoadSubmission reads an extension from disk. The path may be an unpacked
// directory, a manifest.json file, a .zip archive or a .crx package.
func LoadSubmission(p string) (*Submission, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadDir(p, p, filepath.Join(p, ManifestFile))
	}

	switch strings.ToLower(filepath.Ext(p)) {
	case ".json":
		return loadDir(p, filepath.Dir(p), p)
	case ".zip":
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return loadZip(p, data)
	case ".crx":
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		payload, err := stripCRXHeader(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		return loadZip(p, payload)
	default:
		return nil, fmt.Errorf("%s: %w: expected a directory, manifest.json, .zip or .crx", p, ErrInvalidPackage)
	}
}

// LoadArchive reads a .zip or .crx package that is already in memory.
func LoadArchive(source string, data []byte) (*Submission, error) {
	if bytes.HasPrefix(data, []byte(crxMagic)) {
		payload, err := stripCRXHeader(data)
		if err != nil {
			return nil, err
		}
		data = payload
	}
	return loadZip(source, data)
}

func loadDir(source, root, manifestPath string) (*Submission, error) {
	manifestJSON, err := os.ReadFile(manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", source, ErrManifestMissing)
	}
	if err != nil {
		return nil, err
	}

	var files FileSet
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, FileEntry{Name: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sub, err := NewSubmission(source, manifestJSON, files)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return sub, nil
}

func loadZip(source string, data []byte) (*Submission, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", source, ErrInvalidPackage, err)
	}

	// The manifest closest to the archive root decides the package root,
	// which covers archives wrapping everything in one top-level folder.
	var manifest *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != ManifestFile {
			continue
		}
		if manifest == nil || depth(f.Name) < depth(manifest.Name) {
			manifest = f
		}
	}
	if manifest == nil {
		return nil, fmt.Errorf("%s: %w", source, ErrManifestMissing)
	}
	prefix := strings.TrimSuffix(manifest.Name, ManifestFile)

	rc, err := manifest.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", source, ErrInvalidPackage, err)
	}
	manifestJSON, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", source, ErrInvalidPackage, err)
	}

	var files FileSet
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		files = append(files, FileEntry{
			Name: strings.TrimPrefix(f.Name, prefix),
			Size: int64(f.UncompressedSize64),
		})
	}

	sub, err := NewSubmission(source, manifestJSON, files)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return sub, nil
}

func depth(name string) int {
	return strings.Count(name, "/")
}

const crxMagic = "Cr24"

// stripCRXHeader returns the ZIP payload of a CRX2 or CRX3 package.
func stripCRXHeader(data []byte) ([]byte, error) {
	if len(data) < 12 || string(data[:4]) != crxMagic {
		return nil, fmt.Errorf("%w: missing CRX magic", ErrInvalidPackage)
	}

	var offset uint64
	switch version := binary.LittleEndian.Uint32(data[4:8]); version {
	case 2:
		if len(data) < 16 {
			return nil, fmt.Errorf("%w: truncated CRX2 header", ErrInvalidPackage)
		}
		keyLen := uint64(binary.LittleEndian.Uint32(data[8:12]))
		sigLen := uint64(binary.LittleEndian.Uint32(data[12:16]))
		offset = 16 + keyLen + sigLen
	case 3:
		offset = 12 + uint64(binary.LittleEndian.Uint32(data[8:12]))
	default:
		return nil, fmt.Errorf("%w: unsupported CRX version %d", ErrInvalidPackage, version)
	}

	if offset > uint64(len(data)) {
		return nil, fmt.Errorf("%w: truncated CRX header", ErrInvalidPackage)
	}
	return data[offset:], nil
}

func digest(manifestJSON []byte, files FileSet) string {
	sorted := make(FileSet, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := sha256.New()
	h.Write(manifestJSON)
	for _, f := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(f.Size, 10)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
