package policy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"
)

// ErrManifestParse is returned when manifest.json is not a JSON object.
var ErrManifestParse = errors.New("could not parse manifest")

// Text is an optional scalar manifest field.
// Present follows JSON truthiness: absent, null, false, 0 and "" are not present.
type Text struct {
	Value   string // the string value, or the JSON literal of a non-string scalar
	Present bool
	IsText  bool // the JSON value was a string
}

// Len returns the length of the value in characters, when the value is a string.
func (t Text) Len() (int, bool) {
	if !t.IsText {
		return 0, false
	}
	return utf8.RuneCountInString(t.Value), true
}

// Number is an optional numeric manifest field. Numeric strings are accepted.
type Number struct {
	Value   float64
	Valid   bool
	Present bool
}

// Is reports whether the field holds the number n.
func (n Number) Is(v float64) bool {
	return n.Valid && n.Value == v
}

// IconEntry is a declared icon, keyed by its size string.
type IconEntry struct {
	Size string
	Path string
}

// Manifest is the typed view of manifest.json used by the validator.
// Every field carries explicit presence; the validator never mutates it.
type Manifest struct {
	Name            Text
	Description     Text
	Version         Text
	ManifestVersion Number
	PrivacyPolicy   Text

	HasIcons bool
	Icons    []IconEntry

	HasPermissions bool
	Permissions    []string

	HasContentScripts bool
	HasBackground     bool
	HasAction         bool // action or browser_action
	HasOptionsPage    bool
}

// ParseManifest decodes manifest.json source text.
func ParseManifest(data []byte) (*Manifest, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrManifestParse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
	}

	m := &Manifest{
		Name:              parseText(fields["name"]),
		Description:       parseText(fields["description"]),
		Version:           parseText(fields["version"]),
		ManifestVersion:   parseNumber(fields["manifest_version"]),
		PrivacyPolicy:     parseText(fields["privacy_policy"]),
		HasContentScripts: truthy(fields["content_scripts"]),
		HasBackground:     truthy(fields["background"]),
		HasAction:         truthy(fields["action"]) || truthy(fields["browser_action"]),
		HasOptionsPage:    truthy(fields["options_page"]),
	}

	if raw := fields["icons"]; truthy(raw) {
		m.HasIcons = true
		m.Icons = parseIcons(raw)
	}

	if raw := fields["permissions"]; truthy(raw) {
		m.HasPermissions = true
		m.Permissions = parseStrings(raw)
	}

	return m, nil
}

// truthy mirrors JSON truthiness as browsers evaluate it.
func truthy(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	if len(s) == 0 {
		return false
	}
	switch s[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		var str string
		return json.Unmarshal(s, &str) == nil && str != ""
	default:
		f, err := strconv.ParseFloat(string(s), 64)
		return err == nil && f != 0
	}
}

func parseText(raw json.RawMessage) Text {
	t := Text{Present: truthy(raw)}
	s := bytes.TrimSpace(raw)
	if len(s) == 0 {
		return t
	}
	switch s[0] {
	case '"':
		var str string
		if json.Unmarshal(s, &str) == nil {
			t.Value = str
			t.IsText = true
		}
	case '{', '[':
		// Structured values have no textual form.
	default:
		t.Value = string(s)
	}
	return t
}

func parseNumber(raw json.RawMessage) Number {
	n := Number{Present: truthy(raw)}
	s := bytes.TrimSpace(raw)
	if len(s) == 0 {
		return n
	}
	text := string(s)
	if s[0] == '"' {
		if json.Unmarshal(s, &text) != nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		n.Value = f
		n.Valid = true
	}
	return n
}

// parseStrings keeps the string elements of a JSON array.
func parseStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	return out
}

// parseIcons returns icon declarations in the order a browser enumerates
// object keys: integer keys ascending, then the rest in declaration order.
func parseIcons(raw json.RawMessage) []IconEntry {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}

	var entries []IconEntry
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, _ := keyTok.(string)
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil
		}
		path := parseText(val).Value
		if i, ok := index[key]; ok {
			entries[i].Path = path
			continue
		}
		index[key] = len(entries)
		entries = append(entries, IconEntry{Size: key, Path: path})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, aok := arrayIndex(entries[i].Size)
		b, bok := arrayIndex(entries[j].Size)
		switch {
		case aok && bok:
			return a < b
		case aok:
			return true
		default:
			return false
		}
	})
	return entries
}

// arrayIndex reports whether key is a canonical non-negative integer.
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}
	return n, true
}

// HasIcon reports whether an icon of the given size is declared.
func (m *Manifest) HasIcon(size string) bool {
	for _, e := range m.Icons {
		if e.Size == size {
			return true
		}
	}
	return false
}

// HasPermission reports whether permission is requested.
func (m *Manifest) HasPermission(permission string) bool {
	for _, p := range m.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// PurposeCount counts the distinct extension surfaces the manifest declares.
func (m *Manifest) PurposeCount() int {
	count := 0
	for _, has := range []bool{m.HasContentScripts, m.HasBackground, m.HasAction, m.HasOptionsPage} {
		if has {
			count++
		}
	}
	return count
}
