package policy

import "strings"

// FileEntry is one file of an extension package.
type FileEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// FileSet is the ordered list of files in an extension package.
type FileSet []FileEntry

// TotalBytes sums the size of every file.
func (fs FileSet) TotalBytes() int64 {
	var total int64
	for _, f := range fs {
		total += f.Size
	}
	return total
}

// Lookup finds the file an icon path refers to. An exact name wins;
// otherwise the lexicographically smallest name ending with the path is
// returned, so the result does not depend on file order.
func (fs FileSet) Lookup(path string) (FileEntry, bool) {
	var match FileEntry
	found := false
	for _, f := range fs {
		if f.Name == path {
			return f, true
		}
		if strings.HasSuffix(f.Name, path) && (!found || f.Name < match.Name) {
			match, found = f, true
		}
	}
	return match, found
}
