package dgus

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Entry is one row of the file list
type Entry struct {
	Name string
	Dir  bool
	IsUp bool // the ".." row shown inside folders
	Path string
}

// DisplayName is the text shown in the file box
func (e Entry) DisplayName() string {
	switch {
	case e.IsUp:
		return ".."
	case e.Dir:
		return e.Name + "/"
	}
	return e.Name
}

var printableExt = []string{".gcode", ".gco", ".g"}

func printable(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range printableExt {
		if ext == e {
			return true
		}
	}
	return false
}

// Navigator walks the media tree five entries at a time
type Navigator struct {
	fsys    fs.FS
	dir     string
	entries []Entry
	loaded  bool
	err     error
}

// NewNavigator creates a navigator rooted at fsys
func NewNavigator(fsys fs.FS) *Navigator {
	return &Navigator{fsys: fsys, dir: "."}
}

// Reset returns to the root folder and drops the cached listing
func (n *Navigator) Reset() {
	n.dir = "."
	n.loaded = false
}

// Dir returns the current folder
func (n *Navigator) Dir() string {
	return n.dir
}

// Depth returns how many folders deep the navigator is
func (n *Navigator) Depth() int {
	if n.dir == "." {
		return 0
	}
	return strings.Count(n.dir, "/") + 1
}

// Err returns the error of the last directory read
func (n *Navigator) Err() error {
	return n.err
}

func (n *Navigator) load() {
	if n.loaded {
		return
	}
	n.loaded = true
	n.entries = n.entries[:0]
	n.err = nil
	if n.fsys == nil {
		return
	}

	if n.dir != "." {
		n.entries = append(n.entries, Entry{Name: "..", Dir: true, IsUp: true, Path: path.Dir(n.dir)})
	}
	list, err := fs.ReadDir(n.fsys, n.dir)
	if err != nil {
		n.err = err
		return
	}

	var dirs, files []Entry
	for _, de := range list {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		p := path.Join(n.dir, name)
		switch {
		case de.IsDir():
			dirs = append(dirs, Entry{Name: name, Dir: true, Path: p})
		case printable(name):
			files = append(files, Entry{Name: name, Path: p})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	n.entries = append(n.entries, dirs...)
	n.entries = append(n.entries, files...)
}

// Count returns the number of entries in the current folder
func (n *Navigator) Count() int {
	n.load()
	return len(n.entries)
}

// Entry returns the entry at index
func (n *Navigator) Entry(index int) (Entry, bool) {
	n.load()
	if index < 0 || index >= len(n.entries) {
		return Entry{}, false
	}
	return n.entries[index], true
}

// Window returns up to FilesPerPage entries starting at start
func (n *Navigator) Window(start int) []Entry {
	n.load()
	if start < 0 || start >= len(n.entries) {
		return nil
	}
	end := start + FilesPerPage
	if end > len(n.entries) {
		end = len(n.entries)
	}
	return n.entries[start:end]
}

// ChangeDir enters the sub folder name
func (n *Navigator) ChangeDir(name string) {
	n.dir = path.Join(n.dir, name)
	n.loaded = false
}

// UpDir leaves the current folder
func (n *Navigator) UpDir() {
	if n.dir == "." {
		return
	}
	n.dir = path.Dir(n.dir)
	n.loaded = false
}
