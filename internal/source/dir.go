package source

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/ironsheep/text-scanner-mcp/internal/imaging"
)

var frameExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// Dir replays the image files of a directory in lexical order. It is the
// feed used for recorded sessions and tests.
type Dir struct {
	Path string
	Loop bool

	files []string
	next  int
}

// Open lists the directory. Files with other extensions are ignored.
func (d *Dir) Open() error {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return errors.Wrap(err, "open frame directory")
	}

	d.files = d.files[:0]
	for _, e := range entries {
		if e.IsDir() || !frameExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		d.files = append(d.files, filepath.Join(d.Path, e.Name()))
	}
	if len(d.files) == 0 {
		return errors.Errorf("no frames in %s", d.Path)
	}
	sort.Strings(d.files)
	d.next = 0
	return nil
}

// Read decodes the next file.
func (d *Dir) Read() (image.Image, error) {
	if d.files == nil {
		return nil, errors.New("frame directory not open")
	}
	if d.next >= len(d.files) {
		if !d.Loop {
			return nil, ErrEndOfStream
		}
		d.next = 0
	}
	path := d.files[d.next]
	d.next++
	return imaging.Decode(path)
}

// Close forgets the listing.
func (d *Dir) Close() error {
	d.files = nil
	d.next = 0
	return nil
}
