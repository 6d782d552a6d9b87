package imaging

import (
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/go-fitz"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp" // Register BMP format decoder
)

// DefaultPDFDPI is the resolution PDF pages are rasterized at.
const DefaultPDFDPI = 150

// ImageCache keeps decoded frames keyed by file path so that reloading the
// same file skips decoding.
//
// An entry is reused only while the file's size and modification time are
// unchanged; a file rewritten on disk is decoded again on the next Load.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage

	// PDFDPI is the rasterization resolution for PDF input.
	PDFDPI float64
}

type cachedImage struct {
	img     image.Image
	size    int64
	modTime time.Time
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
		PDFDPI: DefaultPDFDPI,
	}
}

// Load retrieves a frame from the cache or decodes it from disk.
//
// PNG, JPEG, GIF and BMP files are decoded with the registered image
// decoders. PDF files are rasterized page by page; the first page becomes the
// frame.
//
// # Errors
//
//   - the file does not exist or cannot be read
//   - the content is not a supported image or PDF
func (c *ImageCache) Load(path string) (image.Image, error) {
	stat, err := os.Stat(path)
	if err != nil {
		c.Evict(path)
		return nil, errors.Wrap(err, "open image")
	}

	c.mu.RLock()
	entry, ok := c.images[path]
	c.mu.RUnlock()
	if ok && entry.size == stat.Size() && entry.modTime.Equal(stat.ModTime()) {
		return entry.img, nil
	}

	img, err := c.decode(path)
	if err != nil {
		// The cached frame no longer matches the file.
		c.Evict(path)
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = cachedImage{img: img, size: stat.Size(), modTime: stat.ModTime()}
	c.mu.Unlock()

	return img, nil
}

func (c *ImageCache) decode(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return decodePDF(path, c.PDFDPI)
	}
	return Decode(path)
}

// Decode reads and decodes a single image file without caching.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %s", filepath.Base(path))
	}
	return img, nil
}

func decodePDF(path string, dpi float64) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, errors.Wrap(err, "open pdf")
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, errors.Errorf("pdf %s has no pages", filepath.Base(path))
	}
	if dpi <= 0 {
		dpi = DefaultPDFDPI
	}
	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, errors.Wrap(err, "render pdf page")
	}
	return img, nil
}

// Clear removes all frames from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Evict removes a specific frame from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo describes the file a frame was loaded from.
type ImageInfo struct {
	// Format is "png", "jpeg", "gif", "bmp", "pdf" or "unknown",
	// detected from the file extension.
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Describe returns file metadata for path.
func Describe(path string) (*ImageInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat image")
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	case ".pdf":
		format = "pdf"
	}

	return &ImageInfo{
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
