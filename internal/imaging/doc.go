// Package imaging provides the frame handling around the scanner: loading,
// ROI cropping, OCR pre-processing, overlay drawing and the display surface.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Loading
//
// ImageCache decodes PNG, JPEG, GIF and BMP files, and rasterizes the first
// page of PDF files. Decoded frames are cached by path and revalidated
// against the file's size and modification time.
//
// # Cropping
//
// Crop fits a stored ROI to the current frame before cutting it out. A ROI
// that overhangs the frame is clamped; one with no pixels inside the frame
// fails with roi.ErrInvalidROI instead of silently falling back to the
// whole frame.
//
// # Pre-processing
//
// Preprocess turns a frame into the binary image handed to the OCR engine:
// grayscale, inversion of mostly dark crops, median denoise, adaptive
// Gaussian threshold.
//
// # Display Surface
//
// Renderer scales the frame into a fixed viewport using the same scale
// factor as package roi, then draws the drag rectangle solid and the
// committed ROI dashed. DrawGrid can label the surface with display
// coordinates. Annotate draws recognized word boxes on a
// full-resolution copy of the frame; that copy is what Save writes.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and never modify their input images.
package imaging
