//go:build gocv

package source

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Device reads frames from a video capture device through OpenCV.
type Device struct {
	ID int

	vc  *gocv.VideoCapture
	mat gocv.Mat
}

func newDevice(id int) (Camera, error) {
	return &Device{ID: id}, nil
}

// Open opens the capture device.
func (d *Device) Open() error {
	vc, err := gocv.OpenVideoCapture(d.ID)
	if err != nil {
		return errors.Wrapf(err, "open video device %d", d.ID)
	}
	if !vc.IsOpened() {
		vc.Close()
		return errors.Errorf("video device %d did not open", d.ID)
	}
	d.vc = vc
	d.mat = gocv.NewMat()
	return nil
}

// Read grabs the next frame.
func (d *Device) Read() (image.Image, error) {
	if d.vc == nil {
		return nil, errors.New("video device not open")
	}
	if ok := d.vc.Read(&d.mat); !ok {
		return nil, ErrEndOfStream
	}
	if d.mat.Empty() {
		return nil, errors.Errorf("video device %d returned an empty frame", d.ID)
	}
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "convert frame")
	}
	return img, nil
}

// Close releases the device.
func (d *Device) Close() error {
	if d.vc == nil {
		return nil
	}
	d.mat.Close()
	err := d.vc.Close()
	d.vc = nil
	return err
}
