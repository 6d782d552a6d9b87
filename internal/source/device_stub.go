//go:build !gocv

package source

import "github.com/pkg/errors"

// ErrNoDeviceSupport is returned for device cameras when the binary was
// built without OpenCV.
var ErrNoDeviceSupport = errors.New("video devices need a build with -tags gocv")

func newDevice(id int) (Camera, error) {
	return nil, errors.Wrapf(ErrNoDeviceSupport, "device %d", id)
}
