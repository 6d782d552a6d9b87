//go:build !gocv

package source

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew_DeviceWithoutOpenCV(t *testing.T) {
	_, err := New("device:0", false)
	assert.True(t, errors.Is(err, ErrNoDeviceSupport))
}
