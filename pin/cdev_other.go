//go:build !linux && !tinygo

package pin

import (
	"errors"
	"fmt"
)

var errNoCdev = errors.New("GPIO character device requires linux")

// Cdev is unavailable outside Linux.
type Cdev struct{}

func OpenCdev(chip string, offset int) (*Cdev, error) {
	return nil, fmt.Errorf("request %s:%d: %w", chip, offset, errNoCdev)
}

func (c *Cdev) High() error  { return errNoCdev }
func (c *Cdev) Low() error   { return errNoCdev }
func (c *Cdev) Close() error { return nil }
