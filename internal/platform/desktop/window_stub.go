//go:build !cgo

package desktop

import (
	"github.com/vovakirdan/steploop/internal/platform"
)

// Available reports whether this build can open a window.
const Available = false

// Run always fails without cgo.
func Run(platform.Options) error {
	return ErrUnavailable
}
