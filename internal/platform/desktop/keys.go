//go:build cgo

package desktop

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/vovakirdan/steploop/internal/core"
)

var namedKeys = map[ebiten.Key]core.Key{
	ebiten.KeyArrowUp:    core.KeyUp,
	ebiten.KeyArrowDown:  core.KeyDown,
	ebiten.KeyArrowLeft:  core.KeyLeft,
	ebiten.KeyArrowRight: core.KeyRight,
	ebiten.KeySpace:      core.KeySpace,
	ebiten.KeyEnter:      core.KeyEnter,
	ebiten.KeyEscape:     core.KeyEscape,
	ebiten.KeyTab:        core.KeyTab,
	ebiten.KeyBackspace:  core.KeyBackspace,
}

var mouseButtons = map[ebiten.MouseButton]core.MouseButton{
	ebiten.MouseButtonLeft:   core.MouseLeft,
	ebiten.MouseButtonRight:  core.MouseRight,
	ebiten.MouseButtonMiddle: core.MouseMiddle,
	ebiten.MouseButton3:      core.MouseBack,
	ebiten.MouseButton4:      core.MouseForward,
}

// keyFor names k the way the terminal adapter does: named keys by their
// core constant, letters and digits by their lower-case character.
func keyFor(k ebiten.Key) (core.Key, bool) {
	if key, ok := namedKeys[k]; ok {
		return key, true
	}
	name := k.String()
	name = strings.TrimPrefix(name, "Digit")
	if len(name) != 1 {
		return "", false
	}
	return core.Key(strings.ToLower(name)), true
}
