package driver

import (
	"github.com/vovakirdan/steploop/internal/core"
)

// Application is the capability set the driver schedules.
// Implementations hold the simulation state and never see wall-clock time:
// every Update call stands for exactly one UpdateInterval of simulated time.
type Application interface {
	// ProcessInput receives every platform event in arrival order.
	ProcessInput(ev core.Event)

	// Update advances the simulation by one fixed tick.
	Update()

	// OneSecondUpdate runs low-frequency maintenance on a 1 Hz cadence.
	OneSecondUpdate()

	// Render draws the current state. Called at most once per wake-up,
	// regardless of how many ticks ran before it.
	Render()

	// ShouldClose is polled once per wake-up; returning true terminates the driver.
	ShouldClose() bool
}

// Factory constructs the Application once the platform surface exists.
// An error here is fatal for the activation sequence.
type Factory func(surface *core.Screen) (Application, error)

// SurfaceProvider hands out the renderable surface on activation.
type SurfaceProvider interface {
	AcquireSurface() (*core.Screen, error)
}

// SurfaceProviderFunc adapts a function to SurfaceProvider.
type SurfaceProviderFunc func() (*core.Screen, error)

// AcquireSurface calls f.
func (f SurfaceProviderFunc) AcquireSurface() (*core.Screen, error) {
	return f()
}

// FixedSurface returns a provider that always hands out s.
func FixedSurface(s *core.Screen) SurfaceProvider {
	return SurfaceProviderFunc(func() (*core.Screen, error) {
		return s, nil
	})
}

// Waker asks the platform to invoke OnWake again soon.
// Requests are advisory and may be coalesced; duplicates are harmless.
type Waker interface {
	RequestWake()
}

// WakerFunc adapts a function to Waker.
type WakerFunc func()

// RequestWake calls f.
func (f WakerFunc) RequestWake() {
	f()
}

type noopWaker struct{}

func (noopWaker) RequestWake() {}
