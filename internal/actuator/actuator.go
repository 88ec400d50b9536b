// Package actuator abstracts the physical output channels the controller
// drives. Calls are expected to be fast and nearly infallible; errors are
// treated as transient by the reconciler, which converges on the next
// cycle anyway.
package actuator

// Actuator is a single controllable on/off output channel.
type Actuator interface {
	// On energizes the channel.
	On() error

	// Off de-energizes the channel.
	Off() error

	// IsOn reports the observed channel state.
	IsOn() (bool, error)
}
