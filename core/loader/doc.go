// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface and registers its own routes.
// The Manager keeps features in registration order and loads the enabled ones
// onto the Fiber router.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
package loader
