// Package rayid tags every request with a unique id.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Header carries the ray id on requests and responses.
	Header = "X-Ray-ID"
	// LocalsKey is where the id is stored in the Fiber context.
	LocalsKey = "ray_id"
)

// New returns a middleware that reuses an incoming X-Ray-ID or generates one,
// stores it in the context locals and echoes it on the response.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}
