package loader

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
}

func (s stubFeature) Name() string    { return s.name }
func (s stubFeature) IsEnabled() bool { return s.enabled }
func (s stubFeature) Load(app fiber.Router) error {
	if s.err != nil {
		return s.err
	}
	app.Get("/"+s.name, func(c *fiber.Ctx) error { return c.SendString(s.name) })
	return nil
}

func TestManager_LoadAll(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewManager(zap.New(core))
	m.Register(stubFeature{name: "on", enabled: true})
	m.Register(stubFeature{name: "off", enabled: false})

	app := fiber.New()
	require.NoError(t, m.LoadAll(app))

	resp, err := app.Test(httptest.NewRequest("GET", "/on", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/off", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	assert.Equal(t, 1, logs.FilterMessage("Feature loaded").Len())
	assert.Equal(t, 1, logs.FilterMessage("Feature disabled").Len())
}

func TestManager_LoadAllError(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(nil)
	m.Register(stubFeature{name: "bad", enabled: true, err: boom})

	err := m.LoadAll(fiber.New())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
}
