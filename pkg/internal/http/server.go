package http

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/http/admin"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/http/api"
)

type App struct {
	app *fiber.App
}

func NewServer() *App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          "HoarderGateway",
		AppName:               "Hoarder Gateway v1",
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             256 * 1024 * 1024,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("elapsed", time.Since(start)).
			Msg("Handled a request.")
		return err
	})

	MapProxies(app)
	api.MapAPIs(app, "/api")
	admin.MapControllers(app, "/admin")

	return &App{app}
}

// errorHandler translates backend error codes the handlers did not map
// themselves. Domain-validation errors keep their code and details so the
// surface can render field-level feedback.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}

	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": invalid.Error()})
	}

	switch code := graph.CodeOf(err); {
	case code == graph.CodeNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case code == graph.CodeDomainValidation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
			"code":    code,
		})
	case errors.Is(err, graph.ErrMissingPayload), errors.Is(err, graph.ErrBackendUnreachable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}

func (v *App) Listen() {
	if err := v.app.Listen(viper.GetString("bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting server...")
	}
}
