package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/formkit-api/internal/config"
	"github.com/noah-isme/formkit-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Components  map[string]string `json:"components,omitempty"`
}

// HealthProbe reports the state of one backing dependency.
type HealthProbe func(c *fiber.Ctx) error

// HealthCheck returns a handler that reports application health information. A failing probe
// marks the component as down and degrades the overall status without failing the request.
func HealthCheck(cfg config.Config, probes map[string]HealthProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		if len(probes) > 0 {
			payload.Components = make(map[string]string, len(probes))
			for name, probe := range probes {
				if err := probe(c); err != nil {
					payload.Components[name] = "down"
					payload.Status = "degraded"
					continue
				}
				payload.Components[name] = "up"
			}
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
