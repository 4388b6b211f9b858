package tracing

import (
	"fmt"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
)

// HoneycombSetup configures the OpenTelemetry SDK with the honeycomb distro.
// HONEYCOMB_API_KEY and OTEL_SERVICE_NAME are read from the environment by otelconfig.
// The returned func flushes and shuts the exporters down.
func HoneycombSetup(enabled bool, serviceName string, rdb *redis.Client) (func(), error) {
	if !enabled {
		log.Debugf("tracing disabled for [%s]", serviceName)
		return func() {}, nil
	}

	// enable multi-span attributes
	bsp := honeycomb.NewBaggageSpanProcessor()

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
		otelconfig.WithSpanProcessor(bsp),
	)
	if err != nil {
		return nil, fmt.Errorf("configure open telemetry: %w", err)
	}

	if rdb != nil {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	log.Infof("honeycomb tracing set up for [%s]", serviceName)
	return otelShutdown, nil
}
