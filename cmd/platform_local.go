//go:build !gcloud

package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-practice-reminder/internal/config"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability/logging"
)

func initNotifyCenter(_ context.Context, cfg *config.Config, client *redis.Client) (*notifyBackend, error) {
	if cfg.Notify.Center == config.NotifyCenterCloudTasks {
		return nil, cfg.CloudTask.Validate()
	}
	return newInProcessCenter(cfg, client), nil
}

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "practice-reminder"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: "",
		},
		Environment:   env,
		LogLevel:      cfg.LogLevel,
		GCPProjectID:  "",
		SamplingRate:  1.0,
		DefaultModule: moduleName,
	})
}
