//go:build gcloud

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-practice-reminder/internal/config"
	"github.com/KasumiMercury/primind-practice-reminder/internal/infra/notifycenter"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability/logging"
)

func initNotifyCenter(ctx context.Context, cfg *config.Config, client *redis.Client) (*notifyBackend, error) {
	if cfg.Notify.Center != config.NotifyCenterCloudTasks {
		return newInProcessCenter(cfg, client), nil
	}

	center, err := notifycenter.NewCloudTasks(ctx, notifycenter.CloudTasksConfig{
		ProjectID:  cfg.CloudTask.GCloudProjectID,
		LocationID: cfg.CloudTask.GCloudLocationID,
		QueueID:    cfg.CloudTask.GCloudQueueID,
		TargetURL:  cfg.CloudTask.GCloudTargetURL,
		MaxRetries: cfg.CloudTask.MaxRetries,
		Location:   cfg.Notify.Location,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("notification center initialized",
		slog.String("type", "cloud_tasks"),
		slog.String("project", cfg.CloudTask.GCloudProjectID),
		slog.String("location", cfg.CloudTask.GCloudLocationID),
		slog.String("queue", cfg.CloudTask.GCloudQueueID),
	)

	cleanup := func() error {
		if err := center.Close(); err != nil {
			slog.Warn("failed to close cloud tasks client", slog.String("error", err.Error()))

			return err
		}

		return nil
	}

	return &notifyBackend{
		center:  center,
		shared:  true,
		deliver: center,
		close:   cleanup,
	}, nil
}

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	serviceName := os.Getenv("K_SERVICE")
	if serviceName == "" {
		serviceName = "practice-reminder"
	}

	env := logging.EnvProd
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = cfg.CloudTask.GCloudProjectID
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: os.Getenv("K_REVISION"),
		},
		Environment:   env,
		LogLevel:      cfg.LogLevel,
		GCPProjectID:  projectID,
		SamplingRate:  1.0,
		DefaultModule: moduleName,
	})
}
