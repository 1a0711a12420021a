package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/saferoute-app/saferoute-server/internal/apis"
	"github.com/saferoute-app/saferoute-server/internal/config"
	"github.com/saferoute-app/saferoute-server/internal/db"
	"github.com/saferoute-app/saferoute-server/internal/events"
	"github.com/saferoute-app/saferoute-server/internal/metrics"
	"github.com/saferoute-app/saferoute-server/internal/notifications"
	"github.com/saferoute-app/saferoute-server/internal/server"
	"github.com/saferoute-app/saferoute-server/internal/storage"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"golang.org/x/sync/errgroup"
)

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "saferoute-server",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(cmd)
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	slog.Info("saferoute-server", "version", cmd.Annotations["version"], "commit", cmd.Annotations["commit"])

	cfg, err := config.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = nats.Connect(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsConn.Close()
	}

	database, err := db.MakeDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to make database: %w", err)
	}
	slog.Info("Database connection established")

	uploads, err := storage.NewStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to open uploads storage: %w", err)
	}
	defer uploads.Close()

	maps := apis.NewMapsClient(cfg.Google.APIKey, cfg.Google.Language, redisClient)
	serverMetrics := metrics.NewMetrics()

	slog.Info("Starting HTTP server")
	httpServer := server.NewServer(cfg, database, redisClient, maps, serverMetrics, uploads)
	err = httpServer.Start()
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	workerCtx, cancelWorkers := context.WithCancel(cmd.Context())
	bus := events.NewEventBus(natsConn, httpServer.NavigationSocket())
	if err := bus.Start(workerCtx); err != nil {
		cancelWorkers()
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	reminders := notifications.NewWorker(database, bus, time.Duration(cfg.Notifications.LeadMinutes)*time.Minute)
	go reminders.Run(workerCtx)

	stop := func(_ os.Signal) {
		slog.Info("Shutting down")

		cancelWorkers()
		bus.Stop()

		errGrp := errgroup.Group{}

		errGrp.Go(func() error {
			return httpServer.Stop()
		})

		err := errGrp.Wait()
		if err != nil {
			slog.Error("Shutdown error", "error", err.Error())
		}
		slog.Info("Shutdown complete")
	}

	if cmd.Annotations["version"] == "testing" {
		doneChannel := make(chan struct{})
		go func() {
			slog.Info("Sleeping for 5 seconds")
			time.Sleep(5 * time.Second)
			slog.Info("Sending SIGTERM")
			stop(syscall.SIGTERM)
			doneChannel <- struct{}{}
		}()
		<-doneChannel
	} else {
		shutdown.AddWithParam(stop)
		shutdown.Listen(syscall.SIGINT, syscall.SIGKILL, syscall.SIGTERM, syscall.SIGQUIT)
	}

	return nil
}
