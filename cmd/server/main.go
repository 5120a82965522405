package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jtorres/go-chatline/internal/api"
	"github.com/jtorres/go-chatline/internal/config"
	"github.com/jtorres/go-chatline/internal/database"
	"github.com/jtorres/go-chatline/internal/media"
	"github.com/jtorres/go-chatline/internal/server"
	"github.com/jtorres/go-chatline/internal/stats"
	_ "github.com/lib/pq"
)

const defaultSigningKey = "Zm9vYmFyYmF6cXV4Zm9vYmFyYmF6cXV4Zm9vYmFyYmE="

// statusSweepInterval is how often expired statuses are evicted.
const statusSweepInterval = 15 * time.Minute

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr             string
	dsn              string
	signingKey       string
	allowedOrigins   stringSliceFlag
	cloudinaryName   string
	cloudinaryKey    string
	cloudinarySecret string
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.StringVar(&cloudinaryName, "cloudinary-name", os.Getenv("CLOUDINARY_CLOUD_NAME"), "cloudinary cloud name")
	flag.StringVar(&cloudinaryKey, "cloudinary-key", os.Getenv("CLOUDINARY_API_KEY"), "cloudinary api key")
	flag.StringVar(&cloudinarySecret, "cloudinary-secret", os.Getenv("CLOUDINARY_API_SECRET"), "cloudinary api secret")
	flag.Parse()

	logger := log.New(os.Stderr, "[chatline] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins, config.MediaConfig{
		CloudName: cloudinaryName,
		ApiKey:    cloudinaryKey,
		ApiSecret: cloudinarySecret,
	})
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgChatRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if err := dbConn.Migrate(); err != nil {
		logger.Fatal("db migrate:", err)
	}

	uploader, err := media.NewCloudinaryUploader(logger, cfg.Media)
	if err != nil {
		logger.Fatal("uploader:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	gateway, err := server.NewGateway(logger, dbConn, uploader, statsUpdater)
	if err != nil {
		logger.Fatal("new gateway:", err)
	}

	srv := api.NewChatApp(mux, logger, gateway, dbConn, uploader, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go gateway.Run()

	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(statusSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := dbConn.DeleteExpiredStatuses()
				if err != nil {
					logger.Println("status sweep:", err)
				} else if n > 0 {
					logger.Printf("status sweep: evicted %d expired statuses", n)
				}
			case <-sweepDone:
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	close(sweepDone)

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down gateway...")
	if err := gateway.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("gateway shutdown:", err)
	}

	logger.Println("shutdown complete")
}
