package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jt828/promtext/internal/bootstrap"
	"github.com/jt828/promtext/internal/config"
	"github.com/jt828/promtext/internal/controller"
	"github.com/jt828/promtext/internal/handler"
	"github.com/jt828/promtext/internal/interceptor"
	"github.com/jt828/promtext/pkg/observability"
	"github.com/jt828/promtext/pkg/observability/implementation"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	configPath := flag.String("config", os.Getenv("PROMTEXT_CONFIG"), "path to a YAML config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	obs, err := implementation.NewObservability(ctx, implementation.Config{
		ServiceName:  cfg.ServiceName,
		Namespace:    "promtext",
		OTLPEndpoint: cfg.OTLPEndpoint,
		LogLevel:     cfg.LogLevel,
	})
	if err != nil {
		panic(err)
	}
	log := obs.Logger()
	reg := implementation.PromRegistry(obs.Meter())
	if reg == nil {
		log.Fatal("prometheus registry not available")
	}

	grpcMetrics := grpc_prometheus.NewServerMetrics()
	grpcMetrics.EnableHandlingTimeHistogram()
	reg.MustRegister(grpcMetrics)

	ledger, err := bootstrap.NewLedgerMetrics(cfg.Prefix, log)
	if err != nil {
		log.Fatal("failed to register ledger metrics", observability.Err(err))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		log.Info("Shutting down exporter...")
		cancel()
	}()

	workload := bootstrap.NewWorkload(ledger, cfg.WorkloadPeriod, uint64(time.Now().UnixNano()), log)
	go workload.Run(ctx)

	listenRetry := bootstrap.DefaultListenRetry()
	httpLis, err := bootstrap.Listen(ctx, listenRetry, cfg.HTTPAddr, log)
	if err != nil {
		log.Fatal("failed to listen", observability.String("addr", cfg.HTTPAddr), observability.Err(err))
	}
	scrape := handler.NewScrapeHandler(ledger.Set(), obs)
	httpServer := implementation.StartHTTPServer(
		httpLis,
		handler.Routes(cfg.MetricsPath, cfg.SelfMetricsPath, scrape, obs.Handler()),
		log,
	)
	log.Info("HTTP server running",
		observability.String("addr", httpServer.Addr),
		observability.String("metrics_path", cfg.MetricsPath),
	)

	lis, err := bootstrap.Listen(ctx, listenRetry, cfg.GRPCAddr, log)
	if err != nil {
		log.Fatal("failed to listen", observability.String("addr", cfg.GRPCAddr), observability.Err(err))
	}

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcMetrics.UnaryServerInterceptor(),
			interceptor.ErrorInterceptor(log),
		),
		grpc.ChainStreamInterceptor(
			grpcMetrics.StreamServerInterceptor(),
			interceptor.StreamErrorInterceptor(log),
		),
	)

	controller.RegisterExpositionServiceServer(server, controller.NewExpositionController(ledger.Sources()))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(controller.ExpositionServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	grpcMetrics.InitializeMetrics(server)

	go func() {
		log.Info("gRPC server running", observability.String("addr", cfg.GRPCAddr))
		if err := server.Serve(lis); err != nil {
			log.Fatal("failed to serve", observability.Err(err))
		}
	}()

	<-ctx.Done()
	log.Info("Graceful stopping servers...")
	healthServer.Shutdown()
	server.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop http server", observability.Err(err))
	}
	log.Info("Exporter stopped")

	if err := obs.Close(shutdownCtx); err != nil {
		log.Error("failed to close observability", observability.Err(err))
	}
}
