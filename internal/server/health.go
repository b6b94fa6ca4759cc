package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/events"
)

// TrainerService is the health service name reporting training activity
const TrainerService = "treasure.Trainer"

const defaultStopTimeout = 5 * time.Second

// Config controls the health endpoint
type Config struct {
	Address          string
	EnableReflection bool
	ShutdownDelay    time.Duration // time between NOT_SERVING and GracefulStop
	StopTimeout      time.Duration // open streams are closed after this; 0 means 5s
}

// HealthServer exposes the standard gRPC health protocol for a training run.
// The overall status is SERVING until shutdown; TrainerService is SERVING
// only while a trainer is in its training phase.
type HealthServer struct {
	config Config
	grpc   *grpc.Server
	health *health.Server
	logger zerolog.Logger
}

// NewHealthServer creates a gRPC server with health checking registered
func NewHealthServer(cfg Config, logger zerolog.Logger) *HealthServer {
	hs := &HealthServer{
		config: cfg,
		health: health.NewServer(),
		logger: logger.With().Str("component", "health_server").Logger(),
	}

	hs.grpc = grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			hs.loggingInterceptor,
			hs.recoveryInterceptor,
		),
		grpc.ChainStreamInterceptor(
			hs.streamLoggingInterceptor,
			hs.streamRecoveryInterceptor,
		),
	)
	grpc_health_v1.RegisterHealthServer(hs.grpc, hs.health)

	hs.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.health.SetServingStatus(TrainerService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	if cfg.EnableReflection {
		reflection.Register(hs.grpc)
		hs.logger.Info().Msg("gRPC reflection enabled")
	}
	return hs
}

// Attach follows trainer phase transitions published on bus
func (hs *HealthServer) Attach(bus *events.EventBus) {
	bus.OnPhaseTransition("health_server", func(e *events.PhaseTransitionEvent) {
		hs.SetTraining(e.To == "Training")
	})
}

// SetTraining flips the trainer service status
func (hs *HealthServer) SetTraining(active bool) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if active {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	hs.health.SetServingStatus(TrainerService, st)
	hs.logger.Debug().
		Str("service", TrainerService).
		Str("status", st.String()).
		Msg("Health status updated")
}

// Serve accepts connections on lis until Stop or Shutdown
func (hs *HealthServer) Serve(lis net.Listener) error {
	hs.logger.Info().Str("address", lis.Addr().String()).Msg("gRPC health server listening")
	if err := hs.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address and serves until ctx is
// done, then shuts down gracefully
func (hs *HealthServer) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", hs.config.Address)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		hs.Shutdown()
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// Shutdown reports NOT_SERVING, waits the configured delay for in-flight
// checks, then stops gracefully. Watch streams never finish on their own, so
// connections still open after the stop timeout are closed.
func (hs *HealthServer) Shutdown() {
	hs.health.Shutdown()
	if hs.config.ShutdownDelay > 0 {
		time.Sleep(hs.config.ShutdownDelay)
	}

	timeout := hs.config.StopTimeout
	if timeout <= 0 {
		timeout = defaultStopTimeout
	}

	hs.logger.Info().Dur("timeout", timeout).Msg("Gracefully stopping gRPC health server")
	stopped := make(chan struct{})
	go func() {
		hs.grpc.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-stopped:
	case <-timer.C:
		hs.logger.Warn().Dur("timeout", timeout).Msg("Graceful stop timed out, closing open streams")
		hs.grpc.Stop()
	}
}

// Stop closes all connections immediately
func (hs *HealthServer) Stop() {
	hs.grpc.Stop()
}

// loggingInterceptor logs all unary RPC calls
func (hs *HealthServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			code = st.Code()
		}
	}

	hs.logger.Debug().
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("gRPC call")

	return resp, err
}

// recoveryInterceptor catches panics and returns proper gRPC errors
func (hs *HealthServer) recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			hs.logger.Error().
				Str("method", info.FullMethod).
				Interface("panic", r).
				Msg("Recovered from panic in gRPC handler")
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}

// streamLoggingInterceptor logs all streaming RPC calls, such as health Watch
func (hs *HealthServer) streamLoggingInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)

	code := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			code = st.Code()
		}
	}

	hs.logger.Debug().
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", time.Since(start)).
		Bool("is_client_stream", info.IsClientStream).
		Bool("is_server_stream", info.IsServerStream).
		Err(err).
		Msg("gRPC stream")

	return err
}

// streamRecoveryInterceptor catches panics in streaming handlers
func (hs *HealthServer) streamRecoveryInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			hs.logger.Error().
				Str("method", info.FullMethod).
				Interface("panic", r).
				Msg("Recovered from panic in gRPC stream handler")
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(srv, ss)
}
