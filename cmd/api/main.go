package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	v1 "github.com/rahmanfaizur/PulseChat/api/chat/v1"
	"github.com/rahmanfaizur/PulseChat/internal/auth"
	"github.com/rahmanfaizur/PulseChat/internal/chat"
	"github.com/rahmanfaizur/PulseChat/internal/config"
	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/data/memory"
	"github.com/rahmanfaizur/PulseChat/internal/db"
	"github.com/rahmanfaizur/PulseChat/internal/events"
	"github.com/rahmanfaizur/PulseChat/internal/logging"
	"github.com/rahmanfaizur/PulseChat/internal/metrics"
	"github.com/rahmanfaizur/PulseChat/internal/middleware"
)

// Flag variables.
var (
	configPath string

	tokenSubject, tokenEmail, tokenName, tokenPicture string
	tokenTTL                                          time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		jww.FATAL.Printf("%v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pulsechat",
	Short:         "Realtime direct and group messaging server",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC chat server and the health/metrics listener",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development identity token signed with the active key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ttl := cfg.JWT.TTL
		if tokenTTL > 0 {
			ttl = tokenTTL
		}
		tok, expiresAt, err := newJWTManager(cfg, ttl).GenerateToken(tokenSubject, tokenEmail, tokenName, tokenPicture)
		if err != nil {
			return err
		}
		jww.INFO.Printf("token for %s expires %s", tokenSubject, expiresAt.Format(time.RFC3339))
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Subject (external user id)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email claim")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "Display name claim")
	tokenCmd.Flags().StringVar(&tokenPicture, "picture", "", "Avatar URL claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to the configured TTL)")
	_ = tokenCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(serveCmd, tokenCmd)
}

// loadConfig loads, validates and applies the logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newJWTManager uses the key set when one is configured so tokens signed
// with a retired-but-listed key keep verifying.
func newJWTManager(cfg *config.Config, ttl time.Duration) *auth.JWTManager {
	if len(cfg.JWT.Keys) > 0 {
		return auth.NewJWTManagerFromKeys(cfg.JWT.Keys, cfg.JWT.ActiveKid, ttl)
	}
	return auth.NewJWTManager(cfg.JWT.Secret, ttl)
}

// backend is an opened store plus what the server needs around it.
type backend struct {
	stores chat.Stores
	ping   pinger
	close  func(context.Context) error
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StoreBackend == config.BackendMemory {
		jww.WARN.Printf("using the in-memory store; data is lost on exit")
		st := memory.New()
		return &backend{
			stores: chat.Stores{Users: st, Conversations: st, Members: st, Messages: st, Reactions: st, Tx: st},
			ping:   st,
			close:  func(context.Context) error { return nil },
		}, nil
	}

	dbClient, err := db.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to DB")
	}
	if err := dbClient.CreateIndexes(ctx); err != nil {
		_ = dbClient.Close(ctx)
		return nil, errors.Wrap(err, "failed to create indexes")
	}
	return &backend{
		stores: chat.Stores{
			Users:         data.NewUsersStore(dbClient.UsersCollection()),
			Conversations: data.NewConversationsStore(dbClient.ConversationsCollection()),
			Members:       data.NewMembersStore(dbClient.MembershipsCollection()),
			Messages:      data.NewMessagesStore(dbClient.MessagesCollection()),
			Reactions:     data.NewReactionsStore(dbClient.ReactionsCollection()),
			Tx:            dbClient,
		},
		ping:  dbClient,
		close: dbClient.Close,
	}, nil
}

// rateLimited lists the writes that are rate limited per caller. Presence
// and typing heartbeats are exempt.
var rateLimited = map[string]bool{
	v1.FullMethod("SyncIdentity"):                  true,
	v1.FullMethod("GetOrCreateDirectConversation"): true,
	v1.FullMethod("CreateGroupConversation"):       true,
	v1.FullMethod("SendMessage"):                   true,
	v1.FullMethod("ForwardMessage"):                true,
	v1.FullMethod("DeleteMessage"):                 true,
	v1.FullMethod("MarkRead"):                      true,
	v1.FullMethod("ToggleReaction"):                true,
}

// newGRPCServer assembles server options and chains interceptors:
// metrics -> auth -> rate limiter. The limiter keys on the verified
// subject, so it has to run after auth.
func newGRPCServer(cfg *config.Config, jwtMgr *auth.JWTManager, m *metrics.Metrics, limiter *middleware.LimiterStore) (*grpc.Server, error) {
	var serverOpts []grpc.ServerOption

	// If TLS certs are configured, create server credentials and require TLS
	if cfg.TLS.Cert != "" && cfg.TLS.Key != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLS.Cert, cfg.TLS.Key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load TLS certs")
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
	} else if cfg.TLS.Require {
		return nil, errors.New("REQUIRE_TLS is true but TLS_CERT/TLS_KEY are not configured")
	}

	serverOpts = append(serverOpts,
		grpc.ChainUnaryInterceptor(
			m.UnaryInterceptor(),
			authUnaryInterceptor(jwtMgr),
			middleware.RateLimitUnaryInterceptor(limiter, rateLimited),
		),
		grpc.ChainStreamInterceptor(
			m.StreamInterceptor(),
			authStreamInterceptor(jwtMgr),
		),
	)
	return grpc.NewServer(serverOpts...), nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = be.close(context.Background())
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Change events reach local streams through the bus. With Valkey
	// configured they go through the shared channel first so every
	// instance sees them.
	bus := events.NewBus()
	hub := NewConnectionHub()
	defer bus.Subscribe(hub.Deliver)()

	var publisher events.Publisher = bus
	if len(cfg.ValkeyAddrs) > 0 {
		broker, err := events.NewValkeyBroker(cfg.ValkeyAddrs, cfg.ValkeyChannel, bus)
		if err != nil {
			return err
		}
		defer broker.Close()
		go func() {
			if err := broker.Run(ctx); err != nil {
				jww.ERROR.Printf("event relay stopped: %v", err)
			}
		}()
		publisher = broker
	}

	svc := chat.NewService(be.stores, chat.WithPublisher(m.Publisher(publisher)))

	limiter := middleware.NewLimiterStore(cfg.RateLimitRPM, cfg.RateLimitBurst, time.Minute)
	defer limiter.Stop()

	grpcServer, err := newGRPCServer(cfg, newJWTManager(cfg, cfg.JWT.TTL), m, limiter)
	if err != nil {
		return err
	}
	registerService(grpcServer, newServer(svc, hub))

	listenAddr := fmt.Sprintf(":%s", cfg.Port)
	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", listenAddr)
	}

	httpSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           newHTTPHandler(be.ping, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		jww.INFO.Printf("gRPC server listening on %s", listenAddr)
		errCh <- errors.Wrap(grpcServer.Serve(lis), "gRPC server exit")
	}()
	if cfg.MetricsAddr != "" {
		go func() {
			jww.INFO.Printf("health/metrics listening on %s", cfg.MetricsAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- errors.Wrap(err, "http server exit")
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err = <-errCh:
		jww.ERROR.Printf("%v", err)
	}

	jww.INFO.Printf("shutting down")
	hub.Close()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	return err
}
