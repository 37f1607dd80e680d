package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/marketd/internal/config"
	"github.com/LeJamon/marketd/internal/core/market"
	"github.com/LeJamon/marketd/internal/core/registry"
	"github.com/LeJamon/marketd/internal/crypto"
	"github.com/LeJamon/marketd/internal/log"
	"github.com/LeJamon/marketd/internal/rpc"
	"github.com/LeJamon/marketd/internal/storage/database"
	"github.com/LeJamon/marketd/internal/storage/journal"
	"github.com/LeJamon/marketd/internal/storage/store"
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the marketplace daemon",
	Long: `Start the marketd server: opens the ledger store and journal, restores
the marketplace state, and serves JSON-RPC plus websocket event streams.

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Running marketd with no subcommand starts the server.
	rootCmd.RunE = serverCmd.RunE
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if debug {
		cfg.Log.Debug = true
	}

	logger, sync, err := log.NewLogger(cfg.Log.File, cfg.Log.Debug, cfg.Log.SentryDSN)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer sync()

	if !quiet {
		fmt.Println("Starting marketd - NFT marketplace ledger")
		if cfg.GetConfigPath() != "" {
			fmt.Printf("  config:   %s\n", cfg.GetConfigPath())
		}
		fmt.Printf("  store:    %s (%s)\n", cfg.Database.Path, cfg.Database.Backend)
		fmt.Printf("  JSON-RPC: http://%s:%d/\n", cfg.Server.RPCHost, cfg.Server.RPCPort)
		if cfg.Server.WSEnabled {
			fmt.Printf("  streams:  ws://%s:%d/\n", cfg.Server.WSHost, cfg.Server.WSPort)
		}
	}

	// Ledger store.
	db, err := store.OpenDatabase(database.Backend(cfg.Database.Backend), cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	st, err := store.New(db, store.Config{
		CacheSize:   cfg.Database.CacheSize,
		Compression: cfg.Database.Compression,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Audit journal.
	var jrnl *journal.Journal
	if cfg.Journal.Enabled {
		jcfg := journal.DefaultConfig(cfg.Journal.DSN)
		jcfg.Driver = cfg.Journal.Driver
		jrnl, err = journal.New(jcfg)
		if err != nil {
			return err
		}
		if err := jrnl.Open(ctx); err != nil {
			return err
		}
		defer jrnl.Close()
	}

	operator, err := crypto.ParseAccountID(cfg.Market.Operator)
	if err != nil {
		return err
	}
	marketID, err := crypto.ParseAccountID(cfg.Market.MarketID)
	if err != nil {
		return err
	}

	// Websocket event streams.
	var wsServer *rpc.WebSocketServer
	engineOpts := []market.Option{market.WithLogger(logger.Named("engine"))}
	if cfg.Server.WSEnabled {
		wsServer = rpc.NewWebSocketServer(logger.Named("ws"))
		engineOpts = append(engineOpts, market.WithPublisher(wsServer))
	}
	if jrnl != nil {
		engineOpts = append(engineOpts, market.WithJournal(jrnl))
	}

	engine, err := market.NewEngine(st, registry.Ledger{}, market.Config{
		Operator: operator,
		MarketID: marketID,
		FeeBps:   cfg.Market.FeeBps,
	}, engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	rpcOpts := []rpc.Option{
		rpc.WithLogger(logger.Named("rpc")),
		rpc.WithAdmin(cfg.Server.AdminEnabled),
	}
	if jrnl != nil {
		rpcOpts = append(rpcOpts, rpc.WithJournal(jrnl))
	}
	rpcServer := rpc.NewServer(engine, st, rpcOpts...)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rpcServer.ListenAndServe(ctx, fmt.Sprintf("%s:%d", cfg.Server.RPCHost, cfg.Server.RPCPort))
	})
	if wsServer != nil {
		g.Go(func() error {
			return wsServer.ListenAndServe(ctx, fmt.Sprintf("%s:%d", cfg.Server.WSHost, cfg.Server.WSPort))
		})
	}

	logger.Info("marketd started",
		zap.String("operator", operator.String()),
		zap.String("market_id", marketID.String()))

	return g.Wait()
}
