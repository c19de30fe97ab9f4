package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goran-ethernal/RWAListener/internal/common"
	"github.com/goran-ethernal/RWAListener/internal/config"
	"github.com/goran-ethernal/RWAListener/internal/db"
	blockfetcher "github.com/goran-ethernal/RWAListener/internal/fetcher"
	"github.com/goran-ethernal/RWAListener/internal/listener"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/metrics"
	"github.com/goran-ethernal/RWAListener/internal/migrations"
	"github.com/goran-ethernal/RWAListener/internal/rpc"
	"github.com/goran-ethernal/RWAListener/pkg/api"
	pkgconfig "github.com/goran-ethernal/RWAListener/pkg/config"
	pkglistener "github.com/goran-ethernal/RWAListener/pkg/listener"
	"github.com/goran-ethernal/RWAListener/pkg/processor"

	// Import built-in processors to register them
	_ "github.com/goran-ethernal/RWAListener/internal/processors/identityregistry"
	_ "github.com/goran-ethernal/RWAListener/internal/processors/market"
	_ "github.com/goran-ethernal/RWAListener/internal/processors/mintfund"
	_ "github.com/goran-ethernal/RWAListener/internal/processors/multiyielder"
	_ "github.com/goran-ethernal/RWAListener/internal/processors/offchainrewards"
	_ "github.com/goran-ethernal/RWAListener/internal/processors/p2ptrading"
	_ "github.com/goran-ethernal/RWAListener/internal/processors/securitysft"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║          RWA Listener v%s              ║
║   Concordium security token projections   ║
╚═══════════════════════════════════════════╝
`
)

var (
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "listener",
	Short: "RWA Listener - Concordium security token events listener",
	Long: `RWA Listener follows finalized Concordium blocks, decodes the events of the
security token contracts it is configured for and keeps a relational projection
of their state. Every block is applied atomically together with the checkpoint.`,
	Version: version,
	RunE:    runListener,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available processor types",
	Long:  `List all registered processor types that can be used in the configuration file.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available processor types:")
		types := processor.ListRegistered()
		if len(types) == 0 {
			fmt.Println("  (no processors registered)")
			return
		}
		for _, t := range types {
			fmt.Printf("  - %s\n", t)
		}
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := jsonschema.Reflect(&pkgconfig.Config{})

		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}

		fmt.Println(string(out))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the checkpoint and the number of tracked contracts",
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.AddCommand(listCmd, schemaCmd, statusCmd)
}

// componentLogger returns the logger of a component with its configured level.
func componentLogger(cfg *pkgconfig.Config, component string) *logger.Logger {
	if cfg.Logging == nil {
		return logger.NewComponentLoggerFromConfig(component, nil)
	}
	return logger.NewComponentLoggerFromConfig(component, cfg.Logging)
}

// openDatabase opens the configured database and applies the core migrations.
func openDatabase(cfg *pkgconfig.Config, log *logger.Logger) (*sql.DB, error) {
	database, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(log, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

func runListener(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := componentLogger(cfg, common.ComponentListener)

	database, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	if len(cfg.Processors) == 0 {
		log.Warn("No processors configured. Exiting.")
		return nil
	}

	// Processors create their own tables on construction
	log.Infof("Creating %d processor(s)...", len(cfg.Processors))
	dispatch, err := processor.BuildDispatchTable(cfg.Processors, database,
		componentLogger(cfg, common.ComponentProcessor))
	if err != nil {
		return fmt.Errorf("failed to create processors: %w", err)
	}
	for _, p := range dispatch.ListAll() {
		log.Infof("✓ Registered processor: %s (type: %s, module: %s)", p.Name(), p.Type(), p.ModuleRef())
	}

	log.Info("Connecting to Concordium node...")
	nodeClient, err := rpc.NewClient(ctx, cfg.Listener, componentLogger(cfg, common.ComponentRPC))
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}
	defer nodeClient.Close()
	log.Infof("Connected to Concordium node: %s", cfg.Listener.NodeURL)

	dbMaintenance := db.NewMaintenanceCoordinator(
		cfg.DB.Path,
		database,
		cfg.Maintenance,
		componentLogger(cfg, common.ComponentMaintenance),
	)
	if err := dbMaintenance.Start(ctx); err != nil {
		return fmt.Errorf("failed to start database maintenance: %w", err)
	}
	defer func() {
		if err := dbMaintenance.Stop(); err != nil {
			log.Warnf("Failed to stop database maintenance: %v", err)
		}
	}()

	var notifier pkglistener.Notifier
	if cfg.Notifier != nil && cfg.Notifier.Enabled {
		kafka, err := listener.NewKafkaNotifier(cfg.Notifier, componentLogger(cfg, common.ComponentNotifier))
		if err != nil {
			return fmt.Errorf("failed to create notifier: %w", err)
		}
		notifier = kafka
		log.Infof("Publishing block notifications to topic %s", cfg.Notifier.Topic)
	}

	fetcher := blockfetcher.NewBlockFetcher(nodeClient, cfg.Listener.PollInterval.Duration,
		componentLogger(cfg, common.ComponentFetcher))

	l, err := listener.New(cfg.Listener, database, fetcher, dispatch, dbMaintenance, notifier, log)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	defer l.Close()

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics, log)
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			if err := metricsServer.Stop(context.WithoutCancel(ctx)); err != nil {
				log.Warnf("Failed to stop metrics server: %v", err)
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, dispatch, l.Registry(), l.Checkpoints(), log)
		g.Go(func() error {
			return apiServer.Start(gctx)
		})
	}

	log.Info("Starting RWA Listener...")
	g.Go(func() error {
		return l.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("listener failed: %w", err)
	}

	log.Info("RWA Listener stopped successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	log := componentLogger(cfg, common.ComponentCheckpoint)

	database, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	cp, err := listener.NewCheckpointStore(database, log, &db.NoOpMaintenance{}).Load(ctx)
	if err != nil {
		return err
	}

	registry := listener.NewRegistry(database, 1, log)
	defer registry.Close()

	count, err := registry.Count(ctx)
	if err != nil {
		return err
	}

	if cp == nil {
		fmt.Println("Checkpoint:        none (no block processed yet)")
	} else {
		fmt.Printf("Checkpoint:        block %d (%s)\n", cp.BlockHeight, cp.BlockHash)
		fmt.Printf("Block slot time:   %s\n", cp.BlockSlotTime.UTC().Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated at:        %s\n", cp.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Tracked contracts: %d\n", count)

	return nil
}
