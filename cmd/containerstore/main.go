package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dsmirnov/containerstore/internal/collector"
	"github.com/dsmirnov/containerstore/internal/config"
	"github.com/dsmirnov/containerstore/internal/containers"
	"github.com/dsmirnov/containerstore/internal/logging"
	"github.com/dsmirnov/containerstore/internal/server"
	"github.com/dsmirnov/containerstore/internal/store"
	"github.com/dsmirnov/containerstore/internal/util"
)

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [flags] command", os.Args[0]),
		Short: "Named container store",
		Long: heredoc.Doc(`
			containerstore keeps named containers as isolated directories under
			a common root. Containers are resolved or created by identifier and
			addressed by filesystem path. App-data containers use reverse-DNS
			identifiers.
		`),
		Args: cobra.NoArgs,

		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
	}

	persistentFlags := cmd.PersistentFlags()
	persistentFlags.String("root", cfg.Root, "store root directory")
	persistentFlags.Bool("devel", false, "enable development logging")

	cmd.AddCommand(makeResolveCommand(), makeListCommand(), makeServeCommand(cfg))

	return cmd.Execute()
}

func makeResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve identifier",
		Short: "Resolve or create a container by identifier",
		Args:  cobra.ExactArgs(1),

		Run: func(cmd *cobra.Command, args []string) {
			if err := executeResolve(cmd, args[0]); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().Bool("create", false, "create the container if it doesn't exist")
	cmd.Flags().Bool("app-data", false, "operate on app-data containers")

	return cmd
}

func executeResolve(cmd *cobra.Command, id string) error {
	flags := cmd.Flags()

	create, err := flags.GetBool("create")
	if err != nil {
		return err
	}

	appData, err := flags.GetBool("app-data")
	if err != nil {
		return err
	}

	class := containers.ClassGeneric
	if appData {
		class = containers.ClassAppData
	}

	logger, root, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // Always fails to sync stderr
	}()

	registry, err := store.NewRegistry(root)
	if err != nil {
		return err
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Errorf("Failed to close the container store: %s.", err)
		}
	}()

	container, existed, err := registry.Resolve(context.Background(), class, id, create)
	if err != nil {
		return err
	}

	logger.Debugf("Resolved container: %s", litter.Sdump(container))

	state := "created"
	if existed {
		state = "existing"
	}
	fmt.Printf("%s (%s)\n", container.Path, state)

	return nil
}

func makeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered containers",
		Args:  cobra.NoArgs,

		Run: func(cmd *cobra.Command, args []string) {
			if err := executeList(cmd); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
				os.Exit(1)
			}
		},
	}
}

func executeList(cmd *cobra.Command) error {
	logger, root, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // Always fails to sync stderr
	}()

	containerStore, err := store.New(root)
	if err != nil {
		return err
	}
	defer func() {
		if err := containerStore.Close(); err != nil {
			logger.Errorf("Failed to close the container store: %s.", err)
		}
	}()

	entries, err := containerStore.List(context.Background())
	if err != nil {
		return err
	}

	for _, entry := range entries {
		container := entry.Container
		fmt.Printf("%-9s %-12s %-40s %s\n",
			util.Title(string(container.Class)), entry.CreatedAt.Format(time.DateOnly),
			container.Identifier, container.Path)
	}

	return nil
}

func makeServeCommand(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the store metrics endpoint",
		Args:  cobra.NoArgs,

		Run: func(cmd *cobra.Command, args []string) {
			if err := executeServe(cmd); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().String("listen", cfg.Listen, "address to serve metrics on")

	return cmd
}

func executeServe(cmd *cobra.Command) error {
	listen, err := cmd.Flags().GetString("listen")
	if err != nil {
		return err
	}

	logger, root, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // Always fails to sync stderr
	}()

	containerStore, err := store.New(root)
	if err != nil {
		return err
	}
	defer func() {
		if err := containerStore.Close(); err != nil {
			logger.Errorf("Failed to close the container store: %s.", err)
		}
	}()

	prometheus.MustRegister(collector.NewCollector(logger, containerStore))

	return server.Start(logger, listen)
}

func setup(cmd *cobra.Command) (*zap.SugaredLogger, string, error) {
	flags := cmd.Flags()

	root, err := flags.GetString("root")
	if err != nil {
		return nil, "", err
	}

	develMode, err := flags.GetBool("devel")
	if err != nil {
		return nil, "", err
	}

	logger, err := logging.Configure(develMode)
	if err != nil {
		return nil, "", err
	}

	return logger, root, nil
}

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
		os.Exit(1)
	}
}
