package main

import (
	"fmt"

	"github.com/spf13/cobra"

	lens "github.com/anatolykoptev/go-lenster"
	"github.com/anatolykoptev/go-lenster/config"
	"github.com/anatolykoptev/go-lenster/logger"
	"github.com/anatolykoptev/go-lenster/og"
	"github.com/anatolykoptev/go-lenster/server"
	"github.com/anatolykoptev/go-lenster/store"
)

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "lenster",
		Short:         "Lenster web front: home page and profile meta images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to lenster.yaml")

	root.AddCommand(
		newServeCmd(&cfgPath),
		newRenderCmd(&cfgPath),
		newVersionCmd(),
	)
	return root
}

// app holds the components shared by serve and render.
type app struct {
	cfg       *config.Config
	client    *lens.Client
	store     store.Store
	generator *og.Generator
}

func setup(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, err
	}

	st, err := store.New(cfg.StoreConfig())
	if err != nil {
		return nil, err
	}

	cc := cfg.ClientConfig()
	cc.MetricsHook = server.UpstreamHook
	client, err := lens.NewClient(cc)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("lens client: %w", err)
	}

	gen := og.NewGenerator(client, og.Config{
		FontDir:      cfg.OG.FontDir,
		Store:        st,
		CacheTTL:     cfg.OG.CacheTTL,
		HandleSuffix: cfg.OG.HandleSuffix,
		Timeout:      cfg.OG.Timeout,
	})
	return &app{cfg: cfg, client: client, store: st, generator: gen}, nil
}
