package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/carverauto/azure-inventory/pkg/azcli"
	"github.com/carverauto/azure-inventory/pkg/cache"
	"github.com/carverauto/azure-inventory/pkg/config"
	"github.com/carverauto/azure-inventory/pkg/inventory"
	"github.com/carverauto/azure-inventory/pkg/logger"
	"github.com/carverauto/azure-inventory/pkg/mde"
	"github.com/carverauto/azure-inventory/pkg/models"
	"github.com/carverauto/azure-inventory/pkg/resourcegraph"
)

const defaultCacheFile = ".azure_inventory_cache.json"

func main() {
	configPath := flag.String("config", "", "Path to config file (optional, defaults apply without one)")
	flag.Bool("list", false, "Emit the full inventory document (default behavior)")
	host := flag.String("host", "", "Emit hostvars for a single host")
	refresh := flag.Bool("refresh", false, "Bypass the cache for this run")
	flag.Parse()

	ctx := context.Background()

	var cfg inventory.Config

	if *configPath != "" {
		cfgLoader := config.NewConfig(nil)
		if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	} else if err := cfg.Validate(); err != nil {
		log.Fatalf("Failed to apply default config: %v", err)
	}

	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// The cache path default is resolved here, once, so the engine never
	// reaches into home-directory state itself.
	if cfg.CachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			zlog.Warn().Err(err).Msg("Could not resolve home directory, caching disabled for this run")
		} else {
			cfg.CachePath = filepath.Join(home, defaultCacheFile)
		}
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	runner := azcli.NewCLIRunner(cfg.AzureBinary, timeout, zlog)

	svc := inventory.NewService(
		resourcegraph.NewClient(runner, cfg.PageSize, cfg.MaxPages, zlog),
		mde.NewResolver(runner, cfg.PageSize, cfg.MaxPages, zlog),
		cache.New(cfg.CachePath, time.Duration(cfg.CacheTTLSeconds)*time.Second, nil, zlog),
		inventory.Options{
			AppliancePublishers: cfg.AppliancePublishers,
			DefaultOSGroup:      cfg.DefaultOSGroup,
		},
		zlog,
	)

	data, err := svc.Run(ctx, *refresh)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Inventory run failed")
	}

	if *host != "" {
		emitHostVars(zlog, data, *host)
		return
	}

	fmt.Println(string(data))
}

// emitHostVars prints a single host's variables, honoring Ansible's
// --host protocol. The document keeps everything under _meta so this is
// only a compatibility shim; unknown hosts get an empty object.
func emitHostVars(zlog logger.Logger, data []byte, host string) {
	var doc models.Document

	if err := json.Unmarshal(data, &doc); err != nil {
		zlog.Warn().Err(err).Msg("Could not parse inventory document for --host lookup")
		fmt.Println("{}")

		return
	}

	hv, ok := doc.Meta.HostVars[host]
	if !ok {
		fmt.Println("{}")
		return
	}

	out, err := json.MarshalIndent(hv, "", "  ")
	if err != nil {
		fmt.Println("{}")
		return
	}

	fmt.Println(string(out))
}
