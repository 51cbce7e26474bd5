package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	"bottlesmith/internal/bottles"
	"bottlesmith/internal/config"
	"bottlesmith/internal/deps"
	"bottlesmith/internal/installer"
	"bottlesmith/internal/journal"
	"bottlesmith/internal/logx"
	"bottlesmith/internal/orchestrator"
	"bottlesmith/internal/paths"
	"bottlesmith/internal/shortcut"
)

// baseServices is the always-available part of the stack: everything that
// works without a Bottles installation on the machine.
type baseServices struct {
	paths    paths.DataPaths
	cfg      config.Config
	logger   *log.Logger
	logFile  io.Closer
	catalog  *deps.Catalog
	resolver *deps.Resolver
	sidecar  *shortcut.Sidecar
}

// services is the full stack, wired against a detected Bottles installation.
type services struct {
	baseServices

	gateway   *bottles.Gateway
	shortcuts *shortcut.Manager
	journal   *journal.Store
	file      *installer.FileInstaller
	folder    *installer.FolderInstaller
	orch      *orchestrator.Service
}

func openBase() (*baseServices, error) {
	pp, err := paths.Resolve(dataDir)
	if err != nil {
		return nil, err
	}
	if err := pp.EnsureDirs(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, logFile, err := logx.New(pp)
	if err != nil {
		return nil, err
	}

	catalog := deps.Builtin()
	overlay := cfg.Catalog.OverlayFile
	if overlay == "" {
		overlay = pp.CatalogFile
	}
	if err := catalog.LoadOverlay(overlay); err != nil {
		logFile.Close()
		return nil, err
	}

	resolver, err := deps.NewResolver(catalog)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	return &baseServices{
		paths:    pp,
		cfg:      cfg,
		logger:   logger,
		logFile:  logFile,
		catalog:  catalog,
		resolver: resolver,
		sidecar:  shortcut.NewSidecar(pp.SidecarFile),
	}, nil
}

func (b *baseServices) Close() {
	if b.logFile != nil {
		b.logFile.Close()
	}
}

// openServices builds the full install stack, probing for a Bottles
// installation first.
func openServices(ctx context.Context) (*services, error) {
	base, err := openBase()
	if err != nil {
		return nil, err
	}

	cmds, err := bottles.Detect(ctx, nil, base.cfg.Bottles.Flavor)
	if err != nil {
		base.Close()
		return nil, err
	}
	base.logger.Printf("detected bottles installation: flavor=%s", cmds.Flavor)

	gateway := bottles.NewGateway(base.cfg, base.paths, cmds, nil, base.logger)
	shortcuts := shortcut.NewManager(
		base.sidecar,
		bottles.ShortcutStore{Gateway: gateway},
		base.logger,
		base.cfg.ShortcutPollWindow(),
	)

	store, err := journal.Open(base.paths.JournalFile)
	if err != nil {
		base.Close()
		return nil, err
	}

	file := &installer.FileInstaller{
		Gateway:   gateway,
		Resolver:  base.resolver,
		Shortcuts: shortcuts,
		Logger:    base.logger,
	}
	folder := &installer.FolderInstaller{
		Gateway:   gateway,
		Resolver:  base.resolver,
		Shortcuts: shortcuts,
		Logger:    base.logger,
	}

	return &services{
		baseServices: *base,
		gateway:      gateway,
		shortcuts:    shortcuts,
		journal:      store,
		file:         file,
		folder:       folder,
		orch:         orchestrator.NewService(file, folder, store, base.logger),
	}, nil
}

func (s *services) Close() {
	if s.journal != nil {
		s.journal.Close()
	}
	s.baseServices.Close()
}
