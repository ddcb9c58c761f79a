// Package main is the entry point for the fnottd notification daemon.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/fnottd/internal/audio"
	"github.com/jmylchreest/fnottd/internal/busserver"
	"github.com/jmylchreest/fnottd/internal/config"
	"github.com/jmylchreest/fnottd/internal/ctrl"
	"github.com/jmylchreest/fnottd/internal/iconindex"
	"github.com/jmylchreest/fnottd/internal/logging"
	"github.com/jmylchreest/fnottd/internal/manager"
	"github.com/jmylchreest/fnottd/internal/render"
	"github.com/jmylchreest/fnottd/internal/selector"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to fnott.ini (defaults to $XDG_CONFIG_HOME/fnott/fnott.ini)")
	socketPath := flag.String("socket", "", "control socket path (defaults to $XDG_RUNTIME_DIR/fnott-$WAYLAND_DISPLAY.sock, else $XDG_RUNTIME_DIR/fnott.sock, else /tmp/fnott.sock)")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		println("fnottd version", version)
		os.Exit(0)
	}

	logger := logging.New(logging.Options{})

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.Path()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sel := selector.New(logger)
	icons := iconindex.New(cfg.Main.IconTheme)
	images := &render.ImagePipeline{Filter: cfg.Main.ScalingFilter, MaxSize: cfg.Main.MaxIconSize}

	audioMgr := audio.NewManager(cfg, logger)
	if err := audioMgr.Start(ctx); err != nil {
		logger.Warn("failed to start audio manager", "error", err)
	}

	mgr := manager.New(managerConfig(cfg), logger, nil, nil, sel)
	mgr.SetIcons(newDefaultIconLoader(icons, images, logger))
	go mgr.Run(ctx.Done())

	renderer := newFrameRenderer(cfg, mgr.Frames(), logger)
	mgr.SetRenderer(renderer)

	srv := busserver.New(logger)
	adapter := busserver.NewAdapter(mgr, icons, images, logger)
	signaler := busserver.NewSignaler(srv)
	mgr.SetBus(signaler)

	srv.SetNotifyHandler(func(req busserver.Request) uint32 {
		id := adapter.HandleNotify(req)
		urgency := mgr.Get(id).Urgency
		go func() {
			if err := audioMgr.PlayForUrgency(int(urgency)); err != nil {
				logger.Debug("failed to play urgency sound", "urgency", urgency, "error", err)
			}
		}()
		return id
	})
	srv.SetCloseHandler(func(id uint32) error {
		return adapter.HandleClose(id)
	})

	if err := srv.Start(); err != nil {
		logger.Error("failed to start bus server", "error", err)
		os.Exit(1)
	}
	defer srv.Stop()

	if cfgWatcher, err := config.NewWatcher(cfgPath, logger); err != nil {
		logger.Warn("failed to create config watcher", "error", err)
	} else {
		cfgWatcher.SetReloadCallback(func(newCfg config.Config) {
			mgr.UpdateConfig(managerConfig(newCfg))
			renderer.SetConfig(newCfg)
			audioMgr.UpdateConfig(newCfg)
		})
		if err := cfgWatcher.Start(); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		} else {
			defer func() { _ = cfgWatcher.Stop() }()
		}
	}

	ctrlSrv := ctrl.NewServer(mgr, logger)
	path := *socketPath
	if path == "" {
		path = ctrl.SocketPath()
	}
	if err := ctrlSrv.Listen(path); err != nil {
		logger.Error("failed to listen on control socket", "path", path, "error", err)
		os.Exit(1)
	}
	defer ctrlSrv.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quit := make(chan struct{})
	quitFn := func() {
		select {
		case <-quit:
		default:
			close(quit)
		}
	}
	go ctrlSrv.Serve(quitFn)

	logger.Info("fnottd ready", "version", version, "bus_name", busserver.BusName, "socket", path)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig)
	case <-quit:
		logger.Info("quit requested over control socket")
	}

	cancel()
	audioMgr.Stop()
	logger.Info("fnottd stopped")
}

// managerConfig projects the resolved daemon configuration onto the subset
// the Manager consults directly (spec §4.1/§5).
func managerConfig(cfg config.Config) manager.Config {
	order := manager.BottomUp
	if cfg.Main.StackingOrder == config.StackingTopDown {
		order = manager.TopDown
	}
	mc := manager.Config{
		StackingOrder:      order,
		NotificationMargin: cfg.Main.NotificationMargin,
	}
	for i, uc := range []config.Urgency{cfg.Low, cfg.Normal, cfg.Critical} {
		mc.PerUrgency[i] = manager.UrgencyConfig{
			DefaultTimeoutMs: uc.DefaultTimeout,
			MaxTimeoutMs:     uc.MaxTimeout,
			SelectionHelper:  cfg.Main.SelectionHelper,
			NullSeparator:    cfg.Main.SelectionHelperUsesNullSeparator,
			Icon:             uc.Icon,
		}
	}
	return mc
}
