package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lcx/mirror/codec"
	"github.com/lcx/mirror/config"
	"github.com/lcx/mirror/diagnostics"
	"github.com/lcx/mirror/log"
	"github.com/lcx/mirror/metrics"
	"github.com/lcx/mirror/net"
	"github.com/lcx/mirror/opcode"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	configDir string
	env       string
	tick      time.Duration
	loopback  bool
}

func serveCmd() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Bind diagnostics and serve the metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configDir, "config", "c", "./configs", "Configuration directory")
	cmd.Flags().StringVarP(&opts.env, "env", "e", "development", "Configuration environment subdirectory")
	cmd.Flags().DurationVar(&opts.tick, "tick", time.Second, "Profiler tick interval")
	cmd.Flags().BoolVar(&opts.loopback, "loopback", false, "Exchange a ping through the dispatcher on every tick")
	return cmd
}

// loadOr loads name into cfg, keeping the values already in cfg when no file exists.
func loadOr(cm config.ConfigManager, cfg config.Config) {
	if err := cm.LoadConfig(cfg.GetName(), cfg); err != nil {
		log.Info().Str("config", cfg.GetName()).Err(err).Msg("using default configuration")
	}
}

func serve(ctx context.Context, opts serveOptions) error {
	cm := config.GetInstance()
	cm.SetBasePath(opts.configDir)
	cm.SetEnvironment(opts.env)
	defer cm.Close()

	if err := log.InitializeWithConfigManager(cm); err != nil {
		log.Warn().Err(err).Msg("logger configuration not loaded, using defaults")
	}

	opCfg := &opcode.Cfg{}
	loadOr(cm, opCfg)
	reg, err := opcode.NewRegistryFromCfg(opCfg)
	if err != nil {
		return err
	}
	opcode.SetDefault(reg)

	stats, err := metrics.NewNetStats(nil)
	if err != nil {
		return fmt.Errorf("create net stats failed: %w", err)
	}
	diagnostics.Provide(diagnostics.CurrentCollectorPath, stats)
	defer diagnostics.Withdraw(diagnostics.CurrentCollectorPath)

	metricsCfg := metrics.DefaultCfg()
	loadOr(cm, metricsCfg)
	srv := metrics.NewServer(metricsCfg)

	diagnostics.Configure(
		diagnostics.WithCfg(diagnostics.LoadCfg(cm)),
		diagnostics.WithTransport(srv),
		diagnostics.WithOpcodeFunc(reg.For),
		diagnostics.WithNameFunc(reg.Name),
	)
	bridge := diagnostics.Default()
	defer bridge.Stop()

	if !bridge.Bound() {
		log.Warn().Str("reason", bridge.Reason()).Msg("running without diagnostics")
	}
	if !srv.IsStarted() {
		if err := srv.Init(); err != nil {
			return fmt.Errorf("start metrics server failed: %w", err)
		}
	}

	disp, err := net.NewDispatcherWithConfigManager(cm, reg, bridge)
	if err != nil {
		log.Info().Err(err).Msg("using default dispatcher configuration")
		if disp, err = net.NewDispatcher(net.DefaultDispatcherConfig(), reg, bridge); err != nil {
			return err
		}
	}
	if err := registerSystemHandlers(disp); err != nil {
		return err
	}

	log.Info().Stringer("scheme", reg.Scheme()).Stringer("stage", bridge.Stage()).
		Str("metrics", srv.Addr().String()).Msg("mirrord started")

	start := time.Now()
	ticker := time.NewTicker(opts.tick)
	defer ticker.Stop()

	peer := &loopback{disp: disp}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("mirrord stopping")
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(start).Seconds()
			bridge.NewTick(float32(elapsed))
			if opts.loopback {
				body := codec.AppendFloat64(nil, elapsed)
				if err := disp.Send(peer, net.DefaultUnreliable, opcode.PingMessage{}, body); err != nil {
					log.Warn().Err(err).Msg("loopback ping failed")
				}
			}
		}
	}
}

// registerSystemHandlers answers pings with the client and server time.
func registerSystemHandlers(disp *net.Dispatcher) error {
	start := time.Now()
	if err := disp.RegisterHandler(opcode.PingMessage{}, func(d *net.Delivery) error {
		clientTime, err := codec.NewReader(d.Body).ReadFloat64()
		if err != nil {
			return fmt.Errorf("decode ping failed: %w", err)
		}
		body := codec.AppendFloat64(codec.AppendFloat64(nil, clientTime), time.Since(start).Seconds())
		return d.Reply(opcode.PongMessage{}, body)
	}); err != nil {
		return err
	}

	return disp.RegisterHandler(opcode.PongMessage{}, func(d *net.Delivery) error {
		r := codec.NewReader(d.Body)
		clientTime, err := r.ReadFloat64()
		if err != nil {
			return err
		}
		serverTime, err := r.ReadFloat64()
		if err != nil {
			return err
		}
		log.Debug().Float64("clientTime", clientTime).Float64("serverTime", serverTime).Msg("pong")
		return nil
	})
}

// loopback delivers sent frames straight back into the dispatcher.
type loopback struct {
	disp *net.Dispatcher
}

func (l *loopback) Send(ch net.Channel, frame []byte) error {
	return l.disp.OnRecv(frame, l)
}
