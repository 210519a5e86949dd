package app

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fixgw/internal/cache"
	"fixgw/internal/config"
	"fixgw/internal/connection"
	"fixgw/internal/dedup"
	"fixgw/internal/fixsession"
	"fixgw/internal/forward"
	"fixgw/internal/metrics"
	"fixgw/internal/monitor"
	"fixgw/internal/relay"
	"fixgw/internal/server"
	"fixgw/internal/store"
	"fixgw/internal/translator"
)

// App 聚合网关各组件并驱动其生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例，store 为空时不记录审计事件。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// Run 启动会话、转发管道与 RPC 服务，阻塞到 ctx 取消或任一组件失败。
func (a *App) Run(ctx context.Context) error {
	cfg := a.cfg

	tr, err := translator.New(cfg.BrokerName, cfg.PluginCfgFile, nil)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	var (
		events  = cache.New(cfg.Cache.MaxEntries)
		guard   = dedup.NewGuard()
		conn    = connection.NewMonitor()
		queue   = forward.NewQueue()
		fwdRec  forward.Recorder
		sessRec fixsession.Recorder
		rpcRec  server.Recorder
		audit   *monitor.Service
	)

	if a.store != nil && cfg.Monitor.Enabled {
		audit, err = monitor.NewService(a.store, a.logger)
		if err != nil {
			return err
		}
		fwdRec, sessRec, rpcRec = audit, audit, audit
	}

	m.Gauge("queue_depth", "待转发请求数", func() float64 { return float64(queue.Len()) })
	m.Gauge("cache_entries", "事件缓存保留条目数", func() float64 { return float64(events.Len()) })
	m.Gauge("dedup_keys", "已受理的去重键数量", func() float64 { return float64(guard.Len()) })

	engineCfg, err := fixsession.EngineConfigFrom(cfg)
	if err != nil {
		return err
	}
	fixApp := fixsession.NewApplication(conn, events, sessRec, m, a.logger)
	engine, err := fixsession.NewEngine(engineCfg, fixApp, conn, a.logger)
	if err != nil {
		return err
	}

	pipeline, err := forward.NewPipeline(queue, conn, tr, fixsession.NewSender(engine.SessionID()), forward.Options{
		PollInterval: cfg.Pipeline.PollInterval,
		Recorder:     fwdRec,
		Metrics:      m,
		Logger:       a.logger,
	})
	if err != nil {
		return err
	}

	svc := server.NewService(guard, queue, events, server.Options{
		DedupKey:       cfg.Dedup.Key,
		StreamInterval: cfg.StreamInterval(),
		StreamBuffer:   cfg.Stream.Buffer,
		Recorder:       rpcRec,
		Metrics:        m,
		Logger:         a.logger,
	})
	grpcServer := server.NewGRPCServer(svc, a.logger)

	var rl *relay.Relay
	if cfg.NATS.URL != "" {
		nc, err := relay.Connect(cfg.NATS, a.logger)
		if err != nil {
			return err
		}
		defer nc.Close()
		rl = relay.New(events, nc, cfg.NATS.Subject, cfg.NATS.PollInterval, a.logger)
	}

	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", cfg.Address, err)
	}

	if err := engine.Start(ctx); err != nil {
		_ = lis.Close()
		return err
	}

	a.logger.Info("网关已初始化",
		zap.String("address", cfg.Address),
		zap.String("broker", tr.Name()),
		zap.String("session", engine.SessionID().String()),
	)

	lc := lifecycle{
		queue:    queue,
		pipeline: pipeline,
		engine:   engine,
		serveRPC: func(ctx context.Context) error { return grpcServer.Serve(ctx, lis) },
	}
	if rl != nil {
		lc.extras = append(lc.extras, rl.Run)
	}
	if cfg.Monitor.Enabled || cfg.Metrics.Enabled {
		handler := newMonitorHandler(audit, m, cfg.Metrics.Path, a.logger)
		lc.extras = append(lc.extras, func(ctx context.Context) error {
			return serveMonitor(ctx, cfg.Monitor.Port, handler, a.logger)
		})
	}

	err = lc.run(ctx)
	a.logger.Info("网关已停止")
	return err
}

// lifecycle 持有 Start 之后需要协同运行与停止的组件。
type lifecycle struct {
	queue    *forward.Queue
	pipeline interface{ Run(context.Context) error }
	engine   interface{ Stop() }
	serveRPC func(context.Context) error
	extras   []func(context.Context) error
}

// run 阻塞到 ctx 取消或任一组件失败。
// 退出顺序：停止 RPC 并关闭队列，然后停止管道，最后登出会话。
func (l lifecycle) run(ctx context.Context) error {
	defer l.engine.Stop()

	g, gctx := errgroup.WithContext(ctx)
	pipeCtx, stopPipeline := context.WithCancel(context.Background())
	defer stopPipeline()

	g.Go(func() error { return l.pipeline.Run(pipeCtx) })
	g.Go(func() error { return l.serveRPC(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		l.queue.Close()
		stopPipeline()
		return nil
	})
	for _, fn := range l.extras {
		g.Go(func() error { return fn(gctx) })
	}

	return g.Wait()
}
