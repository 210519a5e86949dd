package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fixgw/internal/app"
	"fixgw/internal/config"
	"fixgw/internal/log"
	"fixgw/internal/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run 返回进程退出码：参数错误为 2，启动或运行失败为 1。
func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "用法: gateway <配置文件>")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "初始化日志失败: %v\n", err)
		return 1
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	var auditStore *store.Store
	if cfg.Monitor.Enabled {
		auditStore, err = store.NewSQLite(cfg.Database)
		if err != nil {
			logger.Error("初始化审计库失败", zap.Error(err))
			return 1
		}
		defer func() {
			if closeErr := auditStore.Close(); closeErr != nil {
				logger.Warn("关闭审计库失败", zap.Error(closeErr))
			}
		}()
	}

	gateway := app.New(cfg, logger, auditStore)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gateway.Run(ctx); err != nil {
		logger.Error("网关运行异常", zap.Error(err))
		return 1
	}

	logger.Info("网关已安全退出")
	return 0
}
