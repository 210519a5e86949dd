package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"fixgw/internal/metrics"
	"fixgw/internal/monitor"
)

const (
	defaultEventLimit = 200
	maxEventLimit     = 1000
)

// newMonitorHandler 挂载审计查询与指标接口，audit 或 m 为空时对应路由不注册。
func newMonitorHandler(audit *monitor.Service, m *metrics.Metrics, metricsPath string, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	if audit != nil {
		mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			limit := defaultEventLimit
			if qs := q.Get("limit"); qs != "" {
				if v, err := strconv.Atoi(qs); err == nil && v > 0 {
					limit = min(v, maxEventLimit)
				}
			}

			eventType, ok := monitor.ParseEventType(strings.ToLower(strings.TrimSpace(q.Get("type"))))
			if !ok {
				http.Error(w, fmt.Sprintf("未知事件类型 %q", q.Get("type")), http.StatusBadRequest)
				return
			}

			events, err := audit.ListEvents(r.Context(), eventType, limit)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(events); err != nil {
				logger.Warn("写入监控响应失败", zap.Error(err))
			}
		})
	}

	if m != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		mux.Handle(metricsPath, m.Handler())
	}

	return mux
}

// serveMonitor 阻塞运行监控接口，ctx 取消后关闭并返回 nil。
func serveMonitor(ctx context.Context, port int, handler http.Handler, logger *zap.Logger) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("监控接口已启动", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("关闭监控服务失败", zap.Error(err))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("监控服务异常: %w", err)
	}
}
