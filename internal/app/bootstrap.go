package app

import (
	"errors"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/provider"
	"github.com/dujiao-next/storefront/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return BuildRunnerWithContainer(cfg, provider.NewContainer(cfg), mode)
}

// BuildRunnerWithContainer 使用已有容器构建服务运行器
func BuildRunnerWithContainer(cfg *config.Config, container *provider.Container, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if container == nil {
		return nil, errors.New("container is nil")
	}
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 店铺接口
	if mode == ModeAll || mode == ModeAPI {
		services = append(services, NewStorefrontService(cfg, container))
	}

	// 欢迎邮件队列消费，all 模式下队列未启用时跳过
	if mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled) {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	} else if mode == ModeAll {
		logger.Warnw("worker_skipped", "reason", "queue_disabled")
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	var (
		runner *Runner
		err    error
	)
	if opts.Container != nil {
		runner, err = BuildRunnerWithContainer(opts.Config, opts.Container, opts.Mode)
	} else {
		runner, err = BuildRunner(opts.Config, opts.Mode)
	}
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "mode", opts.Mode, "services", len(runner.services))
	return RunWithOptions(runner, opts)
}
