// sweeper 定时将已结束的有效预约标记为已完成。
// 与 API 进程分离部署，API 进程内不运行任何后台任务。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lauracabezas-star/aulatech-backend/config"
	"github.com/lauracabezas-star/aulatech-backend/internal/repository"
	"github.com/lauracabezas-star/aulatech-backend/internal/service"
	"github.com/lauracabezas-star/aulatech-backend/pkg/database"
	applogger "github.com/lauracabezas-star/aulatech-backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	once := flag.Bool("once", false, "只执行一次后退出")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log, "sweeper")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer database.Close(db)

	reservations := service.NewReservationService(repository.NewRepository(db), logger)

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := reservations.CompleteExpired(ctx)
		if err != nil {
			logger.Error("完成过期预约失败", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("已完成过期预约", zap.Int64("count", n))
		}
	}

	if *once {
		sweep()
		return
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.Sweeper.Cron, sweep); err != nil {
		logger.Fatal("无效的 cron 表达式", zap.String("cron", cfg.Sweeper.Cron), zap.Error(err))
	}
	c.Start()
	logger.Info("预约清理任务已启动", zap.String("cron", cfg.Sweeper.Cron))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 等待正在执行的任务结束
	<-c.Stop().Done()
	logger.Info("预约清理任务已停止")
}
