package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/seed"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
)

func main() {
	var op int
	var n int
	var fixtures string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机班次, 3: 导入 YAML 种子文件)")
	flag.IntVar(&n, "n", 0, "要插入的记录数量，0 表示使用 SEED_USERS")
	flag.StringVar(&fixtures, "fixtures", "./seed.yaml", "YAML 种子文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if n == 0 {
		n = cfg.Seed.Users
	}

	ctx := context.Background()

	dbpool, err := repository.NewPool(ctx, cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user := utils.GenerateRandomUser(cfg.Email.UserDomain)
			if err := repo.CreateUser(ctx, user); err != nil {
				slog.Error("无法插入用户", slog.String("username", user.Username), slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的班次数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			st := utils.GenerateRandomShiftTemplate()
			if err := repo.CreateShiftTemplate(ctx, st); err != nil {
				slog.Error("无法插入班次", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入班次成功", slog.Int("count", cnt))
	case 3:
		fx, err := seed.LoadFile(fixtures)
		if err != nil {
			slog.Error("无法读取种子文件", slog.String("path", fixtures), slog.String("error", err.Error()))
			os.Exit(1)
		}
		if _, err := seed.Apply(ctx, repo, fx); err != nil {
			slog.Error("导入种子数据失败", slog.String("error", err.Error()))
			os.Exit(1)
		}
	default:
		slog.Error("指定的操作非法")
	}
}
