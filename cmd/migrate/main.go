package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/config"
)

func main() {
	var steps int
	flag.IntVar(&steps, "steps", 0, "up/down 时迁移的步数，0 表示全部")
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	m, err := migrate.New(cfg.Database.MigrationsPath, cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建迁移实例", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer m.Close()

	if err := run(logger, m, action, steps); err != nil {
		logger.Error("迁移失败", slog.String("action", action), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("迁移完成", slog.String("action", action))
}

func run(logger *slog.Logger, m *migrate.Migrate, action string, steps int) error {
	var err error
	switch action {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("尚未执行任何迁移")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("当前版本", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("不支持的操作 %q", action)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("没有需要执行的迁移")
		return nil
	}
	return err
}
