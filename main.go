// @title 测验答题引擎 API
// @version 1.0
// @description 限时测验的答题引擎：开始/续答/改答/提交，自动判分与到期回收。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"edu_quiz_backend/internal/app"
	"edu_quiz_backend/internal/config"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ForceMigrate = *migrate
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	application.Run()
}
