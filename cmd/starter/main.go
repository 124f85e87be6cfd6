// starter 只提供健康检查和根路径，不包含房间接口。
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"music-room/internal/bootstrap"
)

func main() {
	app, err := bootstrap.NewApp(bootstrap.VariantStarter)
	if err != nil {
		logrus.Fatalf("Failed to initialize starter: %v", err)
	}
	app.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutdown signal received...")

	app.Shutdown()
}
