package main

import (
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/config"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/initializers"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/routes"
)

var cfg *config.Config

func init() {
	initializers.LoadEnvVariables()

	cfg = config.Load()

	initializers.ConnectToDb(cfg.DBPath)
	initializers.SyncDatabase()

	initializers.StartCleanup(cfg)
}

func main() {
	r := routes.SetupRouter(initializers.DB, cfg)
	r.Run()
}
