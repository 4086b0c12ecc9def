package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sahelpay/sahelpay/internal/migration"
	"github.com/sahelpay/sahelpay/internal/observability"
	"github.com/sahelpay/sahelpay/internal/server"
	"github.com/sahelpay/sahelpay/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
