// migrate aplica o revierte las migraciones embebidas del servicio de compras.
//
// Uso: go run ./cmd/migrate [up|down|version]
// Por defecto ejecuta up. Lee la conexión de las mismas variables que la API (DATABASE_URL o DB_*).
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/compras-api/internal/infrastructure/postgres"
	"github.com/jhoicas/compras-api/pkg/config"
	"github.com/jhoicas/compras-api/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir migrador: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if err == nil {
			fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "Comando desconocido %q (up|down|version)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		m.Close()
		os.Exit(1)
	}
}
