//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"mirror-ca/internal/app"
	"mirror-ca/internal/sims/mirror"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()
	if err := cfg.Resolve(flag.CommandLine, os.LookupEnv); err != nil {
		log.Fatal(err)
	}

	mcfg, err := cfg.MirrorConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	world, err := mirror.NewWithConfig(mcfg)
	if err != nil {
		log.Fatalf("world: %v", err)
	}
	if err := cfg.ApplyView(world); err != nil {
		log.Fatalf("view: %v", err)
	}

	ctl := app.NewController(world, mcfg.Seed, cfg.AutoScan)
	game := app.New(ctl, cfg.Scale, cfg.HUDWidth)
	size := world.Size()

	ebiten.SetWindowTitle("mirror-ca: " + world.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.HUDWidth, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
