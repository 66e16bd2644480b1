package main

import (
	"encoding/json"
	"flag"

	"github.com/odvcencio/earthcontrol/pkg/config"
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/scene"
)

func runSceneCommand(args []string) error {
	fs := flag.NewFlagSet("scene", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file")
	count := fs.Int("count", 0, "particle count (default from config)")
	seed := fs.Uint64("seed", 0, "seed for accent particles (0 uses scene.seed, then the clock)")
	compact := fs.Bool("compact", false, "emit compact JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	sc := scene.Config{ParticleCount: cfg.Scene.ParticleCount, Seed: cfg.Scene.Seed}
	if *count != 0 {
		sc.ParticleCount = *count
	}
	if *seed != 0 {
		sc.Seed = *seed
	}
	if sc.ParticleCount < 0 || sc.ParticleCount > config.MaxParticleCount {
		return apperrors.Newf(apperrors.ErrCodeInvalidInput,
			"count %d must be in 0..%d", sc.ParticleCount, config.MaxParticleCount)
	}

	enc := json.NewEncoder(stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(scene.New(sc))
}
