// Command alphafix restores the alpha channel of AI-upscaled images from
// their low resolution originals.
package main

import (
	"context"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/setanarut/alphafix"
)

type cli struct {
	Original string `arg:"" type:"existingdir" help:"Directory of original images with trustworthy alpha."`
	Upscaled string `arg:"" type:"existingdir" help:"Directory of upscaled images mirroring the original tree."`
	Output   string `arg:"" type:"path" help:"Directory receiving the repaired images."`

	Policy        string `short:"p" help:"Compositing policy: simple or guarded (default guarded)."`
	Workers       int    `short:"j" help:"Parallel workers (default GOMAXPROCS)."`
	Matte         string `help:"Color fill for fully transparent pixels: none, dominant or kmeans."`
	MaskDir       string `type:"path" help:"Dump reconstructed masks as PNG under this directory."`
	CoupleFormats *bool  `negatable:"" help:"Decode upscaled files with the original file's format."`
	Config        string `short:"c" type:"path" help:"YAML configuration file."`

	// Nil when not given on the command line, so the config file can fill
	// them in and --no-<flag> can override it.
	Debug *bool `negatable:"" help:"Debug logging."`
	Info  *bool `negatable:"" help:"Info logging."`
	Human *bool `negatable:"" help:"Human readable console logs."`
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var c cli
	kong.Parse(&c,
		kong.Name("alphafix"),
		kong.Description("Rebuild the alpha channel of upscaled images from their originals."),
		kong.UsageOnError(),
	)

	fc, err := loadFileConfig(c.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	c.merge(fc)
	setupLogging(c)

	cfg, err := c.config()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	cfg.Logger = log.Logger

	tasks, err := alphafix.Locate(c.Original, c.Upscaled, c.Output, c.MaskDir)
	if err != nil {
		log.Fatal().Err(err).Msg("scan")
	}

	start := time.Now()
	report, err := alphafix.Run(context.Background(), tasks, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed")
		os.Exit(1)
	}
	log.Info().
		Stringer("policy", cfg.Params.Policy).
		Int("repaired", report.Repaired).
		Int("copied", report.Copied).
		Dur("elapsed", time.Since(start)).
		Msg("done")
}

func setupLogging(c cli) {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	if isSet(c.Info) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if isSet(c.Debug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if isSet(c.Human) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
