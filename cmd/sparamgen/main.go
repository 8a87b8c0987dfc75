package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RMahshie/sparamgen/internal/batch"
	"github.com/RMahshie/sparamgen/internal/config"
	"github.com/RMahshie/sparamgen/internal/processing"
	"github.com/RMahshie/sparamgen/internal/sparams"
	"github.com/RMahshie/sparamgen/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("sparamgen failed")
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("sparamgen", pflag.ContinueOnError)
	inputPath := flags.StringP("input", "i", "filter.yaml", "filter input form (YAML)")
	measPath := flags.StringP("measurements", "m", "", "optional 8-column measurement file")
	pathLoss := flags.Float64("path-loss", 0, "absolute path loss subtracted from |S21|")
	angS11 := flags.Float64("ang-s11", 0, "constant S11 angle in degrees")
	angS22 := flags.Float64("ang-s22", 0, "constant S22 angle in degrees")
	s12Mag := flags.Float64("s12-mag", 0, "fixed S12 magnitude, used with --fixed-s12")
	s12Ang := flags.Float64("s12-ang", 0, "fixed S12 angle, used with --fixed-s12")
	fixedS12 := flags.Bool("fixed-s12", false, "write a fixed S12 instead of mirroring S21")
	noPlot := flags.Bool("no-plot", false, "skip the HTML plot")
	flags.StringP("out", "o", "./artifacts", "output directory")
	flags.IntP("lines", "n", 201, "rows in the s-parameter table")
	flags.String("log-level", "info", "log level")
	if err := flags.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	for key, name := range map[string]string{
		"STORAGE_DIR":     "out",
		"NUMBER_OF_LINES": "lines",
		"LOG_LEVEL":       "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	in, err := os.Open(*inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()
	input, err := batch.ReadInput(in)
	if err != nil {
		return err
	}

	opts := processing.PipelineOptions(cfg.Pipeline)
	opts.Compose.AbsolutePathLoss = *pathLoss
	opts.Compose.AngS11 = *angS11
	opts.Compose.AngS22 = *angS22
	if *fixedS12 {
		opts.Compose.S12 = &sparams.Pair{Mag: *s12Mag, Ang: *s12Ang}
	}
	job := batch.Job{Input: input, Synth: opts.Synth, Compose: opts.Compose, SkipPlot: *noPlot}

	if *measPath != "" {
		f, err := os.Open(*measPath)
		if err != nil {
			return fmt.Errorf("failed to open measurements: %w", err)
		}
		defer f.Close()
		job.Measurements = f
	}

	store, err := storage.NewLocalStore(afero.NewOsFs(), cfg.Storage.Dir)
	if err != nil {
		return err
	}

	res, err := batch.Run(context.Background(), job, store)
	if err != nil {
		return err
	}
	for _, key := range res.Keys {
		fmt.Println(key)
	}
	return nil
}
