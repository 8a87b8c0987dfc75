// Package batch runs the whole filter pipeline once, for command line use.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/RMahshie/sparamgen/internal/curve"
	"github.com/RMahshie/sparamgen/internal/measurement"
	"github.com/RMahshie/sparamgen/internal/plot"
	"github.com/RMahshie/sparamgen/internal/sparams"
	"github.com/RMahshie/sparamgen/internal/storage"
	"github.com/RMahshie/sparamgen/internal/synth"
	"github.com/RMahshie/sparamgen/pkg/models"
)

// PlotFile is the key of the rendered chart page
const PlotFile = "plot.html"

// Job describes one pipeline run
type Job struct {
	Input models.FilterInput
	// Measurements is an optional 8-column analyzer export
	Measurements io.Reader
	Synth        synth.Params
	Compose      sparams.Options
	SkipPlot     bool
}

// Result is what a run produced
type Result struct {
	Data     *models.NumericalData
	Table    *models.SParameterTable
	Warnings []synth.DegenerateFitWarning
	Keys     []string
}

// ReadInput decodes a filter input form from YAML, rejecting unknown keys
func ReadInput(r io.Reader) (models.FilterInput, error) {
	var input models.FilterInput
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&input); err != nil {
		return models.FilterInput{}, fmt.Errorf("failed to parse filter input: %w", err)
	}
	return input, nil
}

// Run builds the curves, fills missing measurements and writes the spec
// texts, the table file and the plot to store
func Run(ctx context.Context, job Job, store storage.ArtifactStore) (*Result, error) {
	data, err := curve.FromInput(job.Input)
	if err != nil {
		return nil, err
	}

	if job.Measurements != nil {
		set, err := measurement.Parse(job.Measurements)
		if err != nil {
			return nil, err
		}
		if err := measurement.Apply(set, data); err != nil {
			return nil, fmt.Errorf("failed to apply measurements: %w", err)
		}
		log.Info().Int("channels", len(set)).Msg("Loaded measurements")
	}

	warnings, err := synth.SynthesizeAll(data, job.Synth, false)
	if err != nil {
		return nil, fmt.Errorf("failed to generate measurements: %w", err)
	}
	for _, w := range warnings {
		log.Warn().Str("channel", string(w.Channel)).Str("kind", string(w.Kind)).Float64("shift", w.Shift).Msg("Degenerate fit")
	}

	res := &Result{Data: data, Warnings: warnings}

	for _, ch := range data.Channels() {
		key := string(ch.Kind) + ".txt"
		if bad := curve.SignMismatches(ch.Kind, curve.ChannelSegments(ch, data)); len(bad) > 0 {
			log.Warn().Str("channel", string(ch.Kind)).Floats64("values", bad).Msg("Spec text loses value signs")
		}
		if err := store.Put(ctx, key, storage.ContentTypeText, []byte(curve.ChannelSpecText(ch, data))); err != nil {
			return nil, err
		}
		res.Keys = append(res.Keys, key)
	}

	table, err := sparams.Compose(job.Input.Name, data, job.Compose)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := sparams.WriteTable(&buf, table); err != nil {
		return nil, err
	}
	table.FileKey = sparams.FileName(table)
	if err := store.Put(ctx, table.FileKey, storage.ContentTypeText, buf.Bytes()); err != nil {
		return nil, err
	}
	res.Table = table
	res.Keys = append(res.Keys, table.FileKey)

	if !job.SkipPlot {
		buf.Reset()
		if err := plot.RenderChannels(&buf, job.Input.Name, data); err != nil {
			return nil, err
		}
		if err := store.Put(ctx, PlotFile, storage.ContentTypeHTML, buf.Bytes()); err != nil {
			return nil, err
		}
		res.Keys = append(res.Keys, PlotFile)
	}

	log.Info().
		Str("name", job.Input.Name).
		Int("rows", len(table.Rows)).
		Strs("artifacts", res.Keys).
		Msg("Pipeline finished")
	return res, nil
}
