package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/sparamgen/internal/config"
	"github.com/RMahshie/sparamgen/internal/curve"
	"github.com/RMahshie/sparamgen/internal/measurement"
	"github.com/RMahshie/sparamgen/internal/observability"
	"github.com/RMahshie/sparamgen/internal/plot"
	"github.com/RMahshie/sparamgen/internal/repository"
	"github.com/RMahshie/sparamgen/internal/sparams"
	"github.com/RMahshie/sparamgen/internal/storage"
	"github.com/RMahshie/sparamgen/internal/synth"
	"github.com/RMahshie/sparamgen/pkg/models"
)

// ErrInvalidRequest is wrapped by requests naming a missing channel, curve or point
var ErrInvalidRequest = errors.New("invalid request")

// CurveSpec and CurveMeasurement select the curve an edit applies to
const (
	CurveSpec        = "spec"
	CurveMeasurement = "measurement"
)

// PointEdit sets or nudges one point of a channel curve. Exactly one of
// Value and Delta must be set; Frequency is only honoured with Value.
type PointEdit struct {
	Channel   models.ChannelKind
	Curve     string
	Index     int
	Frequency *float64
	Value     *float64
	Delta     *float64
}

// ComposeRequest overrides the composer options of one table
type ComposeRequest struct {
	NumberOfLines    int
	AbsolutePathLoss float64
	AngS11           float64
	AngS22           float64
	S12              *sparams.Pair
}

// Artifact is a stored file and its download URL
type Artifact struct {
	Key string
	URL string
}

// SpecExport is the spec text of one channel recovered from its curve
type SpecExport struct {
	Artifact
	Text string
	// Warning is set when the text cannot carry the sign of some values
	Warning string
}

// Options holds the pipeline parameters of the service
type Options struct {
	Synth   synth.Params
	Compose sparams.Options
}

// DefaultOptions returns the pipeline defaults
func DefaultOptions() Options {
	return Options{Synth: synth.DefaultParams(), Compose: sparams.DefaultOptions()}
}

// FilterService drives a filter session through the pipeline
type FilterService interface {
	CreateFilter(ctx context.Context, input models.FilterInput) (*models.Filter, error)
	GetFilter(ctx context.Context, id uuid.UUID) (*models.Filter, error)
	ListFilters(ctx context.Context, limit int) ([]*models.Filter, error)
	LoadMeasurements(ctx context.Context, id uuid.UUID, raw []byte) (*models.Filter, error)
	LoadChannelMeasurement(ctx context.Context, id uuid.UUID, kind models.ChannelKind, raw []byte) (*models.Filter, error)
	GenerateMeasurements(ctx context.Context, id uuid.UUID, force bool) (*models.Filter, []synth.DegenerateFitWarning, error)
	EditPoint(ctx context.Context, id uuid.UUID, edit PointEdit) (*models.Filter, error)
	ExportSpecText(ctx context.Context, id uuid.UUID, kind models.ChannelKind) (*SpecExport, error)
	ComposeSParameters(ctx context.Context, id uuid.UUID, req ComposeRequest) (*models.SParameterTable, *Artifact, error)
	RenderPlot(ctx context.Context, id uuid.UUID) ([]byte, *Artifact, error)
}

type filterService struct {
	repository repository.Repository
	store      storage.ArtifactStore
	metrics    *observability.PipelineCollector
	opts       Options

	mu    sync.Mutex
	locks map[uuid.UUID]*filterLock
}

// filterLock is dropped from the map once no caller holds or waits on it
type filterLock struct {
	sync.Mutex
	refs int
}

// NewFilterService creates a filter service. metrics may be nil.
func NewFilterService(repo repository.Repository, store storage.ArtifactStore, metrics *observability.PipelineCollector, opts Options) FilterService {
	return &filterService{
		repository: repo,
		store:      store,
		metrics:    metrics,
		opts:       opts,
		locks:      make(map[uuid.UUID]*filterLock),
	}
}

// lock serializes the load, mutate and save cycle of one filter
func (s *filterService) lock(id uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &filterLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func (s *filterService) CreateFilter(ctx context.Context, input models.FilterInput) (f *models.Filter, err error) {
	defer s.observe("create", time.Now(), &err)

	data, err := curve.FromInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	f = &models.Filter{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Input:     input,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repository.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}

	log.Info().
		Str("filter_id", f.ID).
		Int("center_frequency", data.CenterFrequency).
		Int("bandwidth", data.Bandwidth).
		Msg("Filter created")
	return f, nil
}

func (s *filterService) GetFilter(ctx context.Context, id uuid.UUID) (*models.Filter, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *filterService) ListFilters(ctx context.Context, limit int) ([]*models.Filter, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repository.List(ctx, limit)
}

func (s *filterService) LoadMeasurements(ctx context.Context, id uuid.UUID, raw []byte) (f *models.Filter, err error) {
	defer s.observe("load_measurements", time.Now(), &err)

	set, err := measurement.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(f *models.Filter) error {
		return measurement.Apply(set, f.Data)
	})
}

func (s *filterService) LoadChannelMeasurement(ctx context.Context, id uuid.UUID, kind models.ChannelKind, raw []byte) (f *models.Filter, err error) {
	defer s.observe("load_measurements", time.Now(), &err)

	c, err := measurement.ParseChannel(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(f *models.Filter) error {
		return measurement.Apply(measurement.Set{kind: c}, f.Data)
	})
}

func (s *filterService) GenerateMeasurements(ctx context.Context, id uuid.UUID, force bool) (f *models.Filter, warnings []synth.DegenerateFitWarning, err error) {
	defer s.observe("generate", time.Now(), &err)

	f, err = s.mutate(ctx, id, func(f *models.Filter) error {
		var err error
		warnings, err = synth.SynthesizeAll(f.Data, s.opts.Synth, force)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	for _, w := range warnings {
		s.metrics.RecordFitWarning(string(w.Channel), string(w.Kind))
		log.Warn().
			Str("filter_id", f.ID).
			Str("channel", string(w.Channel)).
			Str("kind", string(w.Kind)).
			Float64("shift", w.Shift).
			Msg("Degenerate measurement fit")
	}
	return f, warnings, nil
}

func (s *filterService) EditPoint(ctx context.Context, id uuid.UUID, edit PointEdit) (f *models.Filter, err error) {
	defer s.observe("edit", time.Now(), &err)

	if (edit.Value == nil) == (edit.Delta == nil) {
		return nil, fmt.Errorf("%w: exactly one of value and delta is required", ErrInvalidRequest)
	}
	return s.mutate(ctx, id, func(f *models.Filter) error {
		ch, err := f.Data.Channel(edit.Channel)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}

		var c *models.Curve
		switch edit.Curve {
		case CurveSpec, "":
			c = &ch.Spec
		case CurveMeasurement:
			if !ch.HasMeasurement() {
				return fmt.Errorf("%w: %s has no measurement", ErrInvalidRequest, ch.Name)
			}
			c = &ch.Measurement.Curve
		default:
			return fmt.Errorf("%w: unknown curve %q", ErrInvalidRequest, edit.Curve)
		}

		p, err := c.Point(edit.Index)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if edit.Delta != nil {
			return c.AdjustPoint(edit.Index, *edit.Delta)
		}
		freq := p.Frequency
		if edit.Frequency != nil {
			freq = *edit.Frequency
		}
		if err := c.SetPoint(edit.Index, freq, *edit.Value); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			// index was checked by Point, the revert cannot fail
			_ = c.SetPoint(edit.Index, p.Frequency, p.Value)
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil
	})
}

func (s *filterService) ExportSpecText(ctx context.Context, id uuid.UUID, kind models.ChannelKind) (exp *SpecExport, err error) {
	defer s.observe("export_spec", time.Now(), &err)

	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ch, err := f.Data.Channel(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	text := curve.ChannelSpecText(ch, f.Data)
	art, err := s.putArtifact(ctx, storage.Key(f.ID, string(kind)+".txt"), storage.ContentTypeText, []byte(text))
	if err != nil {
		return nil, err
	}
	exp = &SpecExport{Artifact: *art, Text: text}
	if bad := curve.SignMismatches(kind, curve.ChannelSegments(ch, f.Data)); len(bad) > 0 {
		exp.Warning = fmt.Sprintf("%d value(s) of %s have the opposite sign and will read back negated: %v", len(bad), ch.Name, bad)
		log.Warn().Str("filter_id", f.ID).Str("channel", string(kind)).Floats64("values", bad).Msg("Spec text loses value signs")
	}
	return exp, nil
}

func (s *filterService) ComposeSParameters(ctx context.Context, id uuid.UUID, req ComposeRequest) (table *models.SParameterTable, art *Artifact, err error) {
	defer s.observe("compose", time.Now(), &err)

	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	opts := s.opts.Compose
	if req.NumberOfLines > 0 {
		opts.NumberOfLines = req.NumberOfLines
	}
	opts.AbsolutePathLoss = req.AbsolutePathLoss
	opts.AngS11 = req.AngS11
	opts.AngS22 = req.AngS22
	opts.S12 = req.S12

	table, err = sparams.Compose(f.Name, f.Data, opts)
	if err != nil {
		return nil, nil, err
	}
	table.ID = uuid.New().String()
	table.FilterID = f.ID

	var buf bytes.Buffer
	if err := sparams.WriteTable(&buf, table); err != nil {
		return nil, nil, err
	}
	art, err = s.putArtifact(ctx, storage.Key(f.ID, sparams.FileName(table)), storage.ContentTypeText, buf.Bytes())
	if err != nil {
		return nil, nil, err
	}
	table.FileKey = art.Key

	if err := s.repository.StoreTable(ctx, table); err != nil {
		return nil, nil, fmt.Errorf("failed to store s-parameter table: %w", err)
	}

	log.Info().
		Str("filter_id", f.ID).
		Str("table_id", table.ID).
		Int("rows", len(table.Rows)).
		Msg("S-parameter table composed")
	return table, art, nil
}

func (s *filterService) RenderPlot(ctx context.Context, id uuid.UUID) (html []byte, art *Artifact, err error) {
	defer s.observe("plot", time.Now(), &err)

	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	title := f.Name
	if title == "" {
		title = f.ID
	}
	var buf bytes.Buffer
	if err := plot.RenderChannels(&buf, title, f.Data); err != nil {
		return nil, nil, err
	}
	art, err = s.putArtifact(ctx, storage.Key(f.ID, "plot.html"), storage.ContentTypeHTML, buf.Bytes())
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), art, nil
}

// mutate runs fn on the stored filter and saves the result under the filter lock
func (s *filterService) mutate(ctx context.Context, id uuid.UUID, fn func(*models.Filter) error) (*models.Filter, error) {
	unlock := s.lock(id)
	defer unlock()

	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Data == nil {
		return nil, fmt.Errorf("filter %s has no curves", id)
	}
	if err := fn(f); err != nil {
		return nil, err
	}
	f.UpdatedAt = time.Now().UTC()
	if err := s.repository.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to update filter: %w", err)
	}
	return f, nil
}

func (s *filterService) putArtifact(ctx context.Context, key, contentType string, body []byte) (*Artifact, error) {
	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		return nil, err
	}
	url, err := s.store.URL(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to generate artifact URL")
	}
	return &Artifact{Key: key, URL: url}, nil
}

func (s *filterService) observe(operation string, start time.Time, err *error) {
	s.metrics.ObserveOperation(operation, start, *err)
}

// PipelineOptions converts the configured pipeline parameters
func PipelineOptions(cfg config.PipelineConfig) Options {
	opts := DefaultOptions()
	opts.Synth.Steps = cfg.BezierSteps
	opts.Synth.CoarseStep = cfg.CoarseStep
	opts.Synth.FineStep = cfg.FineStep
	opts.Synth.ShiftLimit = cfg.ShiftLimit
	opts.Compose.NumberOfLines = cfg.NumberOfLines
	opts.Compose.GroupDelayScaling = cfg.GroupDelayScaling
	return opts
}
