package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stwalsh4118/wardlens/internal/census"
	"github.com/stwalsh4118/wardlens/internal/comparison"
	"github.com/stwalsh4118/wardlens/internal/datasource"
	"github.com/stwalsh4118/wardlens/internal/dictionary"
	"github.com/stwalsh4118/wardlens/internal/incident"
	"github.com/stwalsh4118/wardlens/internal/logger"
	"github.com/stwalsh4118/wardlens/internal/models"
	"github.com/stwalsh4118/wardlens/internal/retail"
)

// Service-level errors
var (
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	ErrUnsupportedDomain  = errors.New("domain has no survey dataset")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidTop         = errors.New("top must be at least 1")
)

// LoadMode selects whether a request waits for missing datasets.
type LoadMode int

const (
	// Block waits until every dependency is loaded.
	Block LoadMode = iota
	// NonBlocking returns a loading bundle and fetches in the background
	// when any dependency is not cached yet.
	NonBlocking
)

// Clock returns the current time.
type Clock func() time.Time

// IncidentQuery narrows the incident view. Year 0 means every year; Top 0
// means the configured default.
type IncidentQuery struct {
	Top  int
	Year int
}

// AnalysisService computes the dashboard views from raw datasets.
type AnalysisService interface {
	// DistrictComparison joins the economic, housing and social extracts.
	DistrictComparison(ctx context.Context, mode LoadMode) (*ComparisonBundle, error)

	// FoodAccess summarizes active SNAP retailers and the food access atlas.
	FoodAccess(ctx context.Context, mode LoadMode) (*FoodAccessBundle, error)

	// Incidents aggregates crime incidents.
	// Returns ErrInvalidTop or ErrInvalidYear for bad query values.
	Incidents(ctx context.Context, mode LoadMode, q IncidentQuery) (*IncidentBundle, error)

	// DomainMetrics compares every dictionary field of a survey domain,
	// optionally restricted to one category.
	// Returns ErrUnsupportedDomain for domains without a survey extract.
	DomainMetrics(ctx context.Context, mode LoadMode, domain dictionary.Domain, category string) (*MetricsBundle, error)

	// DataDictionary tags every survey metric with its source. Individual
	// extract failures are reported as unavailable sources, not errors.
	DataDictionary(ctx context.Context, mode LoadMode) (*DictionaryBundle, error)

	// MapLayers builds boundary and marker layers. Missing boundaries are
	// tolerated; markers then carry no boundary-derived district.
	MapLayers(ctx context.Context, mode LoadMode, q MapQuery) (*MapLayersBundle, error)

	// Dictionary returns the field dictionary in use.
	Dictionary() *dictionary.Dictionary

	// Districts returns the compared districts.
	Districts() models.DistrictPair

	// Ping checks the underlying data source.
	Ping(ctx context.Context) error

	// FlushCache drops every cached dataset.
	FlushCache()
}

// Options configures an AnalysisService. Zero fields take defaults.
type Options struct {
	Districts   models.DistrictPair
	Catalog     datasource.Catalog
	PostalCodes []string
	Location    *time.Location
	TopOffenses int
	Dictionary  *dictionary.Dictionary
	Clock       Clock
}

type analysisService struct {
	loader      *datasource.Loader
	log         *logger.Logger
	districts   models.DistrictPair
	catalog     datasource.Catalog
	postalCodes []string
	topOffenses int
	dict        *dictionary.Dictionary
	clock       Clock
	census      *census.Transformer
	incidents   *incident.Analyzer
}

// NewAnalysisService creates an AnalysisService reading through loader.
func NewAnalysisService(loader *datasource.Loader, opts Options, log *logger.Logger) AnalysisService {
	if opts.Districts.A.Number == 0 && opts.Districts.B.Number == 0 {
		opts.Districts = models.NewDistrictPair(7, 8, "Ward")
	}
	if opts.Catalog == (datasource.Catalog{}) {
		opts.Catalog = datasource.DefaultCatalog()
	}
	if opts.PostalCodes == nil {
		opts.PostalCodes = retail.DefaultPostalCodes
	}
	if opts.TopOffenses <= 0 {
		opts.TopOffenses = incident.DefaultTopOffenses
	}
	if opts.Dictionary == nil {
		opts.Dictionary = dictionary.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}

	return &analysisService{
		loader:      loader,
		log:         log.WithComponent("analysis"),
		districts:   opts.Districts,
		catalog:     opts.Catalog,
		postalCodes: opts.PostalCodes,
		topOffenses: opts.TopOffenses,
		dict:        opts.Dictionary,
		clock:       opts.Clock,
		census:      census.NewTransformer(opts.Districts),
		incidents:   incident.NewAnalyzer(opts.Districts, opts.Location),
	}
}

func (s *analysisService) Dictionary() *dictionary.Dictionary {
	return s.dict
}

func (s *analysisService) Districts() models.DistrictPair {
	return s.districts
}

func (s *analysisService) Ping(ctx context.Context) error {
	return s.loader.Source().Ping(ctx)
}

func (s *analysisService) FlushCache() {
	s.loader.Flush()
}

func (s *analysisService) DistrictComparison(ctx context.Context, mode LoadMode) (*ComparisonBundle, error) {
	econName, housingName, socialName := s.catalog.Economic, s.catalog.Housing, s.catalog.Social

	payloads, loading, err := s.gather(ctx, mode, []string{econName, housingName, socialName}, nil)
	if err != nil {
		return nil, err
	}
	if loading {
		return &ComparisonBundle{IsLoading: true}, nil
	}

	econ, err := decodeRecords(econName, payloads)
	if err != nil {
		return nil, err
	}
	housing, err := decodeRecords(housingName, payloads)
	if err != nil {
		return nil, err
	}
	social, err := decodeRecords(socialName, payloads)
	if err != nil {
		return nil, err
	}

	joined := s.census.Join(econ, housing, social)
	for _, u := range joined.Unjoined {
		s.log.Warn("District record not joined", map[string]interface{}{
			"record_id": u.RecordID,
			"district":  u.District,
			"reason":    u.Reason,
		})
	}

	charts := s.census.Charts(joined.Districts)
	ref := Citywide()

	s.log.Debug("District comparison computed", map[string]interface{}{
		"districts": len(joined.Districts),
		"unjoined":  len(joined.Unjoined),
	})

	return &ComparisonBundle{
		Districts:          joined.Districts,
		EducationBreakdown: s.census.EducationBreakdown(social),
		Charts:             &charts,
		ComparisonChart:    s.census.ComparisonChart(joined.Districts),
		Unjoined:           joined.Unjoined,
		Reference:          &ref,
	}, nil
}

func (s *analysisService) FoodAccess(ctx context.Context, mode LoadMode) (*FoodAccessBundle, error) {
	retailName, atlasName := s.catalog.Retailers, s.catalog.FoodAccess

	payloads, loading, err := s.gather(ctx, mode, []string{retailName, atlasName}, nil)
	if err != nil {
		return nil, err
	}
	if loading {
		return &FoodAccessBundle{IsLoading: true}, nil
	}

	retailers, err := decode[[]models.Retailer](retailName, payloads)
	if err != nil {
		return nil, err
	}
	tracts, err := decodeRecords(atlasName, payloads)
	if err != nil {
		return nil, err
	}

	active := retail.FilterActive(retailers, s.clock())
	byPostal := retail.ByPostalCode(active, s.postalCodes)
	chart := retail.PostalCodeChart(byPostal)
	summary := retail.Summarize(active)
	total := len(retailers)

	return &FoodAccessBundle{
		ByPostalCode:     byPostal,
		StoreTypes:       retail.Distribution(active),
		Stats:            &summary,
		PostalCodeChart:  &chart,
		ActiveRetailers:  active,
		TotalRetailers:   &total,
		FoodAccessTracts: tracts,
	}, nil
}

func (s *analysisService) Incidents(ctx context.Context, mode LoadMode, q IncidentQuery) (*IncidentBundle, error) {
	if q.Top < 0 {
		return nil, ErrInvalidTop
	}
	if q.Year < 0 {
		return nil, ErrInvalidYear
	}
	top := q.Top
	if top == 0 {
		top = s.topOffenses
	}

	name := s.catalog.Incidents
	payloads, loading, err := s.gather(ctx, mode, []string{name}, nil)
	if err != nil {
		return nil, err
	}
	if loading {
		return &IncidentBundle{IsLoading: true}, nil
	}

	all, err := decode[[]models.Incident](name, payloads)
	if err != nil {
		return nil, err
	}

	incidents := all
	var year *int
	if q.Year != 0 {
		incidents = s.incidents.FilterByYear(all, q.Year)
		year = &q.Year
	}

	stats := s.incidents.Stats(incidents)
	topOffenses := incident.TopOffenses(stats.ByOffense, top)

	return &IncidentBundle{
		Year:         year,
		Stats:        &stats,
		TopOffenses:  topOffenses,
		ByCategory:   incident.ByCategory(stats.ByOffense),
		OffenseChart: incident.ChartRows(topOffenses, incident.OffenseLabel),
		ShiftChart:   incident.ChartRows(stats.ByShift, incident.ShiftLabel),
		MethodChart:  incident.ChartRows(stats.ByMethod, incident.MethodLabel),
		YearlyChart:  stats.TotalByYear,
		Sparklines: &Sparklines{
			DistrictA: incident.Sparkline(stats.TotalByYear, models.SideA),
			DistrictB: incident.Sparkline(stats.TotalByYear, models.SideB),
		},
	}, nil
}

func (s *analysisService) DomainMetrics(ctx context.Context, mode LoadMode, domain dictionary.Domain, category string) (*MetricsBundle, error) {
	name := s.catalog.Survey(domain)
	if name == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDomain, domain)
	}
	fields, err := s.dict.Slice(domain)
	if err != nil {
		return nil, err
	}

	payloads, loading, err := s.gather(ctx, mode, []string{name}, nil)
	if err != nil {
		return nil, err
	}
	if loading {
		return &MetricsBundle{IsLoading: true, Domain: domain, Category: category}, nil
	}

	records, err := decodeRecords(name, payloads)
	if err != nil {
		return nil, err
	}

	metrics := comparison.Build(records, fields, s.districts)
	categories := comparison.Categories(metrics)
	if category != "" {
		metrics = comparison.Filter(metrics, category)
	}

	bundle := &MetricsBundle{
		Domain:     domain,
		Category:   category,
		Metrics:    metrics,
		Categories: categories,
		ByCategory: comparison.Ordered(metrics),
	}
	if src, ok := s.dict.Source(domain); ok {
		bundle.Source = &src
	}
	return bundle, nil
}

func (s *analysisService) DataDictionary(ctx context.Context, mode LoadMode) (*DictionaryBundle, error) {
	names := make([]string, 0, len(dictionary.SurveyDomains))
	for _, d := range dictionary.SurveyDomains {
		names = append(names, s.catalog.Survey(d))
	}

	payloads, loading, err := s.gather(ctx, mode, nil, names)
	if err != nil {
		return nil, err
	}
	if loading {
		return &DictionaryBundle{IsLoading: true}, nil
	}

	metrics := make([]models.SourcedMetric, 0)
	sources := make([]models.DataSource, 0, len(dictionary.SurveyDomains))

	for _, domain := range dictionary.SurveyDomains {
		name := s.catalog.Survey(domain)
		src, _ := s.dict.Source(domain)
		entry := models.DataSource{
			Name:        src.Name,
			File:        name,
			Prefix:      src.Prefix,
			Description: src.Description,
		}

		if data, ok := payloads[name]; ok {
			records, err := datasource.DecodeRecords(data)
			if err != nil {
				s.log.Warn("Survey extract unreadable", map[string]interface{}{
					"dataset": name,
					"error":   err.Error(),
				})
			} else {
				fields, _ := s.dict.Slice(domain)
				domainMetrics := comparison.Build(records, fields, s.districts)
				for _, m := range domainMetrics {
					metrics = append(metrics, models.SourcedMetric{MetricComparison: m, Source: src.Tag})
				}
				entry.MetricsCount = len(domainMetrics)
				entry.Available = true
			}
		}
		sources = append(sources, entry)
	}

	return &DictionaryBundle{Metrics: metrics, DataSources: sources}, nil
}

// gather collects the payloads of required and optional datasets. A failed
// required dataset fails the call with ErrDatasetUnavailable; a failed
// optional dataset is logged and left out of the result. In NonBlocking mode
// it reports loading, after starting background fetches, while any
// dependency is still outstanding. Without a cache nothing a background fetch
// returns is kept, so NonBlocking waits like Block.
func (s *analysisService) gather(ctx context.Context, mode LoadMode, required, optional []string) (map[string][]byte, bool, error) {
	if mode == NonBlocking && s.loader.Caching() {
		ready, err := s.loader.Status(required...)
		if err != nil {
			return nil, false, unavailable(err)
		}

		pending := !ready
		available := make([]string, 0, len(optional))
		for _, name := range optional {
			ok, err := s.loader.Status(name)
			switch {
			case err != nil:
				s.log.Warn("Optional dataset unavailable", map[string]interface{}{
					"dataset": name,
					"error":   err.Error(),
				})
			case !ok:
				pending = true
				available = append(available, name)
			default:
				available = append(available, name)
			}
		}

		if pending {
			s.loader.Prefetch(append(append([]string{}, required...), available...)...)
			return nil, true, nil
		}
		optional = available
	}

	payloads, err := s.loader.LoadAll(ctx, required...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, false, unavailable(err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range optional {
		name := name
		g.Go(func() error {
			data, err := s.loader.Load(gctx, name)
			if err != nil {
				s.log.Warn("Optional dataset unavailable", map[string]interface{}{
					"dataset": name,
					"error":   err.Error(),
				})
				return nil
			}
			mu.Lock()
			payloads[name] = data
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return payloads, false, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
}

func decodeRecords(name string, payloads map[string][]byte) ([]models.RawRecord, error) {
	records, err := datasource.DecodeRecords(payloads[name])
	if err != nil {
		return nil, unavailable(&datasource.DecodeError{Dataset: name, Err: err})
	}
	return records, nil
}

func decode[T any](name string, payloads map[string][]byte) (T, error) {
	v, err := datasource.Decode[T](payloads[name])
	if err != nil {
		return v, unavailable(&datasource.DecodeError{Dataset: name, Err: err})
	}
	return v, nil
}
