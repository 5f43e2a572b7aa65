package names

import (
	"context"
	"encoding/json"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"sisnames/app/internal/cache"
	"sisnames/app/internal/llm"
)

// Service exposes name-variant generation with caching.
type Service interface {
	Generate(ctx context.Context, query Query) (*Result, error)
}

// Options wires the service with its dependencies.
type Options struct {
	Cache         cache.Cache
	Generator     llm.VariantGenerator
	Logger        *logrus.Logger
	SentryHub     *sentry.Hub
	ModelID       string
	APIVersion    string
	CacheTTL      time.Duration
	MaxNameLength int
}

const (
	defaultAPIVersion = "v1"
	defaultCacheTTL   = 7 * 24 * time.Hour
)

type service struct {
	cache         cache.Cache
	generator     llm.VariantGenerator
	logger        *logrus.Logger
	sentryHub     *sentry.Hub
	modelID       string
	apiVersion    string
	cacheTTL      time.Duration
	maxNameLength int
}

var _ Service = (*service)(nil)

// NewService constructs the name-variant service.
func NewService(opts Options) (Service, error) {
	if opts.Cache == nil {
		return nil, eris.New("cache is required")
	}
	if opts.Generator == nil {
		return nil, eris.New("variant generator is required")
	}
	if opts.ModelID == "" {
		return nil, eris.New("model id is required")
	}

	apiVersion := opts.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &service{
		cache:         opts.Cache,
		generator:     opts.Generator,
		logger:        opts.Logger,
		sentryHub:     opts.SentryHub,
		modelID:       opts.ModelID,
		apiVersion:    apiVersion,
		cacheTTL:      ttl,
		maxNameLength: opts.MaxNameLength,
	}, nil
}

// Generate validates the query, answers from cache when possible, and
// otherwise calls the upstream generator and populates the cache. Cache
// faults never fail the request; only validation and upstream failures do.
func (s *service) Generate(ctx context.Context, query Query) (*Result, error) {
	if err := Validate(query, s.maxNameLength); err != nil {
		return nil, err
	}

	key := cache.Key(s.modelID, s.apiVersion, query.Name, query.Limit)

	if cached, ok := s.cache.Get(ctx, key); ok {
		var result Result
		if err := json.Unmarshal(cached, &result); err == nil {
			if s.logger != nil {
				s.logger.WithField("key", key).Debug("serving name variants from cache")
			}
			return &result, nil
		}
		// corrupted entry, fall through to regeneration
		if s.logger != nil {
			s.logger.WithField("key", key).Warn("discarding corrupted cache entry")
		}
	}

	candidates, err := s.generator.Variants(ctx, query.Name, query.Limit)
	if err != nil {
		s.recordError(logrus.Fields{"name": query.Name}, err, "upstream variant generation failed")
		return nil, eris.Wrap(err, "generating name variants")
	}

	if candidates == nil {
		candidates = []string{}
	}

	result := &Result{Name: query.Name, Candidates: candidates}

	if encoded, marshalErr := json.Marshal(result); marshalErr == nil {
		s.cache.Set(ctx, key, encoded, s.cacheTTL)
	}

	return result, nil
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
