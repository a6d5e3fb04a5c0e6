package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/grading"
	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
)

type Service struct {
	Config *Config
	Store  store.Store
	Engine *grading.Engine
	Auth   *Auth
	Cache  *ReportCache
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewServiceFromConfig(config)
}

// NewServiceFromConfig opens the store, checks the seeded vocabularies and
// wires the engine with optional auth and report cache.
func NewServiceFromConfig(config *Config) (*Service, error) {
	st, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	if err := st.CheckVocabulary(context.Background()); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to verify reference data: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	svc := &Service{
		Config: config,
		Store:  st,
		Auth:   auth,
	}

	var opts []grading.Option
	if config.Cache.Enabled {
		cache, err := NewReportCacheFromConfig(config)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("failed to init report cache: %w", err)
		}
		svc.Cache = cache
		opts = append(opts, grading.WithReportCache(cache))
	}
	svc.Engine = grading.NewEngine(st, opts...)

	logger.Info.Printf("Service ready (auth=%t, cache=%t)", auth.Enabled(), svc.Cache != nil)
	return svc, nil
}

// Authenticate resolves the caller from the user id header and, when auth is
// enabled, checks the bearer token issued for role and user.
func (s *Service) Authenticate(r *http.Request, role models.Role) (string, error) {
	user := strings.TrimSpace(r.Header.Get(s.Config.API.UserIDHeader))
	if user == "" {
		return "", fmt.Errorf("missing %s header", s.Config.API.UserIDHeader)
	}

	if !s.Auth.Enabled() {
		return user, nil
	}

	authHeader := r.Header.Get(s.Auth.TokenHeader())
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	if err := s.Auth.ValidateToken(r.Context(), role, user, token); err != nil {
		return "", err
	}
	return user, nil
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
