// Package settings loads the dispatch policy from a YAML file and DISPATCH_*
// environment overrides. The file is watched and edits apply to the next sweep.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/policy"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const EnvPrefix = "DISPATCH"

// Keys as they appear in dispatch.yaml. The environment spelling is the
// upper-cased key with the DISPATCH_ prefix, e.g. DISPATCH_MAX_OFFER_ATTEMPTS.
const (
	KeyDistributionMode       = "distribution_mode"
	KeyMaxPickupDistanceKm    = "max_pickup_distance_km"
	KeyOfferTimeoutSeconds    = "offer_timeout_seconds"
	KeyMaxOfferAttempts       = "max_offer_attempts"
	KeyRejectionPenaltyPoints = "rejection_penalty_points"
	KeyClusterRadiusKm        = "cluster_radius_km"
	KeyMaxBatchSize           = "max_batch_size"
)

// PolicyProvider implements ports.PolicyProvider on top of viper. viper is
// read only at startup and from its own watcher goroutine; Current serves the
// last valid decoded policy.
type PolicyProvider struct {
	mu       sync.RWMutex
	v        *viper.Viper
	lastGood policy.Policy
	logger   *slog.Logger
}

// NewPolicyProvider reads path (optional; a missing file means defaults plus
// environment) and validates the result. A broken configuration at startup is
// an error; a broken edit later keeps the last valid policy in force.
// Environment overrides are applied whenever the file is decoded.
func NewPolicyProvider(path string, logger *slog.Logger) (*PolicyProvider, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	p := &PolicyProvider{
		v:      v,
		logger: logger.With("component", "policy_provider"),
	}

	watch := false
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read policy file %s: %w", path, err)
			}
			p.logger.Warn("policy file not found, using defaults and environment", "path", path)
		} else {
			watch = true
		}
	}

	pol, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("invalid dispatch policy: %w", err)
	}
	p.lastGood = pol

	if watch {
		v.OnConfigChange(p.onChange)
		v.WatchConfig()
	}
	return p, nil
}

func setDefaults(v *viper.Viper) {
	d := policy.Default()
	v.SetDefault(KeyDistributionMode, string(d.Mode))
	v.SetDefault(KeyMaxPickupDistanceKm, d.MaxPickupDistanceKm)
	v.SetDefault(KeyOfferTimeoutSeconds, int(d.OfferTimeout/time.Second))
	v.SetDefault(KeyMaxOfferAttempts, d.MaxOfferAttempts)
	v.SetDefault(KeyRejectionPenaltyPoints, d.RejectionPenaltyPoints)
	v.SetDefault(KeyClusterRadiusKm, d.ClusterRadiusKm)
	v.SetDefault(KeyMaxBatchSize, d.MaxBatchSize)
}

func decode(v *viper.Viper) (policy.Policy, error) {
	mode, err := policy.ParseMode(v.GetString(KeyDistributionMode))
	if err != nil {
		return policy.Policy{}, err
	}

	pol := policy.Policy{
		Mode:                   mode,
		MaxPickupDistanceKm:    v.GetFloat64(KeyMaxPickupDistanceKm),
		OfferTimeout:           time.Duration(v.GetInt(KeyOfferTimeoutSeconds)) * time.Second,
		MaxOfferAttempts:       v.GetInt(KeyMaxOfferAttempts),
		RejectionPenaltyPoints: v.GetFloat64(KeyRejectionPenaltyPoints),
		ClusterRadiusKm:        v.GetFloat64(KeyClusterRadiusKm),
		MaxBatchSize:           v.GetInt(KeyMaxBatchSize),
	}
	if err := pol.Validate(); err != nil {
		return policy.Policy{}, err
	}
	return pol, nil
}

// Current returns the policy decoded at startup or at the last valid reload.
func (p *PolicyProvider) Current(_ context.Context) (policy.Policy, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastGood, nil
}

// onChange runs on viper's watcher goroutine right after it re-read the file,
// the only place besides the constructor that touches p.v.
func (p *PolicyProvider) onChange(e fsnotify.Event) {
	pol, err := decode(p.v)
	if err != nil {
		p.logger.Error("reloaded dispatch policy is invalid, keeping the last valid one", "file", e.Name, "error", err)
		return
	}

	p.mu.Lock()
	p.lastGood = pol
	p.mu.Unlock()

	p.logger.Info("dispatch policy reloaded",
		"file", e.Name,
		"mode", pol.Mode,
		"offer_timeout", pol.OfferTimeout,
		"max_offer_attempts", pol.MaxOfferAttempts,
	)
}
