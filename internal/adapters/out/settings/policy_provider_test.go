package settings_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/settings"
	"dispatch/internal/core/domain/model/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePolicy(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestPolicyProvider_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	writePolicy(t, path, `
distribution_mode: all
max_pickup_distance_km: 7.5
offer_timeout_seconds: 45
max_offer_attempts: 4
rejection_penalty_points: 12
cluster_radius_km: 2
max_batch_size: 3
`)

	p, err := settings.NewPolicyProvider(path, discardLogger())
	require.NoError(t, err)

	got, err := p.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, policy.Policy{
		Mode:                   policy.ModeAll,
		MaxPickupDistanceKm:    7.5,
		OfferTimeout:           45 * time.Second,
		MaxOfferAttempts:       4,
		RejectionPenaltyPoints: 12,
		ClusterRadiusKm:        2,
		MaxBatchSize:           3,
	}, got)
}

func TestPolicyProvider_DefaultsWithoutFile(t *testing.T) {
	t.Run("no path", func(t *testing.T) {
		p, err := settings.NewPolicyProvider("", discardLogger())
		require.NoError(t, err)

		got, err := p.Current(t.Context())
		require.NoError(t, err)
		assert.Equal(t, policy.Default(), got)
	})

	t.Run("missing file", func(t *testing.T) {
		var logs bytes.Buffer
		p, err := settings.NewPolicyProvider(filepath.Join(t.TempDir(), "absent.yaml"),
			slog.New(slog.NewTextHandler(&logs, nil)))
		require.NoError(t, err)
		assert.Contains(t, logs.String(), "component=policy_provider")

		got, err := p.Current(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 60*time.Second, got.OfferTimeout)
	})
}

func TestPolicyProvider_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	writePolicy(t, path, "max_offer_attempts: 2\n")

	t.Setenv("DISPATCH_MAX_OFFER_ATTEMPTS", "6")
	t.Setenv("DISPATCH_DISTRIBUTION_MODE", "MANUAL")

	p, err := settings.NewPolicyProvider(path, discardLogger())
	require.NoError(t, err)

	got, err := p.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 6, got.MaxOfferAttempts)
	assert.Equal(t, policy.ModeManual, got.Mode)
	assert.False(t, got.Automatic())
}

func TestPolicyProvider_RejectsInvalidStartupConfig(t *testing.T) {
	tests := map[string]string{
		"unknown mode":      "distribution_mode: random\n",
		"zero attempts":     "max_offer_attempts: 0\n",
		"batch of one":      "max_batch_size: 1\n",
		"negative distance": "max_pickup_distance_km: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dispatch.yaml")
			writePolicy(t, path, body)

			_, err := settings.NewPolicyProvider(path, discardLogger())
			assert.Error(t, err)
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dispatch.yaml")
		writePolicy(t, path, "max_offer_attempts: [\n")

		_, err := settings.NewPolicyProvider(path, discardLogger())
		assert.Error(t, err)
	})
}

func TestPolicyProvider_KeepsLastValidPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	writePolicy(t, path, "offer_timeout_seconds: 60\n")

	p, err := settings.NewPolicyProvider(path, discardLogger())
	require.NoError(t, err)

	writePolicy(t, path, "max_offer_attempts: -3\n")
	time.Sleep(300 * time.Millisecond)

	got, err := p.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, policy.DefaultMaxOfferAttempts, got.MaxOfferAttempts)
	assert.Equal(t, 60*time.Second, got.OfferTimeout)

	writePolicy(t, path, "offer_timeout_seconds: 20\n")

	assert.Eventually(t, func() bool {
		got, err := p.Current(t.Context())
		return err == nil && got.OfferTimeout == 20*time.Second
	}, 5*time.Second, 50*time.Millisecond)
}

func TestPolicyProvider_LaterEnvironmentChangesWaitForReload(t *testing.T) {
	p, err := settings.NewPolicyProvider("", discardLogger())
	require.NoError(t, err)

	t.Setenv("DISPATCH_MAX_OFFER_ATTEMPTS", "7")

	got, err := p.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, policy.DefaultMaxOfferAttempts, got.MaxOfferAttempts)
}

func TestPolicyProvider_HotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	writePolicy(t, path, "offer_timeout_seconds: 60\n")

	p, err := settings.NewPolicyProvider(path, discardLogger())
	require.NoError(t, err)

	writePolicy(t, path, "offer_timeout_seconds: 30\n")

	assert.Eventually(t, func() bool {
		got, err := p.Current(t.Context())
		return err == nil && got.OfferTimeout == 30*time.Second
	}, 5*time.Second, 50*time.Millisecond)
}

// Run with -race: readers and the watcher must not share viper state.
func TestPolicyProvider_ConcurrentReadsDuringReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	writePolicy(t, path, "offer_timeout_seconds: 60\n")

	p, err := settings.NewPolicyProvider(path, discardLogger())
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				got, currentErr := p.Current(context.Background())
				if currentErr != nil || got.Validate() != nil {
					t.Errorf("Current returned an unusable policy: %v", currentErr)
					return
				}
			}
		}()
	}

	for i := range 50 {
		writePolicy(t, path, fmt.Sprintf("offer_timeout_seconds: %d\n", 10+i))
		time.Sleep(5 * time.Millisecond)
	}
	writePolicy(t, path, "offer_timeout_seconds: 90\n")

	assert.Eventually(t, func() bool {
		got, err := p.Current(t.Context())
		return err == nil && got.OfferTimeout == 90*time.Second
	}, 5*time.Second, 50*time.Millisecond)
	close(done)
	wg.Wait()
}
