package episode

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/satsim/internal/satellite"
)

func TestEnsembleRun(t *testing.T) {
	build := func(seed int64) (*Runner, error) {
		return New(satellite.NewDefault(seed), constPolicy{satellite.Rest}), nil
	}

	ens := NewEnsemble(build, 4, 100)
	ens.SetParallelism(2)

	results, err := ens.Run(context.Background(), Config{MaxSteps: 20})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	for i, res := range results {
		want, err := Run(context.Background(), satellite.NewDefault(100+int64(i)), constPolicy{satellite.Rest}, nil, 20)
		if err != nil {
			t.Fatal(err)
		}
		if res.Final() != want.Final() {
			t.Errorf("episode %d does not match a standalone run with seed %d", i, 100+i)
		}
	}

	if results[0].Final().Gyros == results[1].Final().Gyros {
		t.Error("episodes with different seeds should see different noise")
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	build := func(seed int64) (*Runner, error) {
		if seed == 3 {
			return nil, boom
		}
		return New(satellite.NewDefault(seed), constPolicy{}), nil
	}

	_, err := NewEnsemble(build, 5, 0).Run(context.Background(), Config{MaxSteps: 5})
	if !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestEnsembleInvalid(t *testing.T) {
	build := func(seed int64) (*Runner, error) { return nil, nil }
	if _, err := NewEnsemble(build, 0, 0).Run(context.Background(), DefaultConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
