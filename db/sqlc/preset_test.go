package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/banachtech/binotree/util"
	"github.com/stretchr/testify/require"
)

func createRandomPreset(t *testing.T) Preset {
	arg := UpsertPresetParams{
		Name:  util.RandomTicker(),
		Drift: util.RandomFloat(0, 0.3),
		Vol:   util.RandomFloat(0.05, 0.5),
		Rate:  util.RandomFloat(0, 0.05),
		Spot:  util.RandomFloat(1, 1000),
	}
	preset, err := testQueries.UpsertPreset(context.Background(), arg)
	require.NoError(t, err)
	require.NotEmpty(t, preset)

	require.Equal(t, arg.Name, preset.Name)
	require.Equal(t, arg.Drift, preset.Drift)
	require.Equal(t, arg.Vol, preset.Vol)
	require.Equal(t, arg.Rate, preset.Rate)
	require.Equal(t, arg.Spot, preset.Spot)
	require.NotZero(t, preset.UpdatedAt)
	return preset
}

func TestUpsertPreset(t *testing.T) {
	preset := createRandomPreset(t)

	arg := UpsertPresetParams{Name: preset.Name, Drift: 0.1, Vol: 0.2, Rate: 0.01, Spot: 42}
	updated, err := testQueries.UpsertPreset(context.Background(), arg)
	require.NoError(t, err)
	require.Equal(t, preset.Name, updated.Name)
	require.Equal(t, 42.0, updated.Spot)
	require.False(t, updated.UpdatedAt.Before(preset.UpdatedAt))
}

func TestGetPreset(t *testing.T) {
	preset := createRandomPreset(t)
	got, err := testQueries.GetPreset(context.Background(), preset.Name)
	require.NoError(t, err)
	require.Equal(t, preset.Name, got.Name)
	require.Equal(t, preset.Spot, got.Spot)

	require.NoError(t, testQueries.DeletePreset(context.Background(), preset.Name))
	_, err = testQueries.GetPreset(context.Background(), preset.Name)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListPresets(t *testing.T) {
	createRandomPreset(t)
	presets, err := testQueries.ListPresets(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, presets)
	for i := 1; i < len(presets); i++ {
		require.Less(t, presets[i-1].Name, presets[i].Name)
	}
}

func TestGetPresets(t *testing.T) {
	store := NewStore(testDB)
	a, b := createRandomPreset(t), createRandomPreset(t)

	n := 5
	errs := make(chan error)
	results := make(chan []Preset)

	// run n concurrent transactions
	for i := 0; i < n; i++ {
		go func() {
			result, err := store.GetPresets(context.Background(), []string{a.Name, b.Name})
			errs <- err
			results <- result
		}()
	}
	for i := 0; i < n; i++ {
		err := <-errs
		require.NoError(t, err)
		result := <-results
		require.Len(t, result, 2)
		require.Equal(t, a.Name, result[0].Name)
		require.Equal(t, b.Name, result[1].Name)
	}

	_, err := store.GetPresets(context.Background(), []string{a.Name, util.RandomString(12)})
	require.ErrorIs(t, err, sql.ErrNoRows)
}
