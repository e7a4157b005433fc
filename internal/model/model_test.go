package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotationModeString(t *testing.T) {
	tests := []struct {
		mode RotationMode
		want string
	}{
		{RotationFixed0, "FIXED_0"},
		{RotationDiscrete90, "DISCRETE_90"},
		{RotationDiscrete45, "DISCRETE_45"},
		{RotationFree, "FREE"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("%d.String() = %s, want %s", tt.mode, got, tt.want)
		}
		parsed, err := ParseRotationMode(tt.want)
		require.NoError(t, err)
		assert.Equal(t, tt.mode, parsed)
	}
}

func TestParseRotationModeRejectsUnknown(t *testing.T) {
	_, err := ParseRotationMode("DISCRETE_30")
	assert.Error(t, err)
}

func TestRotationModeJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Mode RotationMode `json:"mode"`
	}{RotationDiscrete45})
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"DISCRETE_45"}`, string(data))

	var decoded struct {
		Mode RotationMode `json:"mode"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"free"}`), &decoded))
	assert.Equal(t, RotationFree, decoded.Mode)
}

func TestAllRotationModesOrder(t *testing.T) {
	modes := AllRotationModes()
	require.Len(t, modes, 4)
	assert.Equal(t, []RotationMode{RotationFixed0, RotationDiscrete90, RotationDiscrete45, RotationFree}, modes)
	assert.Nil(t, RotationFree.Angles())
	assert.Equal(t, []float64{0, 45, 90, 135}, RotationDiscrete45.Angles())
}

func TestNewRectangle(t *testing.T) {
	r := NewRectangle("Lid", 20, 10)
	assert.Len(t, r.ID, 8)
	assert.Equal(t, "Lid", r.Label)
	assert.Equal(t, 200.0, r.Area())
	assert.False(t, r.IsSquare())
	assert.True(t, NewRectangle("", 5, 5).IsSquare())
}

func TestPackingConfigValidate(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name    string
		cfg     PackingConfig
		wantErr error
	}{
		{"valid", PackingConfig{Rectangles: []Rectangle{{Width: 1, Height: 2}}}, nil},
		{"empty", PackingConfig{}, ErrNoRectangles},
		{"zero width", PackingConfig{Rectangles: []Rectangle{{Width: 0, Height: 2}}}, ErrInvalidDimension},
		{"nan height", PackingConfig{Rectangles: []Rectangle{{Width: 1, Height: math.NaN()}}}, ErrInvalidDimension},
		{"negative inner", PackingConfig{Rectangles: []Rectangle{{Width: 1, Height: 1}}, PaddingInner: -0.5}, ErrNegativePadding},
		{"negative outer", PackingConfig{Rectangles: []Rectangle{{Width: 1, Height: 1}}, PaddingOuter: -0.5}, ErrNegativePadding},
		{"negative target", PackingConfig{Rectangles: []Rectangle{{Width: 1, Height: 1}}, TargetRadius: &neg}, ErrNegativeTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestPackingConfigTarget(t *testing.T) {
	var cfg PackingConfig
	assert.False(t, cfg.HasTarget())
	assert.True(t, math.IsInf(cfg.Target(), 1))

	cfg.SetTarget(12.5)
	assert.True(t, cfg.HasTarget())
	assert.Equal(t, 12.5, cfg.Target())

	cfg.ClearTarget()
	assert.False(t, cfg.HasTarget())
}

func TestPackingConfigLabels(t *testing.T) {
	cfg := PackingConfig{Rectangles: []Rectangle{{Label: "A"}, {}, {Label: "C"}}}
	assert.Equal(t, []string{"A", "Rect_2", "C"}, cfg.Labels())
}

func TestPlacementCorners(t *testing.T) {
	p := Placement{Rectangle: Rectangle{Width: 4, Height: 2}, X: 1, Y: 1}
	c := p.Corners()
	assert.InDelta(t, 3.0, c[0].X, 1e-12)
	assert.InDelta(t, 2.0, c[0].Y, 1e-12)
	assert.InDelta(t, -1.0, c[2].X, 1e-12)
	assert.InDelta(t, 0.0, c[2].Y, 1e-12)

	p.Angle = 90
	c = p.Corners()
	// top-right offset (2, 1) rotated a quarter turn is (-1, 2)
	assert.InDelta(t, 0.0, c[0].X, 1e-12)
	assert.InDelta(t, 3.0, c[0].Y, 1e-12)
}

func TestSolverSettingsDefaults(t *testing.T) {
	s := DefaultSolverSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, 1000.0, s.ContainmentWeight)
	assert.Equal(t, 10000.0, s.OverlapWeight)
	assert.Equal(t, 2000, s.Budget(RotationFixed0).MaxIter)
	assert.Equal(t, 20, s.Budget(RotationFixed0).PopSize)
	assert.Equal(t, 600, s.Budget(RotationDiscrete90).MaxIter)
	assert.Equal(t, 10, s.Budget(RotationDiscrete45).PopSize)
	assert.Equal(t, 1000, s.Budget(RotationFree).MaxIter)
	assert.Equal(t, 0.05, s.Budget(RotationFree).Tol)
}

func TestSolverSettingsValidateRejects(t *testing.T) {
	s := DefaultSolverSettings()
	s.Free.MaxIter = 0
	assert.Error(t, s.Validate())

	s = DefaultSolverSettings()
	s.Crossover = 1.5
	assert.Error(t, s.Validate())

	s = DefaultSolverSettings()
	s.MutationMin, s.MutationMax = 0.9, 0.5
	assert.Error(t, s.Validate())
}

func TestNewProjectDefaults(t *testing.T) {
	p := NewProject()
	assert.Equal(t, "Untitled", p.Name)
	assert.True(t, p.MultiStage)
	assert.NotNil(t, p.Config.Rectangles)
	assert.Nil(t, p.Result)
	assert.Equal(t, "Generic", p.CNC.GCodeProfile)
}

func TestAllProfilesIncludesBuiltInAndCustom(t *testing.T) {
	CustomProfiles = nil

	builtInCount := len(GCodeProfiles)
	all := AllProfiles()
	if len(all) != builtInCount {
		t.Errorf("expected %d profiles with no custom, got %d", builtInCount, len(all))
	}

	CustomProfiles = []GCodeProfile{
		{Name: "Custom1", Description: "Test custom"},
	}
	defer func() { CustomProfiles = nil }()

	all = AllProfiles()
	if len(all) != builtInCount+1 {
		t.Errorf("expected %d profiles with 1 custom, got %d", builtInCount+1, len(all))
	}
}

func TestGetProfileFindsCustom(t *testing.T) {
	CustomProfiles = []GCodeProfile{
		{Name: "MyCustom", Description: "Custom profile", RapidMove: "G0", FeedMove: "G1"},
	}
	defer func() { CustomProfiles = nil }()

	p := GetProfile("MyCustom")
	if p.Name != "MyCustom" {
		t.Errorf("expected MyCustom, got %s", p.Name)
	}
}

func TestGetProfileFallsBackToGeneric(t *testing.T) {
	p := GetProfile("NonExistent")
	if p.Name != "Generic" {
		t.Errorf("expected Generic fallback, got %s", p.Name)
	}
}

func TestAddCustomProfileRejectsBuiltInName(t *testing.T) {
	CustomProfiles = nil
	defer func() { CustomProfiles = nil }()

	if err := AddCustomProfile(GCodeProfile{Name: "Grbl"}); err == nil {
		t.Fatal("expected error when adding profile with built-in name")
	}
}

func TestAddCustomProfileUpdatesExisting(t *testing.T) {
	CustomProfiles = nil
	defer func() { CustomProfiles = nil }()

	_ = AddCustomProfile(GCodeProfile{Name: "MyProfile", Description: "Version 1"})
	_ = AddCustomProfile(GCodeProfile{Name: "MyProfile", Description: "Version 2"})

	if len(CustomProfiles) != 1 {
		t.Fatalf("expected 1 custom profile after update, got %d", len(CustomProfiles))
	}
	if CustomProfiles[0].Description != "Version 2" {
		t.Errorf("expected updated description, got %s", CustomProfiles[0].Description)
	}
}

func TestRemoveCustomProfile(t *testing.T) {
	CustomProfiles = []GCodeProfile{{Name: "ToRemove"}}
	defer func() { CustomProfiles = nil }()

	if err := RemoveCustomProfile("ToRemove"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(CustomProfiles) != 0 {
		t.Error("profile was not removed")
	}
	if err := RemoveCustomProfile("Grbl"); err == nil {
		t.Error("expected error when removing built-in profile")
	}
	if err := RemoveCustomProfile("NonExistent"); err == nil {
		t.Error("expected error when removing non-existent profile")
	}
}

func TestNewCustomProfile(t *testing.T) {
	p := NewCustomProfile("Test Custom")
	if p.Name != "Test Custom" {
		t.Errorf("expected name 'Test Custom', got %s", p.Name)
	}
	if p.IsBuiltIn {
		t.Error("custom profile should not be built-in")
	}
	if p.ArcCW != "G2" {
		t.Errorf("expected G2 arc move from Generic, got %s", p.ArcCW)
	}
	for _, b := range GCodeProfiles {
		if !b.IsBuiltIn {
			t.Errorf("built-in profile %s should have IsBuiltIn=true", b.Name)
		}
	}
}
