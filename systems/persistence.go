package systems

import (
	"encoding/json"

	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/logging"
	"github.com/quasilyte/gdata"
)

const tuningKey = "tuning"

// SavedTuning represents the motion tuning stored on disk
type SavedTuning struct {
	SmoothingRate   float64 `json:"smoothingRate"`
	MaxYawDegrees   float64 `json:"maxYawDegrees"`
	MaxPitchDegrees float64 `json:"maxPitchDegrees"`
	InvertYaw       bool    `json:"invertYaw"`
	InvertPitch     bool    `json:"invertPitch"`
	ShowHUD         bool    `json:"showHUD"`
}

var gdataManager *gdata.Manager
var gdataInitialized bool

// InitPersistence initializes the gdata manager for tuning storage
func InitPersistence(appName string) error {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		logging.WithComponent("persistence").WithError(err).Warn("[persistence] could not initialize persistence")
		return err
	}
	gdataManager = m
	gdataInitialized = true
	return nil
}

// LoadTuning loads tuning from disk. It returns nil when nothing was saved.
func LoadTuning() (*SavedTuning, error) {
	if !gdataInitialized || gdataManager == nil {
		return nil, nil
	}

	data, err := gdataManager.LoadItem(tuningKey)
	if err != nil {
		logging.WithComponent("persistence").WithError(err).Warn("[persistence] could not load tuning")
		return nil, nil
	}
	if len(data) == 0 {
		// Nothing saved yet, use defaults
		return nil, nil
	}

	var saved SavedTuning
	if err := json.Unmarshal(data, &saved); err != nil {
		logging.WithComponent("persistence").WithError(err).Warn("[persistence] could not parse saved tuning")
		return nil, err
	}
	return &saved, nil
}

// SaveTuning saves tuning to disk
func SaveTuning(t *SavedTuning) error {
	if !gdataInitialized || gdataManager == nil {
		return nil
	}

	data, err := json.Marshal(t)
	if err != nil {
		logging.WithComponent("persistence").WithError(err).Warn("[persistence] could not serialize tuning")
		return err
	}

	if err := gdataManager.SaveItem(tuningKey, data); err != nil {
		logging.WithComponent("persistence").WithError(err).Warn("[persistence] could not save tuning")
		return err
	}
	return nil
}

// CurrentTuning captures the live tuning from config.
func CurrentTuning(showHUD bool) *SavedTuning {
	return &SavedTuning{
		SmoothingRate:   cfg.Motion.SmoothingRate,
		MaxYawDegrees:   cfg.Motion.MaxYawDegrees,
		MaxPitchDegrees: cfg.Motion.MaxPitchDegrees,
		InvertYaw:       cfg.Motion.InvertYaw,
		InvertPitch:     cfg.Motion.InvertPitch,
		ShowHUD:         showHUD,
	}
}

// ApplyTuning copies saved tuning into config. Values that would not pass
// validation are ignored so a corrupt file cannot break startup.
func ApplyTuning(saved *SavedTuning) {
	if saved == nil {
		return
	}
	if saved.SmoothingRate > 0 && saved.SmoothingRate <= 1000 {
		cfg.Motion.SmoothingRate = saved.SmoothingRate
	}
	if saved.MaxYawDegrees > 0 && saved.MaxYawDegrees <= 90 {
		cfg.Motion.MaxYawDegrees = saved.MaxYawDegrees
	}
	if saved.MaxPitchDegrees > 0 && saved.MaxPitchDegrees <= 90 {
		cfg.Motion.MaxPitchDegrees = saved.MaxPitchDegrees
	}
	cfg.Motion.InvertYaw = saved.InvertYaw
	cfg.Motion.InvertPitch = saved.InvertPitch
	cfg.Debug.ShowHUD = saved.ShowHUD
}
