package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run       RunMetadata `json:"run"`
	Step      []int       `json:"step"`
	Time      []float64   `json:"time"`
	Dt        []float64   `json:"dt"`
	Mass      []float64   `json:"mass"`
	Energy    []float64   `json:"energy"`
	PeakSpeed []float64   `json:"peak_speed"`
}

// ExportJSON writes a run's metadata and step series as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:       *meta,
		Step:      series.Step,
		Time:      series.Time,
		Dt:        series.Dt,
		Mass:      series.Mass,
		Energy:    series.Energy,
		PeakSpeed: series.PeakSpeed,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
