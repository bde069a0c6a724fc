package simulator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WriteCSV writes the records with a header row.
func WriteCSV(w io.Writer, records []TickRecord) error {
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing ticks: %w", err)
	}
	return nil
}

// WriteCSVFile writes the records to dir/ticks.csv and returns the path.
func WriteCSVFile(dir string, records []TickRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, "ticks.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating ticks.csv: %w", err)
	}
	if err := WriteCSV(f, records); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// ReadCSV parses records written by WriteCSV.
func ReadCSV(r io.Reader) ([]TickRecord, error) {
	var records []TickRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading ticks: %w", err)
	}
	return records, nil
}

// Summary aggregates a run.
type Summary struct {
	Ticks             int
	MeanEnergy        float64
	StdEnergy         float64
	MinEnergy         float64
	FinalEnergy       float64
	TotalProduced     float64
	TotalStored       float64
	NonRenewableTicks int
}

// Summarize computes the run summary.
func Summarize(records []TickRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	energy := make([]float64, len(records))
	produced := make([]float64, len(records))
	stored := make([]float64, len(records))
	s := Summary{Ticks: len(records)}
	for i, r := range records {
		energy[i] = r.Energy
		produced[i] = r.Produced
		stored[i] = r.Stored
		if r.NonRenewable {
			s.NonRenewableTicks++
		}
	}
	if len(energy) > 1 {
		s.MeanEnergy, s.StdEnergy = stat.MeanStdDev(energy, nil)
	} else {
		s.MeanEnergy = energy[0]
	}
	s.MinEnergy = floats.Min(energy)
	s.FinalEnergy = energy[len(energy)-1]
	s.TotalProduced = floats.Sum(produced)
	s.TotalStored = floats.Sum(stored)
	return s
}
