package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

// Metadata describes how a run was produced.
type Metadata struct {
	Model   string             `json:"model"`
	Solver  string             `json:"solver"`
	Preset  string             `json:"preset,omitempty"`
	Seed    int64              `json:"seed,omitempty"`
	Horizon float64            `json:"horizon"`
	Params  map[string]float64 `json:"params"`
}

type memberData struct {
	Initial []float64   `json:"initial,omitempty"`
	Times   []float64   `json:"times"`
	States  [][]float64 `json:"states"`
}

type exportData struct {
	Metadata
	Samples int          `json:"samples"`
	Dim     int          `json:"dim"`
	Members []memberData `json:"members"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func header(prefix []string, dim int) []string {
	h := append([]string{}, prefix...)
	for i := 0; i < dim; i++ {
		h = append(h, fmt.Sprintf("x%d", i))
	}
	return h
}

// WriteCSV writes one row per sample: time followed by each state component.
func WriteCSV(w io.Writer, traj *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header([]string{"time"}, traj.Dim())); err != nil {
		return err
	}
	for i, s := range traj.States {
		row := []string{formatFloat(traj.Times[i])}
		for _, v := range s {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEnsembleCSV writes the members in long form, prefixed by a member index.
func WriteEnsembleCSV(w io.Writer, ens *dynamo.Ensemble) error {
	dim := 0
	if ens.Size() > 0 {
		dim = ens.Members[0].Dim()
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header([]string{"member", "time"}, dim)); err != nil {
		return err
	}
	for m, traj := range ens.Members {
		for i, s := range traj.States {
			row := []string{strconv.Itoa(m), formatFloat(traj.Times[i])}
			for _, v := range s {
				row = append(row, formatFloat(v))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func toRows(states []dynamo.State) [][]float64 {
	rows := make([][]float64, len(states))
	for i, s := range states {
		rows[i] = s
	}
	return rows
}

func encode(w io.Writer, data exportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// WriteJSON encodes a single trajectory with its metadata. Non-finite
// samples cannot be represented in JSON and make the call fail.
func WriteJSON(w io.Writer, meta Metadata, traj *dynamo.Trajectory) error {
	return encode(w, exportData{
		Metadata: meta,
		Samples:  traj.Len(),
		Dim:      traj.Dim(),
		Members: []memberData{{
			Times:  traj.Times,
			States: toRows(traj.States),
		}},
	})
}

func WriteEnsembleJSON(w io.Writer, meta Metadata, ens *dynamo.Ensemble) error {
	data := exportData{
		Metadata: meta,
		Samples:  ens.Samples(),
		Members:  make([]memberData, ens.Size()),
	}
	for i, traj := range ens.Members {
		if i == 0 {
			data.Dim = traj.Dim()
		}
		data.Members[i] = memberData{
			Initial: ens.Initial[i],
			Times:   traj.Times,
			States:  toRows(traj.States),
		}
	}
	return encode(w, data)
}

// WriteSeriesCSV writes named columns sharing one time axis. Columns shorter
// than times leave their cells empty.
func WriteSeriesCSV(w io.Writer, times []float64, names []string, cols ...[]float64) error {
	if len(names) != len(cols) {
		return fmt.Errorf("export: %d names for %d columns", len(names), len(cols))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}
	for i, t := range times {
		row := []string{formatFloat(t)}
		for _, c := range cols {
			cell := ""
			if i < len(c) {
				cell = formatFloat(c[i])
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
