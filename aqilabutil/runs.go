/*
Copyright © 2024 the AQILab authors.
This file is part of AQILab.

AQILab is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AQILab is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AQILab.  If not, see <http://www.gnu.org/licenses/>.
*/

package aqilabutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/aqilab/store"
)

func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf(`you need to specify a run catalogue configuration variable (for example: Store="runs.db")`)
	}
	return store.Open(path)
}

// ListRuns writes a table summarizing every run in the catalogue at
// storePath to w.
func ListRuns(ctx context.Context, w io.Writer, storePath string) error {
	s, err := openStore(storePath)
	if err != nil {
		return err
	}
	defer s.Close()
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTEPS\tFINAL SUM\tFINAL MAX\tFINGERPRINT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.4g\t%.4g\t%s\n", r.ID, r.Created.Format(time.RFC3339),
			r.Steps, r.FinalSum, r.FinalMax, r.Fingerprint)
	}
	return tw.Flush()
}

// runRecord is the printed form of a stored run.
type runRecord struct {
	ID          string                 `toml:"id"`
	Created     time.Time              `toml:"created"`
	Fingerprint string                 `toml:"fingerprint"`
	Steps       int                    `toml:"steps"`
	FinalSum    float64                `toml:"final_sum"`
	FinalMax    float64                `toml:"final_max"`
	Aggregate   []float64              `toml:"aggregate"`
	Config      map[string]interface{} `toml:"config"`
}

// ShowRun writes the record of the run with the given id in the catalogue
// at storePath to w in TOML format.
func ShowRun(ctx context.Context, w io.Writer, storePath, id string) error {
	s, err := openStore(storePath)
	if err != nil {
		return err
	}
	defer s.Close()
	r, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}
	rec := runRecord{
		ID:          r.ID,
		Created:     r.Created,
		Fingerprint: r.Fingerprint,
		Steps:       r.Steps,
		FinalSum:    r.FinalSum,
		FinalMax:    r.FinalMax,
		Aggregate:   r.Aggregate,
	}
	if err := json.Unmarshal(r.Config, &rec.Config); err != nil {
		return fmt.Errorf("aqilab: decoding configuration of run %s: %v", id, err)
	}
	if err := toml.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("aqilab: printing run %s: %v", id, err)
	}
	return nil
}
