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

package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id, err := s.SaveRun(ctx, Run{
		Created:     created,
		Fingerprint: "abc",
		Config:      json.RawMessage(`{"GridRows":4}`),
		Steps:       3,
		Aggregate:   []float64{0, 0.5, 1.25},
		FinalSum:    2,
		FinalMax:    0.5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	r, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)
	assert.True(t, created.Equal(r.Created))
	assert.Equal(t, "abc", r.Fingerprint)
	assert.JSONEq(t, `{"GridRows":4}`, string(r.Config))
	assert.Equal(t, 3, r.Steps)
	assert.Equal(t, []float64{0, 0.5, 1.25}, r.Aggregate)
	assert.Equal(t, 2.0, r.FinalSum)
	assert.Equal(t, 0.5, r.FinalMax)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveRunInvalidConfig(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SaveRun(context.Background(), Run{Config: json.RawMessage("{")})
	assert.Error(t, err)
}

func TestListAndFind(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i, fp := range []string{"a", "b", "a"} {
		id, err := s.SaveRun(ctx, Run{
			Created:     base.Add(time.Duration(i) * time.Hour),
			Fingerprint: fp,
			Steps:       i,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Empty(t, runs[0].Aggregate)

	runs, err = s.FindByFingerprint(ctx, "a")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[1].ID)

	runs, err = s.FindByFingerprint(ctx, "none")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.SaveRun(context.Background(), Run{Fingerprint: "x"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	r, err := s.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "x", r.Fingerprint)
}
