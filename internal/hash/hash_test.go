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

package hash

import "testing"

type testConfig struct {
	Rows, Cols int
	Decay      float64
}

func TestHash(t *testing.T) {
	a := Hash(testConfig{20, 20, 0.9}, []float64{1, 2, 3})
	b := Hash(testConfig{20, 20, 0.9}, []float64{1, 2, 3})
	if a != b {
		t.Errorf("%s != %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("hash %s has length %d, want 32", a, len(a))
	}
	for _, other := range []string{
		Hash(testConfig{20, 20, 0.8}, []float64{1, 2, 3}),
		Hash(testConfig{20, 20, 0.9}, []float64{1, 2, 4}),
		Hash([]float64{1, 2, 3}, testConfig{20, 20, 0.9}),
	} {
		if other == a {
			t.Errorf("different inputs have the same hash %s", a)
		}
	}
}

func TestHashMap(t *testing.T) {
	m := map[string]string{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5"}
	want := Hash(m)
	for i := 0; i < 20; i++ {
		if got := Hash(m); got != want {
			t.Fatalf("map hash is not stable: %s != %s", got, want)
		}
	}
}

func TestHashNil(t *testing.T) {
	var p *testConfig
	if Hash(p) != Hash(p) {
		t.Error("nil pointer hash is not stable")
	}
}
