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

// Package hash calculates stable fingerprints of simulation inputs, so
// that repeated runs with the same inputs can be recognized.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hex-encoded hash key for the specified objects, taken
// together and in order.
func Hash(objects ...interface{}) string {
	h := fnv.New128a()
	for _, o := range objects {
		write(h, o)
	}
	bKey := h.Sum([]byte{})
	return fmt.Sprintf("%x", bKey[0:h.Size()])
}

// write adds object to h.
func write(h hash.Hash, object interface{}) {
	if s, ok := object.(fmt.Stringer); ok {
		fmt.Fprint(h, s.String())
		return
	}
	// gob writes maps in iteration order, so maps go to spew,
	// which sorts the keys.
	if object != nil && reflect.TypeOf(object).Kind() != reflect.Map {
		e := gob.NewEncoder(h)
		if err := e.Encode(object); err == nil {
			return
		}
	}
	// If there is an error (e.g., a nil pointer)
	// use spew instead of gob.
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
}
