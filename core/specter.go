/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"sync/atomic"
)

// Tabler enables other things to manifest themselves as Tables.
//
// A Table is itself a Tabler.  An UpdatableTable is also a Tabler,
// but it's not itself a Table.
type Tabler interface {
	Table() *Table
}

// UpdatableTable is a Tabler with an underlying Table that can be
// replaced at any time.
//
// An editor reloads the table whenever the source changes.  The new
// table is installed with one atomic store, so a Machine stepping
// against an UpdatableTable sees either the old table or the new
// one, never a table under construction.
type UpdatableTable struct {
	t atomic.Pointer[Table]
}

// NewUpdatableTable makes one with the given initial table, which can
// be changed later via SetTable.
func NewUpdatableTable(t *Table) *UpdatableTable {
	u := &UpdatableTable{}
	u.t.Store(t)
	return u
}

// SetTable atomically changes the underlying table.
func (u *UpdatableTable) SetTable(t *Table) {
	u.t.Store(t)
}

// Reload loads the source and, only if that works, installs the new
// table.  On error the previous table stays in place.
func (u *UpdatableTable) Reload(src string, ninputs, noutputs int) error {
	t, err := Load(src, ninputs, noutputs)
	if err != nil {
		return err
	}
	u.SetTable(t)
	return nil
}

// Table implements the Tabler interface.
func (u *UpdatableTable) Table() *Table {
	return u.t.Load()
}
