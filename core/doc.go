/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package core provides the truth-table machinery: loading a table,
// matching inputs against it, and stepping a Machine against an
// Environment.
//
// A truth table is line-oriented text:
//
//	; Comments start with a semicolon.
//	lost 0 0 - | lost 0 0 1 0 0
//
// Each row names a state, gives one input pattern cell per input
// ('0', '1', or the don't-care '-'), then '|', the next state, and
// one bit per output.  The number of inputs and outputs is fixed by
// the Environment the table is meant to drive.
//
// Load parses a table.  Loading is all-or-nothing: the first bad line
// stops the parse, and the returned *SyntaxError has the byte offset
// of the problem.
//
// Table.Match finds the row for a state and a set of inputs.  When
// more than one row matches, the first row wins, but the result is
// marked Ambiguous so that the author can be told.
//
// A Machine holds the run State.  Machine.Step reads the
// Environment's inputs, matches, applies the outputs, and advances.
// Machine.Walk repeats Step until the Environment's goal is reached
// or something stops it.
package core
