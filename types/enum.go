/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Action tags a history entry with the mutation that produced it.
type Action int

const (
	ActionUpdate Action = iota + 1
	ActionDelete
)

var _ BaseEnum = ActionUpdate

var actionNames = map[Action]string{
	ActionUpdate: "UPDATE",
	ActionDelete: "DELETE",
}

var actionDescs = map[Action]string{
	ActionUpdate: "record state before an update",
	ActionDelete: "record state before a delete",
}

// ParseAction returns the action for a stored name, case-insensitively.
func ParseAction(name string) Action {
	for a, n := range actionNames {
		if strings.EqualFold(n, name) {
			return a
		}
	}
	return Action(IllegalValue)
}

func (a Action) IsValid() bool {
	_, ok := actionNames[a]
	return ok
}

func (a Action) Number() int {
	if !a.IsValid() {
		return IllegalValue
	}
	return int(a)
}

func (a Action) Name() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return IllegalName
}

func (a Action) String() string { return a.Name() }

func (a Action) Desc() string {
	if d, ok := actionDescs[a]; ok {
		return d
	}
	return IllegalDesc
}
