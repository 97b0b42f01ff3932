/*
 *	Copyright 2026 The Speckernel Authors.
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package specialize

// ComputeAliasGroups produces one signed group id per argument,
// partitioning the tuple by storage-sharing relation, per spec.md §4.2.
//
// Group 0 means unaliased. A positive id g marks every member of a group
// whose pairwise relation (relative to the first member) is a strict
// alias; a negative id -g marks a member that merely overlaps storage
// with group g without being strictly equal to it. The first member of
// any group is always recorded with the positive id.
func ComputeAliasGroups(args []Argument) []int8 {
	n := len(args)
	groups := make([]int8, n)
	var currentID int8

	for i := 0; i < n; i++ {
		if groups[i] != 0 {
			continue
		}
		for j := i + 1; j < n; j++ {
			t := aliasKind(args[i], args[j])
			if t == 0 {
				continue
			}
			if groups[i] == 0 {
				currentID++
				groups[i] = currentID
			}
			groups[j] = currentID * t
		}
	}
	return groups
}

// aliasKind classifies the storage relation between a and b: 0 if they
// don't share storage, +1 if they are strict aliases (IsSetTo), -1 if
// they merely overlap (IsAliasOf but not IsSetTo).
func aliasKind(a, b Argument) int8 {
	if !a.IsAliasOf(b) {
		return 0
	}
	if a.IsSetTo(b) {
		return 1
	}
	return -1
}

// ComputeKey builds the fixed-length key tuple for an argument tuple, per
// spec.md §4.2: the last argument is constructed with isOut = hasOut,
// every earlier argument with isOut = false.
func ComputeKey(args []Argument, hasOut bool, maxDims int) []SpecializationKey {
	groups := ComputeAliasGroups(args)
	keys := make([]SpecializationKey, len(args))
	last := len(args) - 1
	for i, arg := range args {
		isOut := hasOut && i == last
		keys[i] = NewSpecializationKey(arg, groups[i], isOut, maxDims)
	}
	return keys
}
