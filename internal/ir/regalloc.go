package ir

import (
	"fmt"
	"sort"
)

// Register pool sizes are fixed constants of this module, modeling a small,
// concrete machine rather than parameterizing over an abstract target:
// four general-purpose registers for int/bool values, two for real values.
const (
	NumIntRegs   = 4
	NumFloatRegs = 2
)

// Allocation is the outcome of linear scan for one SSA value: either a
// register name ("i0".."i3" / "f0".."f1") or a spill slot.
type Allocation struct {
	Value     *TempVersion
	Register  string
	Spilled   bool
	SpillSlot int // byte offset, valid only when Spilled
}

// AllocateRegisters runs Poletto & Sarkar's linear-scan algorithm
// separately over the int/bool and real value classes, since they draw
// from disjoint register pools. Spilled values are assigned stack slot
// offsets sized by their type (spec.md §4.6: "spill slots sized by type").
func AllocateRegisters(ranges []*LiveRange) map[*TempVersion]*Allocation {
	var ints, floats []*LiveRange
	for _, r := range ranges {
		if r.Value.Type() == Real {
			floats = append(floats, r)
		} else {
			ints = append(ints, r)
		}
	}

	result := make(map[*TempVersion]*Allocation)
	spillOffset := 0

	scanClass := func(class []*LiveRange, numRegs int, prefix string) {
		sort.Slice(class, func(i, j int) bool { return class[i].Start < class[j].Start })

		var active []*LiveRange // kept sorted by End ascending
		freeRegs := make([]int, numRegs)
		for i := range freeRegs {
			freeRegs[i] = numRegs - 1 - i // pop from the tail; lowest index handed out first
		}
		regOf := make(map[*LiveRange]int)

		expireOldIntervals := func(cur *LiveRange) {
			kept := active[:0]
			for _, a := range active {
				if a.End < cur.Start {
					freeRegs = append(freeRegs, regOf[a])
					delete(regOf, a)
				} else {
					kept = append(kept, a)
				}
			}
			active = kept
		}

		insertActive := func(r *LiveRange) {
			active = append(active, r)
			sort.Slice(active, func(i, j int) bool { return active[i].End < active[j].End })
		}

		spillAt := func(v *TempVersion) int {
			off := spillOffset
			spillOffset += v.Type().Size()
			return off
		}

		for _, cur := range class {
			expireOldIntervals(cur)

			if len(active) < numRegs {
				reg := freeRegs[len(freeRegs)-1]
				freeRegs = freeRegs[:len(freeRegs)-1]
				regOf[cur] = reg
				insertActive(cur)
				result[cur.Value] = &Allocation{Value: cur.Value, Register: fmt.Sprintf("%s%d", prefix, reg)}
				continue
			}

			// Spill the active interval with the furthest end point, per
			// Poletto & Sarkar: a value used far in the future is cheaper
			// to keep spilled than one needed again soon.
			spillCandidate := active[len(active)-1]
			if spillCandidate.End > cur.End {
				reg := regOf[spillCandidate]
				result[spillCandidate.Value] = &Allocation{
					Value: spillCandidate.Value, Spilled: true,
					SpillSlot: spillAt(spillCandidate.Value),
				}
				active[len(active)-1] = cur
				sort.Slice(active, func(i, j int) bool { return active[i].End < active[j].End })
				delete(regOf, spillCandidate)
				regOf[cur] = reg
				result[cur.Value] = &Allocation{Value: cur.Value, Register: fmt.Sprintf("%s%d", prefix, reg)}
			} else {
				result[cur.Value] = &Allocation{
					Value: cur.Value, Spilled: true,
					SpillSlot: spillAt(cur.Value),
				}
			}
		}
	}

	scanClass(ints, NumIntRegs, "i")
	scanClass(floats, NumFloatRegs, "f")
	return result
}
