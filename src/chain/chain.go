package chain

import (
	"sort"
)

// Chain is one full backup plus the incrementals taken on top of it, in
// creation order. Every incremental's base resolves to the unit before it
// somewhere in the same chain.
type Chain struct {
	Full         Unit
	Incrementals []Unit
}

// Length is the number of incrementals in the chain; the full is excluded.
func (c Chain) Length() int {
	return len(c.Incrementals)
}

// Latest returns the most recently created unit of the chain.
func (c Chain) Latest() Unit {
	if len(c.Incrementals) == 0 {
		return c.Full
	}
	return c.Incrementals[len(c.Incrementals)-1]
}

// Units returns all units of the chain, oldest first.
func (c Chain) Units() []Unit {
	units := make([]Unit, 0, 1+len(c.Incrementals))
	units = append(units, c.Full)
	units = append(units, c.Incrementals...)
	return units
}

// Inventory is the set of chains found at a target, rebuilt from the backend
// listing on every invocation. Orphans are incrementals whose base could not
// be resolved; they are reported but never scheduled against or retained by
// policy.
type Inventory struct {
	Chains  []Chain
	Orphans []Unit
}

// Empty reports whether no usable chain exists.
func (inv Inventory) Empty() bool {
	return len(inv.Chains) == 0
}

// Newest returns the most recent chain, judged by its latest unit. Ties on
// the timestamp (clock skew between chains) go to the lexicographically
// greatest unit ID.
func (inv Inventory) Newest() (Chain, bool) {
	if len(inv.Chains) == 0 {
		return Chain{}, false
	}
	best := inv.Chains[0]
	for _, c := range inv.Chains[1:] {
		bl, cl := best.Latest(), c.Latest()
		if cl.CreatedAt.After(bl.CreatedAt) ||
			(cl.CreatedAt.Equal(bl.CreatedAt) && cl.ID > bl.ID) {
			best = c
		}
	}
	return best, true
}

// Find returns the unit with the given ID, searching chains and orphans.
// The second result reports whether the unit belongs to a chain; orphans
// return false and must not be used as a restore source.
func (inv Inventory) Find(id string) (Unit, bool, bool) {
	for _, c := range inv.Chains {
		for _, u := range c.Units() {
			if u.ID == id {
				return u, true, true
			}
		}
	}
	for _, u := range inv.Orphans {
		if u.ID == id {
			return u, true, false
		}
	}
	return Unit{}, false, false
}

// Ancestors returns the chain units the given unit depends on, oldest first,
// ending with the unit itself. For a full backup that is just the unit.
func (inv Inventory) Ancestors(id string) []Unit {
	for _, c := range inv.Chains {
		units := c.Units()
		for i, u := range units {
			if u.ID == id {
				path := make([]Unit, i+1)
				copy(path, units[:i+1])
				return path
			}
		}
	}
	return nil
}

// BuildInventory folds an unordered set of parsed units into chains by
// following base references. Units are processed in creation order, so a
// base must exist and predate its incremental; anything else (dangling
// reference, forward reference, base referencing a skipped unit) lands in
// Orphans. Duplicate timestamps across fulls start separate chains.
func BuildInventory(units []Unit) Inventory {
	sorted := make([]Unit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var inv Inventory
	// timestamp key of an accepted unit -> index of its chain
	chainByKey := make(map[string]int)
	for _, u := range sorted {
		switch u.Kind {
		case KindFull:
			inv.Chains = append(inv.Chains, Chain{Full: u})
			chainByKey[u.Key()] = len(inv.Chains) - 1
		case KindIncremental:
			idx, ok := chainByKey[u.BaseID]
			if !ok || u.BaseID >= u.Key() {
				inv.Orphans = append(inv.Orphans, u)
				continue
			}
			inv.Chains[idx].Incrementals = append(inv.Chains[idx].Incrementals, u)
			chainByKey[u.Key()] = idx
		}
	}

	// order chains oldest full first; retention depends on this
	sort.Slice(inv.Chains, func(i, j int) bool {
		a, b := inv.Chains[i].Full, inv.Chains[j].Full
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return inv
}
