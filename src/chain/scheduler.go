package chain

// Policy bounds how long a chain may grow and how many chains are retained.
type Policy struct {
	// MaxIncrementalBackups is the chain length after which the next backup
	// must be full again. Zero means every backup is full.
	MaxIncrementalBackups int
	// MaxFullBackups is the number of chains retained. Zero means unlimited.
	MaxFullBackups int
}

// Decision is the scheduler's verdict for the next backup.
type Decision struct {
	Kind Kind
	// Base is the unit the next backup is incremental against; nil for full
	// backups.
	Base *Unit
}

// DecideNext decides whether the next backup is full or incremental and, if
// incremental, which unit it extends. The newest chain keeps growing from
// its latest unit (full or incremental) until it reaches the policy limit.
func DecideNext(inv Inventory, policy Policy, forceFull bool) Decision {
	if forceFull || policy.MaxIncrementalBackups <= 0 {
		return Decision{Kind: KindFull}
	}
	newest, ok := inv.Newest()
	if !ok {
		return Decision{Kind: KindFull}
	}
	if newest.Length() >= policy.MaxIncrementalBackups {
		return Decision{Kind: KindFull}
	}
	base := newest.Latest()
	return Decision{Kind: KindIncremental, Base: &base}
}
