package chain

// PlanDeletions computes which units must be removed before the pending
// backup is created, so that afterwards at most Policy.MaxFullBackups chains
// remain. It is a pure function of the inventory, the policy and the
// scheduler's decision; no backend I/O happens here.
//
// A pending full backup starts a new chain, so the oldest chains are pruned
// down to MaxFullBackups-1 first. A pending incremental extends an existing
// chain and only prunes drift (more chains than the limit allows, e.g. after
// manual tampering). The last remaining chain is never deleted before its
// replacement is confirmed written: with MaxFullBackups == 1 the old chain
// survives this pass and is collected by the next invocation instead.
//
// The returned units are ordered oldest chain first and oldest unit first
// within each chain. Execution is best-effort per unit.
func PlanDeletions(inv Inventory, policy Policy, pending Kind) []Unit {
	if policy.MaxFullBackups <= 0 {
		return nil
	}
	allowed := policy.MaxFullBackups
	if pending == KindFull {
		allowed--
	}
	excess := len(inv.Chains) - allowed
	if max := len(inv.Chains) - 1; excess > max {
		excess = max
	}
	if excess <= 0 {
		return nil
	}
	// Chains are ordered oldest full first by BuildInventory.
	var doomed []Unit
	for _, c := range inv.Chains[:excess] {
		doomed = append(doomed, c.Units()...)
	}
	return doomed
}
