package vm

import "github.com/eth2030/eth2030/core/types"

// fork_rules.go translates a chain configuration's active-fork set into the
// flattened boolean struct the interpreter and gas tables branch on. This
// mirrors core.ChainConfig.Rules but lives in vm to avoid an import cycle
// (core imports vm for EVM execution).

// ForkRules is a flattened, monotone view of which hardforks are active at
// the block being processed. Each field that applies at fork N also applies
// at every fork after N.
type ForkRules struct {
	IsHomestead      bool
	IsEIP158         bool // Spurious Dragon: empty-account pruning
	IsByzantium      bool
	IsConstantinople bool
	IsIstanbul       bool
	IsBerlin         bool // EIP-2929/2930
	IsLondon         bool // EIP-1559/3529/3198
	IsMerge          bool
	IsShanghai       bool // EIP-3855/3651/3860
	IsCancun         bool // EIP-1153/4844/4788/5656/6780
	IsPrague         bool // EIP-7702/7623/2935
	IsGlamsterdan    bool // forward-looking successor fork
	IsEIP7708        bool // ETH transfers emit logs
	IsEIP7954        bool // doubled code-size limits
}

// MaxCodeSizeForFork returns the maximum deployed contract code size allowed
// under the given fork rules.
func MaxCodeSizeForFork(rules ForkRules) int {
	if rules.IsEIP7954 {
		return MaxCodeSizeGlamsterdam
	}
	return MaxCodeSize
}

// MaxInitCodeSizeForFork returns the maximum init code size allowed under
// the given fork rules. Pre-Shanghai chains had no explicit init code limit;
// callers targeting those forks should not invoke EIP-3860 checks at all,
// so this always returns the Shanghai+ (or later) cap.
func MaxInitCodeSizeForFork(rules ForkRules) int {
	if rules.IsEIP7954 {
		return MaxInitCodeSizeGlamsterdam
	}
	return MaxInitCodeSize
}

// HasNonEmptyStorage reports whether the account at addr has any non-zero
// storage slot recorded in stateDB's committed state. Used by EIP-7610
// collision detection during CREATE. It asks stateDB through an optional
// HasNonEmptyStorage(types.Address) bool method; a StateDB without that
// method always yields false.
func HasNonEmptyStorage(stateDB StateDB, addr types.Address) bool {
	probe, ok := stateDB.(interface {
		HasNonEmptyStorage(types.Address) bool
	})
	if ok {
		return probe.HasNonEmptyStorage(addr)
	}
	return false
}
