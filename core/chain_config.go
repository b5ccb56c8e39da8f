package core

import "math/big"

// ChainConfig holds chain-level configuration for fork scheduling.
// Pre-merge forks activate by block number; post-merge forks (Shanghai
// onward) activate by timestamp, mirroring go-ethereum's params.ChainConfig.
type ChainConfig struct {
	ChainID *big.Int

	HomesteadBlock      *big.Int
	EIP150Block         *big.Int
	EIP155Block         *big.Int
	EIP158Block         *big.Int
	ByzantiumBlock      *big.Int
	ConstantinopleBlock *big.Int
	PetersburgBlock     *big.Int
	IstanbulBlock       *big.Int
	BerlinBlock         *big.Int
	LondonBlock         *big.Int

	// TerminalTotalDifficultyPassed records that this chain has gone through
	// the Paris merge transition to proof-of-stake.
	TerminalTotalDifficultyPassed bool

	ShanghaiTime  *uint64
	CancunTime    *uint64
	PragueTime    *uint64
	AmsterdamTime  *uint64 // EIP-7928 Block Access Lists
	GlamsterdanTime *uint64 // EIP-7708/7954/7976/7981/8038
	HogotaTime    *uint64 // unscheduled successor fork
}

func isTimestampForked(forkTime *uint64, blockTime uint64) bool {
	if forkTime == nil {
		return false
	}
	return *forkTime <= blockTime
}

func isBlockForked(forkBlock *big.Int, blockNumber *big.Int) bool {
	if forkBlock == nil || blockNumber == nil {
		return false
	}
	return forkBlock.Cmp(blockNumber) <= 0
}

// IsHomestead returns whether the given block number is at or past Homestead.
func (c *ChainConfig) IsHomestead(num *big.Int) bool {
	return isBlockForked(c.HomesteadBlock, num)
}

// IsEIP158 returns whether the given block number is at or past Spurious Dragon.
func (c *ChainConfig) IsEIP158(num *big.Int) bool {
	return isBlockForked(c.EIP158Block, num)
}

// IsByzantium returns whether the given block number is at or past Byzantium.
func (c *ChainConfig) IsByzantium(num *big.Int) bool {
	return isBlockForked(c.ByzantiumBlock, num)
}

// IsConstantinople returns whether the given block number is at or past Constantinople.
func (c *ChainConfig) IsConstantinople(num *big.Int) bool {
	return isBlockForked(c.ConstantinopleBlock, num)
}

// IsIstanbul returns whether the given block number is at or past Istanbul.
func (c *ChainConfig) IsIstanbul(num *big.Int) bool {
	return isBlockForked(c.IstanbulBlock, num)
}

// IsBerlin returns whether the given block number is at or past Berlin.
func (c *ChainConfig) IsBerlin(num *big.Int) bool {
	return isBlockForked(c.BerlinBlock, num)
}

// IsLondon returns whether the given block number is at or past London.
func (c *ChainConfig) IsLondon(num *big.Int) bool {
	return isBlockForked(c.LondonBlock, num)
}

// IsMerge reports whether this chain has transitioned to proof-of-stake.
func (c *ChainConfig) IsMerge() bool {
	return c.TerminalTotalDifficultyPassed
}

// IsShanghai returns whether the given block time is at or past the Shanghai fork.
func (c *ChainConfig) IsShanghai(time uint64) bool {
	return isTimestampForked(c.ShanghaiTime, time)
}

// IsCancun returns whether the given block time is at or past the Cancun fork.
func (c *ChainConfig) IsCancun(time uint64) bool {
	return isTimestampForked(c.CancunTime, time)
}

// IsPrague returns whether the given block time is at or past the Prague fork.
func (c *ChainConfig) IsPrague(time uint64) bool {
	return isTimestampForked(c.PragueTime, time)
}

// IsAmsterdam returns whether the given block time is at or past the Amsterdam fork.
func (c *ChainConfig) IsAmsterdam(time uint64) bool {
	return isTimestampForked(c.AmsterdamTime, time)
}

// IsGlamsterdan returns whether the given block time is at or past the
// Glamsterdan fork.
func (c *ChainConfig) IsGlamsterdan(time uint64) bool {
	return isTimestampForked(c.GlamsterdanTime, time)
}

// IsHogota returns whether the given block time is at or past the Hogota fork.
func (c *ChainConfig) IsHogota(time uint64) bool {
	return isTimestampForked(c.HogotaTime, time)
}

// Rules is a flattened, monotone snapshot of which hardforks are active at a
// given block/time pair. It mirrors vm.ForkRules field-for-field; handler.go
// copies between the two so that core/vm never has to import core.
type Rules struct {
	IsHomestead      bool
	IsEIP158         bool
	IsByzantium      bool
	IsConstantinople bool
	IsIstanbul       bool
	IsBerlin         bool
	IsLondon         bool
	IsMerge          bool
	IsShanghai       bool
	IsCancun         bool
	IsPrague         bool
	IsGlamsterdan    bool
	IsEIP7708        bool
	IsEIP7954        bool
}

// Rules computes the flattened fork-activation snapshot for the given block
// number, merge status, and timestamp.
func (c *ChainConfig) Rules(num *big.Int, isMerge bool, time uint64) Rules {
	glamsterdan := c.IsGlamsterdan(time)
	return Rules{
		IsHomestead:      c.IsHomestead(num),
		IsEIP158:         c.IsEIP158(num),
		IsByzantium:      c.IsByzantium(num),
		IsConstantinople: c.IsConstantinople(num),
		IsIstanbul:       c.IsIstanbul(num),
		IsBerlin:         c.IsBerlin(num),
		IsLondon:         c.IsLondon(num),
		IsMerge:          isMerge,
		IsShanghai:       isMerge && c.IsShanghai(time),
		IsCancun:         isMerge && c.IsCancun(time),
		IsPrague:         isMerge && c.IsPrague(time),
		IsGlamsterdan:    isMerge && glamsterdan,
		IsEIP7708:        isMerge && glamsterdan,
		IsEIP7954:        isMerge && glamsterdan,
	}
}

func newUint64(v uint64) *uint64 { return &v }

// MainnetConfig is the chain config for Ethereum mainnet.
var MainnetConfig = &ChainConfig{
	ChainID:                       big.NewInt(1),
	HomesteadBlock:                big.NewInt(1150000),
	EIP150Block:                   big.NewInt(2463000),
	EIP155Block:                   big.NewInt(2675000),
	EIP158Block:                   big.NewInt(2675000),
	ByzantiumBlock:                big.NewInt(4370000),
	ConstantinopleBlock:           big.NewInt(7280000),
	PetersburgBlock:               big.NewInt(7280000),
	IstanbulBlock:                 big.NewInt(9069000),
	BerlinBlock:                   big.NewInt(12244000),
	LondonBlock:                   big.NewInt(12965000),
	TerminalTotalDifficultyPassed: true,
	ShanghaiTime:                  newUint64(1681338455),
	CancunTime:                    newUint64(1710338135),
	PragueTime:                    nil, // not yet scheduled
	AmsterdamTime:                 nil, // not yet scheduled
	GlamsterdanTime:               nil, // not yet scheduled
	HogotaTime:                    nil, // unscheduled
}

// TestConfig is a chain config with all forks active at genesis (block/time 0).
var TestConfig = &ChainConfig{
	ChainID:                       big.NewInt(1337),
	HomesteadBlock:                big.NewInt(0),
	EIP150Block:                   big.NewInt(0),
	EIP155Block:                   big.NewInt(0),
	EIP158Block:                   big.NewInt(0),
	ByzantiumBlock:                big.NewInt(0),
	ConstantinopleBlock:           big.NewInt(0),
	PetersburgBlock:               big.NewInt(0),
	IstanbulBlock:                 big.NewInt(0),
	BerlinBlock:                   big.NewInt(0),
	LondonBlock:                   big.NewInt(0),
	TerminalTotalDifficultyPassed: true,
	ShanghaiTime:                  newUint64(0),
	CancunTime:                    newUint64(0),
	PragueTime:                    newUint64(0),
	AmsterdamTime:                 newUint64(0),
	GlamsterdanTime:               newUint64(0),
	HogotaTime:                    newUint64(0),
}
