package vm

// gas_constants.go gathers the fixed gas costs and protocol limits referenced
// throughout the call/create/interpreter logic. Values follow the Yellow
// Paper and the EIPs noted alongside each constant.

const (
	// Interpreter step costs.
	GasQuickStep  uint64 = 2 // POP, PC, MSIZE, GAS, ...
	GasFastestStep uint64 = 3 // ADD, PUSH*, DUP*, SWAP*, ...
	GasFastStep   uint64 = 5
	GasMidStep    uint64 = 8
	GasSlowStep   uint64 = 10
	GasExtStep    uint64 = 20

	GasPush uint64 = GasFastestStep
	GasPop  uint64 = GasQuickStep
	GasCopy uint64 = 3 // per 32-byte word copied (CODECOPY, CALLDATACOPY, ...)

	// Call family (EIP-150).
	CallGasFraction      uint64 = 64   // caller retains at least 1/64
	CallStipend          uint64 = 2300 // stipend credited to callee on value transfer
	CallValueTransferGas uint64 = 9000
	CallNewAccountGas    uint64 = 25000
	MaxCallDepth         int    = 1024

	// EIP-2929 warm/cold access costs (Berlin).
	ColdAccountAccessCost uint64 = 2600
	WarmStorageReadCost   uint64 = 100
	ColdSloadCost         uint64 = 2100

	// Glamsterdam (EIP-8038) re-priced access costs.
	ColdAccountAccessGlamst uint64 = 3500
	WarmStorageReadGlamst   uint64 = 150
	ColdSloadGlamst         uint64 = 2800

	// Glamsterdam (EIP-2780) re-priced transaction base/new-account costs,
	// and (EIP-8038) re-priced EIP-2930 access list entries.
	TxBaseGlamsterdam       uint64 = 4500
	GasNewAccount           uint64 = 25000
	AccessListAddressGlamst uint64 = 2600
	AccessListStorageGlamst uint64 = 2100

	// SSTORE (EIP-2200/EIP-3529).
	SstoreSetGas       uint64 = 20000
	SstoreResetGas     uint64 = 5000
	SstoreClearRefund  uint64 = 4800
	SstoreSentryGasEIP2200 uint64 = 2300

	// CREATE / CREATE2 (EIP-3860, EIP-2929).
	GasCreate               uint64 = 32000
	GasKeccak256Word        uint64 = 6
	InitCodeWordGas         uint64 = 2
	CreateDataGas           uint64 = 200 // per deployed byte
	CreateBySelfdestructGas uint64 = 25000

	// Memory expansion (Yellow Paper Appendix H).
	MemoryGas        uint64 = 3
	QuadCoeffDiv     uint64 = 512

	// Contract size limits.
	MaxCodeSize               int = 24576     // EIP-170
	MaxInitCodeSize           int = 2 * 24576 // EIP-3860
	MaxCodeSizeGlamsterdam    int = 2 * 24576 // EIP-7954 (doubled deployed size cap)
	MaxInitCodeSizeGlamsterdam int = 4 * 24576 // EIP-7954 companion init code cap

	// Logs.
	LogGas         uint64 = 375
	LogTopicGas    uint64 = 375
	LogDataGas     uint64 = 8

	// Misc.
	GasSelfdestruct uint64 = 5000
	Sha3Gas         uint64 = 30
	Sha3WordGas     uint64 = 6
	SloadGasFrontier uint64 = 50
)
