package vm

// evm.go ties together the gas tables, memory/stack primitives, call/create
// handlers, and precompile set into the EVM execution context and its
// bytecode interpreter.

import (
	"math/big"

	"github.com/eth2030/eth2030/core/state"
	"github.com/eth2030/eth2030/core/types"
)

// GetHashFunc returns the hash of the ancestor block at the given number,
// used to implement the BLOCKHASH opcode. It must return the zero hash for
// block numbers outside the last 256 blocks.
type GetHashFunc func(uint64) types.Hash

// BlockContext carries block-level information that does not change across
// the transactions within a block.
type BlockContext struct {
	GetHash     GetHashFunc
	BlockNumber *big.Int
	Time        uint64
	Coinbase    types.Address
	GasLimit    uint64
	BaseFee     *big.Int
	PrevRandao  types.Hash
}

// TxContext carries transaction-level information.
type TxContext struct {
	Origin     types.Address
	GasPrice   *big.Int
	BlobHashes []types.Hash
}

// Config holds execution-tuning knobs for an EVM instance.
type Config struct {
	MaxCallDepth int
	NoBaseFee    bool
}

// CallKind identifies which CALL-family opcode initiated a call.
type CallKind uint8

const (
	CallKindCall CallKind = iota
	CallKindCallCode
	CallKindDelegateCall
	CallKindStaticCall
)

// StateDB is the subset of world-state operations the interpreter and call/
// create handlers need. *state.MemoryStateDB satisfies this interface
// structurally, with no import of core/vm required on its side.
type StateDB interface {
	CreateAccount(types.Address)

	SubBalance(types.Address, *big.Int)
	AddBalance(types.Address, *big.Int)
	GetBalance(types.Address) *big.Int

	GetNonce(types.Address) uint64
	SetNonce(types.Address, uint64)

	GetCode(types.Address) []byte
	SetCode(types.Address, []byte)
	GetCodeHash(types.Address) types.Hash
	GetCodeSize(types.Address) int

	SelfDestruct(types.Address)
	HasSelfDestructed(types.Address) bool

	GetState(types.Address, types.Hash) types.Hash
	SetState(types.Address, types.Hash, types.Hash)
	GetCommittedState(types.Address, types.Hash) types.Hash

	Exist(types.Address) bool
	Empty(types.Address) bool

	Snapshot() int
	RevertToSnapshot(int)

	AddLog(*types.Log)
	GetLogs(types.Hash) []*types.Log
	SetTxContext(types.Hash, int)

	AddRefund(uint64)
	SubRefund(uint64)
	GetRefund() uint64

	AddAddressToAccessList(types.Address)
	AddSlotToAccessList(types.Address, types.Hash)
	AddressInAccessList(types.Address) bool
	SlotInAccessList(types.Address, types.Hash) (bool, bool)

	GetTransientState(types.Address, types.Hash) types.Hash
	SetTransientState(types.Address, types.Hash, types.Hash)
	ClearTransientStorage()

	// Journal engine (§4.2): checkpoint/commit/revert keyed by call depth,
	// cold/warm loading against the backing Database, transfer and
	// contract-creation collision semantics reported as a TransferError
	// rather than a Go error, EIP-6780-aware selfdestruct, and the
	// SLoad/SStore/TLoad/TStore pair with original-value tracking. The
	// call/create handlers and the interpreter's storage opcodes drive
	// world state through this surface; Snapshot/RevertToSnapshot above
	// remain for callers (tests, tooling) that only need plain rollback.
	Checkpoint() state.JournalCheckpoint
	CheckpointCommit(state.JournalCheckpoint)
	CheckpointRevert(state.JournalCheckpoint)

	LoadAccount(types.Address) (state.AccountLoad, error)
	LoadAccountDelegated(addr types.Address, eip7702Enabled bool) (state.AccountLoad, error)
	LoadCode(types.Address) ([]byte, error)

	Transfer(from, to types.Address, amount *big.Int) (*state.TransferError, error)
	CreateAccountCheckpoint(caller, target types.Address, value *big.Int, spuriousDragonEnabled bool) (state.JournalCheckpoint, *state.TransferError)
	Selfdestruct(addr, target types.Address, eip6780Enabled bool) (*state.SelfdestructResult, error)

	SLoadSpec(addr types.Address, key types.Hash) (types.Hash, bool, error)
	SStoreSpec(addr types.Address, key, newVal types.Hash) (state.SStoreResult, error)
	TLoadSpec(addr types.Address, key types.Hash) types.Hash
	TStoreSpec(addr types.Address, key, val types.Hash)

	CommitTx()
	DiscardTx()
}

// EVM carries the state and context needed to execute EVM bytecode. It is
// created fresh for each block and reused across the transactions in it.
type EVM struct {
	Context   BlockContext
	TxContext TxContext
	Config    Config
	StateDB   StateDB

	frames   *CallFrameStack
	readOnly bool

	forkRules    ForkRules
	jumpTable    *JumpTable
	precompiles  map[types.Address]PrecompiledContract

	// returnData holds the output of the most recently completed child call,
	// exposed to RETURNDATASIZE/RETURNDATACOPY.
	returnData []byte
}

// NewEVM creates an EVM with no backing state database. It is primarily
// useful for unit tests of call/gas helpers that supply their own StateDB.
func NewEVM(blockCtx BlockContext, txCtx TxContext, config Config) *EVM {
	maxDepth := config.MaxCallDepth
	if maxDepth == 0 {
		maxDepth = MaxCallDepth
	}
	return &EVM{
		Context:     blockCtx,
		TxContext:   txCtx,
		Config:      config,
		jumpTable:   DefaultJumpTable(),
		precompiles: PrecompiledContractsCancun,
		frames:      NewCallFrameStackWithLimit(maxDepth),
	}
}

// Depth returns the current call stack depth (0 at the top-level transaction).
func (evm *EVM) Depth() int {
	return evm.frames.Depth()
}

// NewEVMWithState creates an EVM bound to the given world-state database.
func NewEVMWithState(blockCtx BlockContext, txCtx TxContext, config Config, stateDB StateDB) *EVM {
	evm := NewEVM(blockCtx, txCtx, config)
	evm.StateDB = stateDB
	return evm
}

// SetJumpTable installs a fork-specific jump table.
func (evm *EVM) SetJumpTable(jt *JumpTable) {
	evm.jumpTable = jt
}

// SetPrecompiles installs a fork-specific precompile set.
func (evm *EVM) SetPrecompiles(p map[types.Address]PrecompiledContract) {
	evm.precompiles = p
}

// SetForkRules records the active fork rules, consulted by gas accounting
// and CREATE/SELFDESTRUCT semantics.
func (evm *EVM) SetForkRules(rules ForkRules) {
	evm.forkRules = rules
}

// GetForkRules returns the active fork rules.
func (evm *EVM) GetForkRules() ForkRules {
	return evm.forkRules
}

// precompile returns the precompiled contract registered at addr, if any.
func (evm *EVM) precompile(addr types.Address) (PrecompiledContract, bool) {
	if evm.precompiles == nil {
		return nil, false
	}
	p, ok := evm.precompiles[addr]
	return p, ok
}

// PreWarmAccessList marks the transaction sender, the destination (if any),
// and all registered precompile addresses as warm per EIP-2929/EIP-2930.
func (evm *EVM) PreWarmAccessList(sender types.Address, to *types.Address) {
	if evm.StateDB == nil {
		return
	}
	evm.StateDB.AddAddressToAccessList(sender)
	if to != nil {
		evm.StateDB.AddAddressToAccessList(*to)
	}
	for addr := range evm.precompiles {
		evm.StateDB.AddAddressToAccessList(addr)
	}
}

// Call executes a top-level CALL-style message from sender to addr,
// carrying value and input. It is the entry point used by the state
// transition to run ordinary transactions.
func (evm *EVM) Call(sender, addr types.Address, input []byte, gas uint64, value *big.Int) ([]byte, uint64, error) {
	handler := NewCallHandler(evm)
	result := handler.HandleCall(&CallHandlerParams{
		Kind:   CallKindCall,
		Caller: sender,
		Target: addr,
		Value:  value,
		Input:  input,
		Gas:    gas,
	})
	return result.ReturnData, result.GasLeft, result.Err
}

// Create executes a top-level CREATE message from sender with the given
// init code. It returns the deployed contract's address alongside the usual
// return data/gas/err triple.
func (evm *EVM) Create(sender types.Address, initCode []byte, gas uint64, value *big.Int) ([]byte, types.Address, uint64, error) {
	executor := NewCreateExecutor(evm.forkRules)
	result := executor.Execute(evm, &CreateParams{
		Kind:     CreateKindCreate,
		Caller:   sender,
		InitCode: initCode,
		Value:    value,
		Gas:      gas,
	})
	return result.ReturnData, result.Address, result.GasLeft, result.Err
}

// Create2 executes a top-level CREATE2 message.
func (evm *EVM) Create2(sender types.Address, initCode []byte, gas uint64, value *big.Int, salt *big.Int) ([]byte, types.Address, uint64, error) {
	executor := NewCreateExecutor(evm.forkRules)
	result := executor.Execute(evm, &CreateParams{
		Kind:     CreateKindCreate2,
		Caller:   sender,
		InitCode: initCode,
		Value:    value,
		Salt:     salt,
		Gas:      gas,
	})
	return result.ReturnData, result.Address, result.GasLeft, result.Err
}
