package state

import (
	"math/big"

	"github.com/eth2030/eth2030/core/types"
)

// StateDB is an interface for managing Ethereum world state.
type StateDB interface {
	// Account operations
	CreateAccount(addr types.Address)
	SubBalance(addr types.Address, amount *big.Int)
	AddBalance(addr types.Address, amount *big.Int)
	GetBalance(addr types.Address) *big.Int
	GetNonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)
	GetCode(addr types.Address) []byte
	SetCode(addr types.Address, code []byte)
	GetCodeHash(addr types.Address) types.Hash
	GetCodeSize(addr types.Address) int

	// Self-destruct
	SelfDestruct(addr types.Address)
	HasSelfDestructed(addr types.Address) bool

	// Storage operations
	GetState(addr types.Address, key types.Hash) types.Hash
	SetState(addr types.Address, key types.Hash, value types.Hash)
	GetCommittedState(addr types.Address, key types.Hash) types.Hash

	// Account existence
	Exist(addr types.Address) bool
	Empty(addr types.Address) bool

	// Snapshot and revert for tx-level atomicity
	Snapshot() int
	RevertToSnapshot(id int)

	// Checkpoint/CheckpointCommit/CheckpointRevert are the journal engine's
	// named equivalent of Snapshot/RevertToSnapshot (§4.2), used by callers
	// that drive the rest of the journal surface (Transfer,
	// CreateAccountCheckpoint, Selfdestruct, SLoadSpec/SStoreSpec) and so
	// need their reverts to compose with those entries on the same journal.
	Checkpoint() JournalCheckpoint
	CheckpointCommit(JournalCheckpoint)
	CheckpointRevert(JournalCheckpoint)

	// Logs
	AddLog(log *types.Log)
	GetLogs(txHash types.Hash) []*types.Log

	// Refund counter
	AddRefund(gas uint64)
	SubRefund(gas uint64)
	GetRefund() uint64

	// Access list (EIP-2929 warm/cold tracking)
	AddAddressToAccessList(addr types.Address)
	AddSlotToAccessList(addr types.Address, slot types.Hash)
	AddressInAccessList(addr types.Address) bool
	SlotInAccessList(addr types.Address, slot types.Hash) (addressOk bool, slotOk bool)

	// Transient storage (EIP-1153)
	GetTransientState(addr types.Address, key types.Hash) types.Hash
	SetTransientState(addr types.Address, key types.Hash, value types.Hash)

	// Commit
	Commit() (types.Hash, error)

	// Transaction-boundary journal lifecycle (§4.2/§4.4): CommitTx retains
	// this transaction's mutations and resets per-tx bookkeeping (warm
	// addresses, transient storage, the refund counter's implicit carry);
	// DiscardTx reverts them first. The handler pipeline calls exactly one
	// of these after every transaction, successful or not.
	CommitTx()
	DiscardTx()

	// Finalize ends the block's last transaction like CommitTx, resets the
	// per-block transaction-id counter, and returns the non-destructed
	// account set. The block driver calls this once, after the last
	// transaction and before Commit persists the state root.
	Finalize() map[types.Address]types.Account
}
