// state_object.go defines the data model consumed by the journal engine:
// the external Database a journal lazily loads from, the per-account and
// per-slot bookkeeping the engine needs to decide cold/warm and to answer
// "was this created in the current transaction", and the small value types
// the journal's public operations return (TransferError, DestroyStatus,
// SelfdestructResult, ...).
package state

import (
	"github.com/eth2030/eth2030/core/types"
)

// Database is the read-only backing store the journal consults on a cold
// load. It is supplied by the embedding; MemoryStateDB never writes to it.
type Database interface {
	// Basic returns the account at addr, or ok=false if it does not exist.
	Basic(addr types.Address) (acct types.Account, code []byte, ok bool, err error)
	// StorageAt returns the value of a storage slot, zero if unset.
	StorageAt(addr types.Address, key types.Hash) (types.Hash, error)
	// CodeByHash returns the bytecode whose keccak256 is hash.
	CodeByHash(hash types.Hash) ([]byte, error)
}

// BytecodeKind distinguishes ordinary contract code from an EIP-7702
// delegation pointer.
type BytecodeKind uint8

const (
	BytecodeEmpty BytecodeKind = iota
	BytecodeRaw
	BytecodeEip7702
)

// Bytecode is the tagged union of the three ways an account's code slot can
// be populated: nothing, raw bytes, or a delegation to another address.
type Bytecode struct {
	Kind     BytecodeKind
	Raw      []byte
	Delegate types.Address
}

// Eip7702DelegationPrefix is the 3-byte marker (0xef0100) that tags a
// delegation designator per EIP-7702; it is followed by the 20-byte target.
var Eip7702DelegationPrefix = []byte{0xef, 0x01, 0x00}

// ParseBytecode classifies raw on-chain code, recognizing the EIP-7702
// delegation designator.
func ParseBytecode(code []byte) Bytecode {
	if len(code) == 0 {
		return Bytecode{Kind: BytecodeEmpty}
	}
	if len(code) == 23 && string(code[:3]) == string(Eip7702DelegationPrefix) {
		return Bytecode{Kind: BytecodeEip7702, Delegate: types.BytesToAddress(code[3:])}
	}
	return Bytecode{Kind: BytecodeRaw, Raw: code}
}

// TransferError is an outcome of Transfer or CreateAccountCheckpoint that is
// not a Go error: the caller (interpreter) turns it into a reverted frame
// result rather than propagating it as a handler failure.
type TransferError uint8

const (
	_ TransferError = iota
	TransferOutOfFunds
	TransferOverflowPayment
	TransferCreateCollision
)

func (e TransferError) Error() string {
	switch e {
	case TransferOutOfFunds:
		return "out of funds"
	case TransferOverflowPayment:
		return "overflow payment"
	case TransferCreateCollision:
		return "create collision"
	default:
		return "unknown transfer error"
	}
}

// DestroyStatus records, three-valued, how many times an address has been
// selfdestructed within the current transaction. It is reported back to the
// interpreter so gas refund bookkeeping (pre-London) can distinguish a fresh
// selfdestruct from a repeat.
type DestroyStatus uint8

const (
	GloballySelfdestroyed DestroyStatus = iota
	LocallySelfdestroyed
	RepeatedSelfdestruction
)

// SelfdestructResult is returned by Selfdestruct to the interpreter/host so
// it can charge the right gas and, pre-London, the right refund.
type SelfdestructResult struct {
	HadValue            bool
	TargetExists         bool
	PreviouslyDestroyed bool
	IsCold              bool
}

// AccountLoad is returned by LoadAccount/LoadAccountDelegated: whether the
// access was cold, and whether the account is EIP-161-empty.
type AccountLoad struct {
	IsCold  bool
	IsEmpty bool
}

// SStoreResult reports the before/after values of an SSTORE, as required by
// EIP-2200/EIP-3529 gas metering.
type SStoreResult struct {
	Original types.Hash
	Present  types.Hash
	New      types.Hash
	IsCold   bool
}

// JournalCheckpoint is an opaque marker returned by Checkpoint, identifying
// a point in the journal and log history that CheckpointRevert can restore.
type JournalCheckpoint struct {
	snapshotID int
	logLen     int
}

// accountMeta is the bookkeeping the journal keeps per account beyond the
// plain balance/nonce/code/storage the embedding cares about. None of it is
// persisted; it only exists to answer journal questions within a tx.
type accountMeta struct {
	touched                bool
	createdLocally         bool
	createdGlobally        bool
	selfdestructedLocally  bool
	selfdestructedGlobally bool
	notExisting            bool
}

func newAccountMeta() *accountMeta {
	return &accountMeta{}
}

// storageSlot tracks the value a slot held at the start of the current
// transaction (fixed once loaded or first written), needed for the
// EIP-2200/3529 SStore refund triple. The current value and the cold/warm
// bit live in MemoryStateDB's dirtyStorage/committedStorage and accessList,
// the same representation GetState/SetState and Commit() use.
type storageSlot struct {
	original types.Hash
}
