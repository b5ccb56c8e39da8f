package state

import (
	"math/big"

	"github.com/eth2030/eth2030/core/types"
)

// journalEntry is a revertible state change.
type journalEntry interface {
	revert(s *MemoryStateDB)
}

// journal tracks state modifications for snapshot/revert.
type journal struct {
	entries   []journalEntry
	snapshots map[int]int // snapshot ID -> entry index
	nextID    int
}

func newJournal() *journal {
	return &journal{
		snapshots: make(map[int]int),
	}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

func (j *journal) length() int {
	return len(j.entries)
}

func (j *journal) snapshot() int {
	id := j.nextID
	j.nextID++
	j.snapshots[id] = len(j.entries)
	return id
}

// revertAll undoes every entry in the journal, oldest-appended-undone-last,
// without requiring a prior snapshot id. Used by DiscardTx, which reverts
// the entire transaction rather than a single checkpoint.
func (j *journal) revertAll(s *MemoryStateDB) {
	for i := len(j.entries) - 1; i >= 0; i-- {
		j.entries[i].revert(s)
	}
	j.entries = nil
	j.snapshots = make(map[int]int)
}

func (j *journal) revertToSnapshot(id int, s *MemoryStateDB) {
	idx, ok := j.snapshots[id]
	if !ok {
		return
	}
	// Revert in reverse order.
	for i := len(j.entries) - 1; i >= idx; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:idx]

	// Remove invalidated snapshots.
	for sid := range j.snapshots {
		if sid >= id {
			delete(j.snapshots, sid)
		}
	}
}

// --- Concrete journal entries ---

type createAccountChange struct {
	addr types.Address
	prev *stateObject // nil if the account didn't exist before
}

func (ch createAccountChange) revert(s *MemoryStateDB) {
	if ch.prev == nil {
		delete(s.stateObjects, ch.addr)
	} else {
		s.stateObjects[ch.addr] = ch.prev
	}
}

type balanceChange struct {
	addr types.Address
	prev *big.Int
}

func (ch balanceChange) revert(s *MemoryStateDB) {
	if obj := s.getStateObject(ch.addr); obj != nil {
		obj.account.Balance = ch.prev
	}
}

type nonceChange struct {
	addr types.Address
	prev uint64
}

func (ch nonceChange) revert(s *MemoryStateDB) {
	if obj := s.getStateObject(ch.addr); obj != nil {
		obj.account.Nonce = ch.prev
	}
}

type codeChange struct {
	addr     types.Address
	prevCode []byte
	prevHash []byte
}

func (ch codeChange) revert(s *MemoryStateDB) {
	if obj := s.getStateObject(ch.addr); obj != nil {
		obj.code = ch.prevCode
		obj.account.CodeHash = ch.prevHash
	}
}

type storageChange struct {
	addr       types.Address
	key        types.Hash
	prev       types.Hash
	prevExists bool // true if the key was present in dirtyStorage before
}

func (ch storageChange) revert(s *MemoryStateDB) {
	if obj := s.getStateObject(ch.addr); obj != nil {
		if ch.prevExists {
			obj.dirtyStorage[ch.key] = ch.prev
		} else {
			// The slot was not in dirtyStorage before this write;
			// remove it so committed storage is visible again.
			delete(obj.dirtyStorage, ch.key)
		}
	}
}

type selfDestructChange struct {
	addr            types.Address
	prevDestructed  bool
	prevBalance     *big.Int
}

func (ch selfDestructChange) revert(s *MemoryStateDB) {
	if obj := s.getStateObject(ch.addr); obj != nil {
		obj.selfDestructed = ch.prevDestructed
		obj.account.Balance = ch.prevBalance
	}
}

type accessListAddAccountChange struct {
	addr types.Address
}

func (ch accessListAddAccountChange) revert(s *MemoryStateDB) {
	s.accessList.DeleteAddress(ch.addr)
}

type accessListAddSlotChange struct {
	addr types.Address
	slot types.Hash
}

func (ch accessListAddSlotChange) revert(s *MemoryStateDB) {
	s.accessList.DeleteSlot(ch.addr, ch.slot)
}

type transientStorageChange struct {
	addr types.Address
	key  types.Hash
	prev types.Hash
}

func (ch transientStorageChange) revert(s *MemoryStateDB) {
	if ch.prev == (types.Hash{}) {
		delete(s.transientStorage[ch.addr], ch.key)
		if len(s.transientStorage[ch.addr]) == 0 {
			delete(s.transientStorage, ch.addr)
		}
	} else {
		s.transientStorage[ch.addr][ch.key] = ch.prev
	}
}

type logChange struct {
	txHash  types.Hash
	prevLen int
}

func (ch logChange) revert(s *MemoryStateDB) {
	logs := s.logs[ch.txHash]
	s.logs[ch.txHash] = logs[:ch.prevLen]
	if ch.prevLen == 0 {
		delete(s.logs, ch.txHash)
	}
}

type refundChange struct {
	prev uint64
}

func (ch refundChange) revert(s *MemoryStateDB) {
	s.refund = ch.prev
}

// --- Spec-faithful journal entries (§4.1) ---
//
// These back LoadAccount, Transfer, CreateAccountCheckpoint, Selfdestruct,
// and the SLoad/SStore/TLoad/TStore pair below, layered on top of the
// classic entries above rather than replacing them (see stateObject.meta
// and stateObject.slots in memory_statedb.go).

// accountTouchedChange undoes touch(addr): touched accounts survive
// EIP-161 pruning, so reverting a touch must clear the flag again.
type accountTouchedChange struct {
	addr types.Address
}

func (ch accountTouchedChange) revert(s *MemoryStateDB) {
	if obj := s.getStateObject(ch.addr); obj != nil {
		obj.meta.touched = false
	}
}

// accountCreatedChange undoes create_account_checkpoint's CreatedLocally/
// CreatedGlobally marking and the nonce bump it performed.
type accountCreatedChange struct {
	addr          types.Address
	wasGlobally   bool
	prevNonce     uint64
}

func (ch accountCreatedChange) revert(s *MemoryStateDB) {
	obj := s.getStateObject(ch.addr)
	if obj == nil {
		return
	}
	obj.meta.createdLocally = false
	if !ch.wasGlobally {
		obj.meta.createdGlobally = false
	}
	obj.account.Nonce = ch.prevNonce
	obj.code = nil
	obj.account.CodeHash = types.EmptyCodeHash.Bytes()
}

// balanceTransferChange undoes Transfer/CreateAccountCheckpoint's single
// combined balance move: credit back `from`, debit `to`.
type balanceTransferChange struct {
	from, to types.Address
	amount   *big.Int
}

func (ch balanceTransferChange) revert(s *MemoryStateDB) {
	// Transfer never journals a balanceTransferChange for from == to (a
	// self-transfer is a no-op there), so both sides always apply here.
	if from := s.getStateObject(ch.from); from != nil {
		from.account.Balance = new(big.Int).Add(from.account.Balance, ch.amount)
	}
	if to := s.getStateObject(ch.to); to != nil {
		to.account.Balance = new(big.Int).Sub(to.account.Balance, ch.amount)
	}
}

// accountDestroyedChange undoes Selfdestruct's terminal step: credit the
// balance back to addr, debit it from target, and clear whichever
// selfdestruct flag the destroying call raised.
type accountDestroyedChange struct {
	addr, target       types.Address
	status             DestroyStatus
	hadBalance         *big.Int
	prevSelfDestructed bool
}

func (ch accountDestroyedChange) revert(s *MemoryStateDB) {
	if obj := s.getStateObject(ch.addr); obj != nil {
		obj.account.Balance = new(big.Int).Add(obj.account.Balance, ch.hadBalance)
		obj.selfDestructed = ch.prevSelfDestructed
		switch ch.status {
		case GloballySelfdestroyed:
			obj.meta.selfdestructedGlobally = false
			obj.meta.selfdestructedLocally = false
		case LocallySelfdestroyed:
			obj.meta.selfdestructedLocally = false
		case RepeatedSelfdestruction:
			// repeat destruction flips no flag that wasn't already set.
		}
	}
	if ch.addr != ch.target {
		if target := s.getStateObject(ch.target); target != nil {
			target.account.Balance = new(big.Int).Sub(target.account.Balance, ch.hadBalance)
		}
	}
}

// storageWarmedChange undoes the cold-access bookkeeping load_account/sload
// perform: the slot/address was not present before the warming access, so
// reverting removes it again.
type storageWarmedChange struct {
	addr types.Address
	key  types.Hash
}

func (ch storageWarmedChange) revert(s *MemoryStateDB) {
	if obj := s.getStateObject(ch.addr); obj != nil {
		delete(obj.slots, ch.key)
	}
}
