// journal_spec.go implements the journal engine's spec-faithful surface
// (§4.2): checkpoint/commit/revert keyed by call depth, cold/warm loading
// against an external Database, transfer and contract-creation collision
// semantics returned as TransferError rather than a Go error, selfdestruct
// with the EIP-6780 conditional-destroy rule, and the SLoad/SStore/TLoad/
// TStore pair with original-value tracking. It is additive to
// memory_statedb.go: the classic StateDB methods (SubBalance, SetState, ...)
// remain the fast path used by the interpreter's per-opcode gas accounting;
// these methods are the ones a Host façade and the handler pipeline drive
// directly, and they share the same journal and stateObjects underneath.
package state

import (
	"math/big"

	"github.com/eth2030/eth2030/core/types"
)

// SetDatabase installs the backing store consulted on a cold account/
// storage/code load. Must be called before any LoadAccount/SLoadSpec call
// that might miss the in-memory cache.
func (s *MemoryStateDB) SetDatabase(db Database) {
	s.db = db
}

// SetPrecompiles records the fork's precompile address set and resets the
// warm-address bookkeeping to exactly that set, satisfying the invariant
// warm_preloaded_addresses ⊇ precompiles.
func (s *MemoryStateDB) SetPrecompiles(addrs []types.Address) {
	s.precompileAddrs = make(map[types.Address]struct{}, len(addrs))
	for _, a := range addrs {
		s.precompileAddrs[a] = struct{}{}
	}
	s.resetWarmAddresses()
}

// resetWarmAddresses restores the access list to precisely the precompile
// set, with no coinbase warming. Called at every transaction boundary.
func (s *MemoryStateDB) resetWarmAddresses() {
	s.accessList = newAccessList()
	for a := range s.precompileAddrs {
		s.accessList.AddAddress(a)
	}
	s.warmCoinbase = nil
}

// PreloadWarmAddresses marks each address warm for the remainder of the
// transaction without going through a journaled LoadAccount — used by
// pre_execute to honor an EIP-2930 access list.
func (s *MemoryStateDB) PreloadWarmAddresses(addrs ...types.Address) {
	for _, a := range addrs {
		s.AddAddressToAccessList(a)
	}
}

// PreloadWarmSlot marks a single (address, key) pair warm without a
// journaled SLoadSpec — used for EIP-2930 access-list storage keys.
func (s *MemoryStateDB) PreloadWarmSlot(addr types.Address, key types.Hash) {
	s.AddSlotToAccessList(addr, key)
}

// SetWarmCoinbase marks the block beneficiary warm per EIP-3651.
func (s *MemoryStateDB) SetWarmCoinbase(addr types.Address) {
	s.warmCoinbase = &addr
	s.AddAddressToAccessList(addr)
}

// TransactionID returns the id of the transaction currently open against
// this state. It increments by exactly one on every CommitTx/DiscardTx.
func (s *MemoryStateDB) TransactionID() int {
	return s.transactionID
}

// Depth returns the number of outstanding (uncommitted, unreverted)
// checkpoints, i.e. the current call depth.
func (s *MemoryStateDB) Depth() int {
	return s.depth
}

// Checkpoint captures the current journal/log position and increments
// depth. It is O(1).
func (s *MemoryStateDB) Checkpoint() JournalCheckpoint {
	cp := JournalCheckpoint{
		snapshotID: s.journal.snapshot(),
		logLen:     len(s.logs[s.txHash]),
	}
	s.depth++
	return cp
}

// CheckpointCommit retires a checkpoint without undoing anything: its
// entries remain revertible by an outer checkpoint.
func (s *MemoryStateDB) CheckpointCommit(_ JournalCheckpoint) {
	if s.depth > 0 {
		s.depth--
	}
}

// CheckpointRevert drains every entry appended since cp, in reverse order,
// truncates logs back to the captured length, and decrements depth.
func (s *MemoryStateDB) CheckpointRevert(cp JournalCheckpoint) {
	s.journal.revertToSnapshot(cp.snapshotID, s)
	if logs, ok := s.logs[s.txHash]; ok && cp.logLen <= len(logs) {
		s.logs[s.txHash] = logs[:cp.logLen]
	}
	if s.depth > 0 {
		s.depth--
	}
}

// addrIsCold reports whether addr is cold for the current transaction: neither
// warm-preloaded/precompiled nor the warm coinbase nor previously accessed
// this transaction.
func (s *MemoryStateDB) addrIsCold(addr types.Address) bool {
	if s.accessList.ContainsAddress(addr) {
		return false
	}
	if s.warmCoinbase != nil && *s.warmCoinbase == addr {
		return false
	}
	return true
}

// LoadAccount loads addr into the live state (from the Database on a miss,
// or as a NotExisting sentinel if the Database has nothing for it), marks it
// warm, and reports whether the access was cold.
func (s *MemoryStateDB) LoadAccount(addr types.Address) (AccountLoad, error) {
	obj := s.stateObjects[addr]
	if obj == nil {
		obj = newStateObject()
		if s.db != nil {
			acct, code, ok, err := s.db.Basic(addr)
			if err != nil {
				return AccountLoad{}, err
			}
			if ok {
				obj.account = acct
				obj.code = code
			} else {
				obj.meta.notExisting = true
			}
		} else {
			obj.meta.notExisting = true
		}
		s.stateObjects[addr] = obj
	}
	isCold := s.addrIsCold(addr)
	if isCold {
		s.AddAddressToAccessList(addr)
	}
	return AccountLoad{IsCold: isCold, IsEmpty: s.Empty(addr)}, nil
}

// LoadAccountDelegated behaves like LoadAccount, additionally warming the
// EIP-7702 delegate address (Prague+) if addr's code is a delegation
// designator.
func (s *MemoryStateDB) LoadAccountDelegated(addr types.Address, eip7702Enabled bool) (AccountLoad, error) {
	load, err := s.LoadAccount(addr)
	if err != nil || !eip7702Enabled {
		return load, err
	}
	obj := s.stateObjects[addr]
	if obj == nil || len(obj.code) == 0 {
		return load, nil
	}
	if bc := ParseBytecode(obj.code); bc.Kind == BytecodeEip7702 {
		if _, err := s.LoadAccount(bc.Delegate); err != nil {
			return load, err
		}
	}
	return load, nil
}

// LoadCode loads addr and, if its code is not already resident, fetches it
// from the Database by code hash.
func (s *MemoryStateDB) LoadCode(addr types.Address) ([]byte, error) {
	if _, err := s.LoadAccount(addr); err != nil {
		return nil, err
	}
	obj := s.stateObjects[addr]
	if obj == nil {
		return nil, nil
	}
	if len(obj.code) == 0 {
		hash := types.BytesToHash(obj.account.CodeHash)
		if hash != types.EmptyCodeHash && hash != (types.Hash{}) && s.db != nil {
			code, err := s.db.CodeByHash(hash)
			if err != nil {
				return nil, err
			}
			obj.code = code
		}
	}
	return obj.code, nil
}

// Touch marks addr as having been observed by this transaction. Touched
// accounts survive EIP-161 empty-account pruning at finalize time.
func (s *MemoryStateDB) Touch(addr types.Address) {
	obj := s.getStateObject(addr)
	if obj == nil || obj.meta.touched {
		return
	}
	s.journal.append(accountTouchedChange{addr: addr})
	obj.meta.touched = true
}

// Transfer moves amount from from to to. A zero amount is a touch-only
// no-op. Balance/overflow failures are reported as a TransferError, not a
// Go error: the caller turns them into a reverted frame result.
func (s *MemoryStateDB) Transfer(from, to types.Address, amount *big.Int) (*TransferError, error) {
	if amount == nil || amount.Sign() == 0 {
		if _, err := s.LoadAccount(to); err != nil {
			return nil, err
		}
		s.Touch(to)
		return nil, nil
	}
	if _, err := s.LoadAccount(from); err != nil {
		return nil, err
	}
	if _, err := s.LoadAccount(to); err != nil {
		return nil, err
	}
	s.Touch(from)
	s.Touch(to)

	fromObj := s.getStateObject(from)
	toObj := s.getStateObject(to)
	if fromObj.account.Balance.Cmp(amount) < 0 {
		e := TransferOutOfFunds
		return &e, nil
	}
	if from == to {
		// A self-transfer nets to zero: skip the mutation entirely rather
		// than debiting and crediting the same object from a balance
		// snapshotted before the debit, which would inflate it.
		return nil, nil
	}
	sum := new(big.Int).Add(toObj.account.Balance, amount)
	if sum.BitLen() > 256 {
		e := TransferOverflowPayment
		return &e, nil
	}
	s.journal.append(balanceTransferChange{from: from, to: to, amount: new(big.Int).Set(amount)})
	fromObj.account.Balance = new(big.Int).Sub(fromObj.account.Balance, amount)
	toObj.account.Balance = sum
	return nil, nil
}

// CreateAccountCheckpoint implements the ten-step creation preamble: it
// takes a checkpoint, checks the caller can afford the endowment, checks
// target for a collision, marks target created, bumps its nonce on
// SpuriousDragon+, and moves the endowment. On any failure the checkpoint is
// already reverted before returning.
func (s *MemoryStateDB) CreateAccountCheckpoint(caller, target types.Address, value *big.Int, spuriousDragonEnabled bool) (JournalCheckpoint, *TransferError) {
	if value == nil {
		value = new(big.Int)
	}
	cp := s.Checkpoint()

	s.LoadAccount(caller) //nolint:errcheck // DB errors surface as NotExisting; checkpoint guards correctness
	callerObj := s.getOrNewStateObject(caller)
	if callerObj.account.Balance.Cmp(value) < 0 {
		s.CheckpointRevert(cp)
		e := TransferOutOfFunds
		return cp, &e
	}

	s.LoadAccount(target) //nolint:errcheck
	targetObj := s.getOrNewStateObject(target)
	codeHash := types.BytesToHash(targetObj.account.CodeHash)
	if (codeHash != types.EmptyCodeHash && codeHash != (types.Hash{})) || targetObj.account.Nonce != 0 {
		s.CheckpointRevert(cp)
		e := TransferCreateCollision
		return cp, &e
	}

	wasGlobally := targetObj.meta.createdGlobally
	s.journal.append(accountCreatedChange{addr: target, wasGlobally: wasGlobally, prevNonce: targetObj.account.Nonce})
	targetObj.meta.createdLocally = true
	targetObj.meta.createdGlobally = true
	targetObj.code = nil
	targetObj.account.CodeHash = types.EmptyCodeHash.Bytes()

	if spuriousDragonEnabled {
		targetObj.account.Nonce = 1
	}
	s.Touch(target)

	sum := new(big.Int).Add(targetObj.account.Balance, value)
	if sum.BitLen() > 256 {
		s.CheckpointRevert(cp)
		e := TransferOverflowPayment
		return cp, &e
	}
	targetObj.account.Balance = sum
	callerObj.account.Balance = new(big.Int).Sub(callerObj.account.Balance, value)
	s.journal.append(balanceTransferChange{from: caller, to: target, amount: new(big.Int).Set(value)})

	return cp, nil
}

// Selfdestruct implements selfdestruct(address, target) including the
// EIP-6780 conditional-destroy rule: post-Cancun, a selfdestruct only
// destroys the account if it was created earlier in the same transaction;
// otherwise it transfers the balance and nothing more.
func (s *MemoryStateDB) Selfdestruct(addr, target types.Address, eip6780Enabled bool) (*SelfdestructResult, error) {
	targetLoad, err := s.LoadAccount(target)
	if err != nil {
		return nil, err
	}
	targetWasEmpty := s.Empty(target)

	addrObj := s.getOrNewStateObject(addr)
	targetObj := s.getOrNewStateObject(target)
	balance := new(big.Int).Set(addrObj.account.Balance)

	if addr != target {
		targetObj.account.Balance = new(big.Int).Add(targetObj.account.Balance, balance)
		s.Touch(target)
	}

	var status DestroyStatus
	switch {
	case !addrObj.meta.selfdestructedGlobally:
		status = GloballySelfdestroyed
	case !addrObj.meta.selfdestructedLocally:
		status = LocallySelfdestroyed
	default:
		status = RepeatedSelfdestruction
	}

	destroying := !eip6780Enabled || addrObj.meta.createdLocally
	switch {
	case destroying:
		prevSelfDestructed := addrObj.selfDestructed
		addrObj.meta.selfdestructedLocally = true
		addrObj.meta.selfdestructedGlobally = true
		addrObj.selfDestructed = true
		addrObj.account.Balance = new(big.Int)
		s.journal.append(accountDestroyedChange{addr: addr, target: target, status: status, hadBalance: balance, prevSelfDestructed: prevSelfDestructed})
	case addr != target:
		addrObj.account.Balance = new(big.Int)
		s.journal.append(balanceTransferChange{from: addr, to: target, amount: balance})
	default:
		// addr == target, not destroying: balance is unchanged, nothing journaled.
	}

	return &SelfdestructResult{
		HadValue:            balance.Sign() != 0,
		TargetExists:        !targetWasEmpty,
		PreviouslyDestroyed: status == RepeatedSelfdestruction,
		IsCold:              targetLoad.IsCold,
	}, nil
}

// SLoadSpec reads a storage slot, loading it (and marking it warm) from the
// Database on a cold miss. An account created earlier in this transaction
// never needs a DB round trip: a missing slot there is simply zero. The
// cold/warm bit is the same access list SLOAD's classic gas accounting
// consults (AddSlotToAccessList); SLoadSpec and GetState/SetState share one
// storage representation (obj.dirtyStorage/committedStorage) so that a
// value written through either path is visible to the other and to
// Commit()'s trie build. obj.slots tracks only the per-transaction
// original value needed for the EIP-2200/3529 refund triple.
func (s *MemoryStateDB) SLoadSpec(addr types.Address, key types.Hash) (types.Hash, bool, error) {
	_, slotWarm := s.accessList.ContainsSlot(addr, key)
	isCold := !slotWarm

	obj := s.getOrNewStateObject(addr)
	if _, tracked := obj.slots[key]; !tracked {
		_, dirtyOk := obj.dirtyStorage[key]
		_, commOk := obj.committedStorage[key]
		if !dirtyOk && !commOk && !obj.meta.createdLocally && s.db != nil {
			v, err := s.db.StorageAt(addr, key)
			if err != nil {
				return types.Hash{}, false, err
			}
			obj.committedStorage[key] = v
		}
		s.journal.append(storageWarmedChange{addr: addr, key: key})
		obj.slots[key] = &storageSlot{original: s.GetState(addr, key)}
	}

	if isCold {
		s.AddSlotToAccessList(addr, key)
	}
	return s.GetState(addr, key), isCold, nil
}

// SStoreSpec writes a storage slot through SetState (so the write is visible
// to Commit()'s trie build and to GetState/GetCommittedState), appending a
// journal entry only when the value actually changes, and reports the
// EIP-2200/3529 before/after triple.
func (s *MemoryStateDB) SStoreSpec(addr types.Address, key, newVal types.Hash) (SStoreResult, error) {
	present, isCold, err := s.SLoadSpec(addr, key)
	if err != nil {
		return SStoreResult{}, err
	}
	obj := s.getOrNewStateObject(addr)
	result := SStoreResult{Original: obj.slots[key].original, Present: present, New: newVal, IsCold: isCold}
	if newVal != present {
		s.SetState(addr, key, newVal)
	}
	return result, nil
}

// TLoadSpec reads a transient storage slot (EIP-1153); transient storage has
// no cold/warm concept.
func (s *MemoryStateDB) TLoadSpec(addr types.Address, key types.Hash) types.Hash {
	return s.GetTransientState(addr, key)
}

// TStoreSpec writes a transient storage slot, appending a journal entry only
// when the effective value changes.
func (s *MemoryStateDB) TStoreSpec(addr types.Address, key, val types.Hash) {
	cur := s.GetTransientState(addr, key)
	if cur == val {
		return
	}
	s.journal.append(transientStorageChange{addr: addr, key: key, prev: cur})
	if _, ok := s.transientStorage[addr]; !ok {
		s.transientStorage[addr] = make(map[types.Hash]types.Hash)
	}
	s.transientStorage[addr][key] = val
}

// IsCreatedThisTx reports whether addr was created by CreateAccountCheckpoint
// earlier in the current transaction. Consumed by SELFDESTRUCT's EIP-6780
// gate and by LoadAccount-adjacent empty-account bookkeeping.
func (s *MemoryStateDB) IsCreatedThisTx(addr types.Address) bool {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.meta.createdLocally
	}
	return false
}

// CommitTx ends the current transaction, retaining all state mutations:
// clears transient storage and the journal; resets depth and the
// warm-address set; clears per-account "Locally" provenance flags; and
// increments the transaction id. Logs are not cleared: the transaction's
// logs stay readable through GetLogs.
func (s *MemoryStateDB) CommitTx() {
	s.endTx(false)
}

// DiscardTx ends the current transaction by reverting every journal entry
// recorded during it, then performs the same cleanup as CommitTx.
func (s *MemoryStateDB) DiscardTx() {
	s.journal.revertAll(s)
	s.endTx(true)
}

func (s *MemoryStateDB) endTx(discarded bool) {
	// A discarded tx's logs are already gone: DiscardTx's revertAll above
	// replays each logChange in reverse, which truncates/deletes s.logs[txHash]
	// itself. A committed tx's logs must survive this call — the processor
	// reads them via GetLogs(txHash) for the receipt right after Apply
	// returns, before the next transaction's SetTxContext changes s.txHash.
	_ = discarded
	s.transientStorage = make(map[types.Address]map[types.Hash]types.Hash)
	s.journal = newJournal()
	s.depth = 0
	s.refund = 0
	s.resetWarmAddresses()
	s.transactionID++
	for _, obj := range s.stateObjects {
		obj.meta.createdLocally = false
		obj.meta.selfdestructedLocally = false
		obj.meta.touched = false
		// Per-tx original-value tracking does not survive a transaction
		// boundary: the next transaction's first SLoadSpec/SStoreSpec on a
		// slot must recapture "original" from the now-current value.
		obj.slots = make(map[types.Hash]*storageSlot, len(obj.slots))
	}
}

// Finalize ends the current transaction like CommitTx, resets the
// transaction id counter to zero, and returns the resulting account set for
// the embedding to persist.
func (s *MemoryStateDB) Finalize() map[types.Address]types.Account {
	s.CommitTx()
	s.transactionID = 0
	out := make(map[types.Address]types.Account, len(s.stateObjects))
	for addr, obj := range s.stateObjects {
		if obj.selfDestructed {
			continue
		}
		out[addr] = obj.Account()
	}
	return out
}

// Account returns a defensive copy of the account's balance/nonce/code-hash
// fields (no storage).
func (o *stateObject) Account() types.Account {
	acct := types.Account{Nonce: o.account.Nonce, Root: o.account.Root}
	if o.account.Balance != nil {
		acct.Balance = new(big.Int).Set(o.account.Balance)
	} else {
		acct.Balance = new(big.Int)
	}
	if len(o.account.CodeHash) > 0 {
		acct.CodeHash = make([]byte, len(o.account.CodeHash))
		copy(acct.CodeHash, o.account.CodeHash)
	}
	return acct
}
