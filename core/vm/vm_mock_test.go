package vm

import (
	"math/big"

	"github.com/eth2030/eth2030/core/types"
)

// mockStateDB is a minimal, map-backed StateDB used by tests that only care
// about a handful of behaviors and would otherwise have to stand up a real
// core/state.MemoryStateDB. Tests embed it and override the specific methods
// they need to control.
type mockStateDB struct {
	balances   map[types.Address]*big.Int
	nonces     map[types.Address]uint64
	code       map[types.Address][]byte
	codeHash   map[types.Address]types.Hash
	storage    map[types.Address]map[types.Hash]types.Hash
	transient  map[types.Address]map[types.Hash]types.Hash
	exists     map[types.Address]bool
	destructed map[types.Address]bool
	accounts   map[types.Address]bool
	slots      map[types.Address]map[types.Hash]bool
	refund     uint64
	logs       []*types.Log
	snapID     int
}

func newMockStateDB() *mockStateDB {
	return &mockStateDB{
		balances:   make(map[types.Address]*big.Int),
		nonces:     make(map[types.Address]uint64),
		code:       make(map[types.Address][]byte),
		codeHash:   make(map[types.Address]types.Hash),
		storage:    make(map[types.Address]map[types.Hash]types.Hash),
		transient:  make(map[types.Address]map[types.Hash]types.Hash),
		exists:     make(map[types.Address]bool),
		destructed: make(map[types.Address]bool),
		accounts:   make(map[types.Address]bool),
		slots:      make(map[types.Address]map[types.Hash]bool),
	}
}

func (m *mockStateDB) CreateAccount(addr types.Address) {
	m.exists[addr] = true
	m.accounts[addr] = true
}

func (m *mockStateDB) SubBalance(addr types.Address, amount *big.Int) {
	if _, ok := m.balances[addr]; !ok {
		m.balances[addr] = new(big.Int)
	}
	m.balances[addr].Sub(m.balances[addr], amount)
}

func (m *mockStateDB) AddBalance(addr types.Address, amount *big.Int) {
	if _, ok := m.balances[addr]; !ok {
		m.balances[addr] = new(big.Int)
	}
	m.balances[addr].Add(m.balances[addr], amount)
}

func (m *mockStateDB) GetBalance(addr types.Address) *big.Int {
	if b, ok := m.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (m *mockStateDB) GetNonce(addr types.Address) uint64 {
	return m.nonces[addr]
}

func (m *mockStateDB) SetNonce(addr types.Address, n uint64) {
	m.nonces[addr] = n
}

func (m *mockStateDB) GetCode(addr types.Address) []byte {
	return m.code[addr]
}

func (m *mockStateDB) SetCode(addr types.Address, code []byte) {
	m.code[addr] = code
	m.codeHash[addr] = types.Hash{}
}

func (m *mockStateDB) GetCodeHash(addr types.Address) types.Hash {
	return m.codeHash[addr]
}

func (m *mockStateDB) GetCodeSize(addr types.Address) int {
	return len(m.code[addr])
}

func (m *mockStateDB) SelfDestruct(addr types.Address) {
	m.destructed[addr] = true
}

func (m *mockStateDB) HasSelfDestructed(addr types.Address) bool {
	return m.destructed[addr]
}

func (m *mockStateDB) GetState(addr types.Address, key types.Hash) types.Hash {
	if slots, ok := m.storage[addr]; ok {
		return slots[key]
	}
	return types.Hash{}
}

func (m *mockStateDB) SetState(addr types.Address, key, val types.Hash) {
	if m.storage[addr] == nil {
		m.storage[addr] = make(map[types.Hash]types.Hash)
	}
	m.storage[addr][key] = val
}

func (m *mockStateDB) GetCommittedState(addr types.Address, key types.Hash) types.Hash {
	return m.GetState(addr, key)
}

func (m *mockStateDB) Exist(addr types.Address) bool {
	return m.exists[addr]
}

func (m *mockStateDB) Empty(addr types.Address) bool {
	return !m.exists[addr]
}

func (m *mockStateDB) Snapshot() int {
	m.snapID++
	return m.snapID
}

func (m *mockStateDB) RevertToSnapshot(int) {}

func (m *mockStateDB) AddLog(log *types.Log) {
	m.logs = append(m.logs, log)
}

func (m *mockStateDB) GetLogs(types.Hash) []*types.Log {
	return m.logs
}

func (m *mockStateDB) SetTxContext(types.Hash, int) {}

func (m *mockStateDB) AddRefund(gas uint64) {
	m.refund += gas
}

func (m *mockStateDB) SubRefund(gas uint64) {
	if gas > m.refund {
		m.refund = 0
		return
	}
	m.refund -= gas
}

func (m *mockStateDB) GetRefund() uint64 {
	return m.refund
}

func (m *mockStateDB) AddAddressToAccessList(addr types.Address) {
	m.accounts[addr] = true
}

func (m *mockStateDB) AddSlotToAccessList(addr types.Address, key types.Hash) {
	m.accounts[addr] = true
	if m.slots[addr] == nil {
		m.slots[addr] = make(map[types.Hash]bool)
	}
	m.slots[addr][key] = true
}

func (m *mockStateDB) AddressInAccessList(addr types.Address) bool {
	return m.accounts[addr]
}

func (m *mockStateDB) SlotInAccessList(addr types.Address, key types.Hash) (bool, bool) {
	addrOk := m.accounts[addr]
	slotOk := m.slots[addr] != nil && m.slots[addr][key]
	return addrOk, slotOk
}

func (m *mockStateDB) GetTransientState(addr types.Address, key types.Hash) types.Hash {
	if slots, ok := m.transient[addr]; ok {
		return slots[key]
	}
	return types.Hash{}
}

func (m *mockStateDB) SetTransientState(addr types.Address, key, val types.Hash) {
	if m.transient[addr] == nil {
		m.transient[addr] = make(map[types.Hash]types.Hash)
	}
	m.transient[addr][key] = val
}

func (m *mockStateDB) ClearTransientStorage() {
	m.transient = make(map[types.Address]map[types.Hash]types.Hash)
}
