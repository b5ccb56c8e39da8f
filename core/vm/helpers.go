package vm

import (
	"math/big"

	"github.com/eth2030/eth2030/core/types"
	"github.com/eth2030/eth2030/crypto"
	"github.com/eth2030/eth2030/rlp"
)

// isZeroBytes reports whether every byte in b is zero. An empty slice
// counts as zero.
func isZeroBytes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// createAddress derives the address of a contract created via CREATE, per
// the Yellow Paper: the rightmost 20 bytes of keccak256(rlp([sender, nonce])).
func createAddress(caller types.Address, nonce uint64) types.Address {
	enc, err := rlp.EncodeToBytes([]interface{}{caller, nonce})
	if err != nil {
		// Fall back to direct field concatenation; this only happens if the
		// encoder rejects one of these two always-supported types.
		enc = append(append([]byte{}, caller[:]...), big.NewInt(0).SetUint64(nonce).Bytes()...)
	}
	hash := crypto.Keccak256(enc)
	var addr types.Address
	copy(addr[:], hash[12:])
	return addr
}

// create2Address derives the address of a contract created via CREATE2, per
// EIP-1014: keccak256(0xff ++ sender ++ salt ++ keccak256(initCode))[12:].
func create2Address(caller types.Address, salt *big.Int, initCodeHash []byte) types.Address {
	var saltBytes [32]byte
	if salt != nil {
		salt.FillBytes(saltBytes[:])
	}
	payload := make([]byte, 0, 1+20+32+32)
	payload = append(payload, 0xff)
	payload = append(payload, caller[:]...)
	payload = append(payload, saltBytes[:]...)
	payload = append(payload, initCodeHash...)
	hash := crypto.Keccak256(payload)
	var addr types.Address
	copy(addr[:], hash[12:])
	return addr
}

// gasEIP2929AccountCheck charges the EIP-2929 cold-access surcharge for
// touching addr if it has not yet been accessed this transaction, warming
// it as a side effect. Returns 0 if addr was already warm.
func gasEIP2929AccountCheck(evm *EVM, addr types.Address) uint64 {
	if evm.StateDB == nil {
		return 0
	}
	if evm.StateDB.AddressInAccessList(addr) {
		return 0
	}
	evm.StateDB.AddAddressToAccessList(addr)
	return ColdAccountAccessCost - WarmStorageReadCost
}

// gasEIP2929SlotCheck charges the EIP-2929 cold-access surcharge for
// reading storage slot key of addr, warming it as a side effect.
func gasEIP2929SlotCheck(evm *EVM, addr types.Address, key types.Hash) uint64 {
	if evm.StateDB == nil {
		return 0
	}
	_, slotWarm := evm.StateDB.SlotInAccessList(addr, key)
	if slotWarm {
		return 0
	}
	evm.StateDB.AddSlotToAccessList(addr, key)
	return ColdSloadCost - WarmStorageReadCost
}

// transferLogTopic is the synthetic topic EIP-7708 attaches to logs emitted
// for plain ETH transfers, distinguishing them from contract-emitted logs.
var transferLogTopic = crypto.Keccak256Hash([]byte("ValueTransfer(address,address,uint256)"))

// EmitTransferLog records a synthetic log entry for a value transfer
// between from and to, as required by EIP-7708 once active. The log carries
// no contract semantics; it exists purely so ETH transfers are observable
// through the same log-indexing path as contract events.
func EmitTransferLog(stateDB StateDB, from, to types.Address, value *big.Int) {
	if stateDB == nil || value == nil {
		return
	}
	var data [32]byte
	value.FillBytes(data[:])
	stateDB.AddLog(&types.Log{
		Address: from,
		Topics: []types.Hash{
			transferLogTopic,
			types.BytesToHash(from[:]),
			types.BytesToHash(to[:]),
		},
		Data: data[:],
	})
}

// burnLogTopic is the synthetic topic EIP-7708 attaches to logs emitted for
// the base fee portion of a transaction's payment, which is burned rather
// than credited to any account.
var burnLogTopic = crypto.Keccak256Hash([]byte("ValueBurn(address,uint256)"))

// EmitBurnLog records a synthetic log entry for the base-fee amount burned
// by a transaction, as required by EIP-7708 once active.
func EmitBurnLog(stateDB StateDB, from types.Address, amount *big.Int) {
	if stateDB == nil || amount == nil {
		return
	}
	var data [32]byte
	amount.FillBytes(data[:])
	stateDB.AddLog(&types.Log{
		Address: from,
		Topics: []types.Hash{
			burnLogTopic,
			types.BytesToHash(from[:]),
		},
		Data: data[:],
	})
}
