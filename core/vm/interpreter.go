package vm

// interpreter.go implements the bytecode interpreter loop: instruction
// dispatch, per-opcode gas accounting (including EIP-2929 warm/cold access
// and quadratic memory expansion), and the glue into the call/create
// handlers for the CALL-family and CREATE-family opcodes.

import (
	"math/big"

	"github.com/eth2030/eth2030/core/types"
	"github.com/eth2030/eth2030/crypto"
	"github.com/holiman/uint256"
)

// Run executes contract.Code starting at pc 0 with the given call input,
// returning the data returned by RETURN (or the revert reason for REVERT)
// and any execution error. Gas is deducted directly from contract.Gas.
func (evm *EVM) Run(contract *Contract, input []byte) ([]byte, error) {
	contract.Input = input
	in := &interpreterState{
		evm:      evm,
		contract: contract,
		stack:    NewStack(),
		mem:      NewMemory(),
	}
	return in.loop()
}

type interpreterState struct {
	evm      *EVM
	contract *Contract
	stack    *Stack
	mem      *Memory
	pc       uint64
}

func (in *interpreterState) useGas(gas uint64) error {
	if !in.contract.UseGas(gas) {
		return ErrOutOfGas
	}
	return nil
}

// expandMemory charges (and returns an error for insufficient gas on) the
// expansion needed to cover [offset, offset+size).
func (in *interpreterState) expandMemory(offset, size uint64) error {
	if size == 0 {
		return nil
	}
	end := offset + size
	if end < offset {
		return ErrGasUintOverflow
	}
	gas := MemoryExpansionGas(uint64(in.mem.Len()), end)
	if gas > 0 {
		if err := in.useGas(gas); err != nil {
			return err
		}
	}
	in.mem.Resize(end)
	return nil
}

func addrToUint256(addr types.Address) *uint256.Int {
	return new(uint256.Int).SetBytes(addr[:])
}

func uint256ToAddress(v *uint256.Int) types.Address {
	b := v.Bytes20()
	return types.Address(b)
}

func hashToUint256(h types.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes(h[:])
}

func uint256ToHash(v *uint256.Int) types.Hash {
	b := v.Bytes32()
	return types.Hash(b)
}

//nolint:gocyclo // a single opcode dispatch loop is the idiomatic shape for an interpreter
func (in *interpreterState) loop() ([]byte, error) {
	evm := in.evm
	contract := in.contract
	stack := in.stack
	mem := in.mem

	for {
		if in.pc >= uint64(len(contract.Code)) {
			return nil, nil
		}
		op := contract.GetOp(in.pc)
		if evm.jumpTable != nil && !evm.jumpTable.enabled(op) {
			return nil, ErrInvalidOpcode
		}

		switch {
		case op.IsPush():
			n := op.PushSize()
			if err := in.useGas(GasPush); err != nil {
				return nil, err
			}
			start := in.pc + 1
			end := start + uint64(n)
			var data []byte
			if start < uint64(len(contract.Code)) {
				if end > uint64(len(contract.Code)) {
					end = uint64(len(contract.Code))
				}
				data = contract.Code[start:end]
			}
			var v uint256.Int
			v.SetBytes(data)
			if err := stack.Push(&v); err != nil {
				return nil, err
			}
			in.pc += uint64(n) + 1
			continue

		case op.IsDup():
			if err := in.useGas(GasFastestStep); err != nil {
				return nil, err
			}
			if err := stack.Dup(int(op - DUP1 + 1)); err != nil {
				return nil, err
			}
			in.pc++
			continue

		case op.IsSwap():
			if err := in.useGas(GasFastestStep); err != nil {
				return nil, err
			}
			if err := stack.Swap(int(op - SWAP1 + 1)); err != nil {
				return nil, err
			}
			in.pc++
			continue

		case op.IsLog():
			ret, err := in.execLog(op)
			if err != nil {
				return nil, err
			}
			_ = ret
			in.pc++
			continue
		}

		switch op {
		case STOP:
			return nil, nil

		case ADD, SUB, MUL, DIV, SDIV, MOD, SMOD, EXP, SIGNEXTEND, LT, GT, SLT, SGT, EQ, AND, OR, XOR, BYTE, SHL, SHR, SAR:
			if err := in.execBinaryOp(op); err != nil {
				return nil, err
			}
			in.pc++

		case ISZERO, NOT:
			if err := in.execUnaryOp(op); err != nil {
				return nil, err
			}
			in.pc++

		case ADDMOD, MULMOD:
			if err := in.execTernaryOp(op); err != nil {
				return nil, err
			}
			in.pc++

		case KECCAK256:
			if err := in.execKeccak256(); err != nil {
				return nil, err
			}
			in.pc++

		case ADDRESS:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := addrToUint256(contract.Address)
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case CALLER:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := addrToUint256(contract.CallerAddress)
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case ORIGIN:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := addrToUint256(evm.TxContext.Origin)
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case CALLVALUE:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			var v uint256.Int
			if contract.Value != nil {
				v.SetFromBig(contract.Value)
			}
			if err := stack.Push(&v); err != nil {
				return nil, err
			}
			in.pc++

		case CALLDATALOAD:
			if err := in.useGas(GasFastestStep); err != nil {
				return nil, err
			}
			off, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			offset := off.Uint64()
			data := getDataSlice(contract.Input, offset, 32)
			var v uint256.Int
			v.SetBytes(data)
			if err := stack.Push(&v); err != nil {
				return nil, err
			}
			in.pc++

		case CALLDATASIZE:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := uint256.NewInt(uint64(len(contract.Input)))
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case CALLDATACOPY:
			if err := in.execCopy(contract.Input); err != nil {
				return nil, err
			}
			in.pc++

		case CODESIZE:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := uint256.NewInt(uint64(len(contract.Code)))
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case CODECOPY:
			if err := in.execCopy(contract.Code); err != nil {
				return nil, err
			}
			in.pc++

		case RETURNDATASIZE:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := uint256.NewInt(uint64(len(evm.returnData)))
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case RETURNDATACOPY:
			destOff, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			dataOff, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			size, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := in.useGas(GasFastestStep); err != nil {
				return nil, err
			}
			start := dataOff.Uint64()
			length := size.Uint64()
			if start+length > uint64(len(evm.returnData)) || start+length < start {
				return nil, ErrReturnDataOutOfBounds
			}
			if err := in.expandMemory(destOff.Uint64(), length); err != nil {
				return nil, err
			}
			if err := in.useGas(safeMul(GasCopy, toWordSize(length))); err != nil {
				return nil, err
			}
			mem.Set(destOff.Uint64(), length, evm.returnData[start:start+length])
			in.pc++

		case GASPRICE:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			var v uint256.Int
			if evm.TxContext.GasPrice != nil {
				v.SetFromBig(evm.TxContext.GasPrice)
			}
			if err := stack.Push(&v); err != nil {
				return nil, err
			}
			in.pc++

		case BALANCE:
			addrInt, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			addr := uint256ToAddress(&addrInt)
			if err := in.useGas(WarmStorageReadCost); err != nil {
				return nil, err
			}
			if err := in.chargeColdAccount(addr); err != nil {
				return nil, err
			}
			var bal uint256.Int
			if evm.StateDB != nil {
				if b := evm.StateDB.GetBalance(addr); b != nil {
					bal.SetFromBig(b)
				}
			}
			if err := stack.Push(&bal); err != nil {
				return nil, err
			}
			in.pc++

		case SELFBALANCE:
			if err := in.useGas(GasFastStep); err != nil {
				return nil, err
			}
			var bal uint256.Int
			if evm.StateDB != nil {
				if b := evm.StateDB.GetBalance(contract.Address); b != nil {
					bal.SetFromBig(b)
				}
			}
			if err := stack.Push(&bal); err != nil {
				return nil, err
			}
			in.pc++

		case EXTCODESIZE:
			addrInt, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			addr := uint256ToAddress(&addrInt)
			if err := in.useGas(WarmStorageReadCost); err != nil {
				return nil, err
			}
			if err := in.chargeColdAccount(addr); err != nil {
				return nil, err
			}
			size := 0
			if evm.StateDB != nil {
				size = evm.StateDB.GetCodeSize(addr)
			}
			v := uint256.NewInt(uint64(size))
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case EXTCODEHASH:
			addrInt, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			addr := uint256ToAddress(&addrInt)
			if err := in.useGas(WarmStorageReadCost); err != nil {
				return nil, err
			}
			if err := in.chargeColdAccount(addr); err != nil {
				return nil, err
			}
			var hash types.Hash
			if evm.StateDB != nil && evm.StateDB.Exist(addr) {
				hash = evm.StateDB.GetCodeHash(addr)
			}
			v := hashToUint256(hash)
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case EXTCODECOPY:
			addrInt, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			addr := uint256ToAddress(&addrInt)
			destOff, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			codeOff, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			size, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := in.useGas(WarmStorageReadCost); err != nil {
				return nil, err
			}
			if err := in.chargeColdAccount(addr); err != nil {
				return nil, err
			}
			length := size.Uint64()
			if err := in.expandMemory(destOff.Uint64(), length); err != nil {
				return nil, err
			}
			if err := in.useGas(safeMul(GasCopy, toWordSize(length))); err != nil {
				return nil, err
			}
			var code []byte
			if evm.StateDB != nil {
				code = evm.StateDB.GetCode(addr)
			}
			data := getDataSlice(code, codeOff.Uint64(), length)
			mem.Set(destOff.Uint64(), length, data)
			in.pc++

		case BLOCKHASH:
			num, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := in.useGas(GasExtStep); err != nil {
				return nil, err
			}
			var hash types.Hash
			if evm.Context.GetHash != nil {
				hash = evm.Context.GetHash(num.Uint64())
			}
			v := hashToUint256(hash)
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case COINBASE:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := addrToUint256(evm.Context.Coinbase)
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case TIMESTAMP:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := uint256.NewInt(evm.Context.Time)
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case NUMBER:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			var v uint256.Int
			if evm.Context.BlockNumber != nil {
				v.SetFromBig(evm.Context.BlockNumber)
			}
			if err := stack.Push(&v); err != nil {
				return nil, err
			}
			in.pc++

		case DIFFICULTY:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := hashToUint256(evm.Context.PrevRandao)
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case GASLIMIT:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			v := uint256.NewInt(evm.Context.GasLimit)
			if err := stack.Push(v); err != nil {
				return nil, err
			}
			in.pc++

		case CHAINID:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			if err := stack.Push(uint256.NewInt(0)); err != nil {
				return nil, err
			}
			in.pc++

		case BASEFEE:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			var v uint256.Int
			if evm.Context.BaseFee != nil {
				v.SetFromBig(evm.Context.BaseFee)
			}
			if err := stack.Push(&v); err != nil {
				return nil, err
			}
			in.pc++

		case POP:
			if err := in.useGas(GasPop); err != nil {
				return nil, err
			}
			if _, err := stack.Pop(); err != nil {
				return nil, err
			}
			in.pc++

		case MLOAD:
			off, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			offset := off.Uint64()
			if err := in.expandMemory(offset, 32); err != nil {
				return nil, err
			}
			if err := in.useGas(GasFastestStep); err != nil {
				return nil, err
			}
			var v uint256.Int
			v.SetBytes(mem.GetPtr(offset, 32))
			if err := stack.Push(&v); err != nil {
				return nil, err
			}
			in.pc++

		case MSTORE:
			off, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			val, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			offset := off.Uint64()
			if err := in.expandMemory(offset, 32); err != nil {
				return nil, err
			}
			if err := in.useGas(GasFastestStep); err != nil {
				return nil, err
			}
			b := val.Bytes32()
			mem.Set32(offset, b[:])
			in.pc++

		case MSTORE8:
			off, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			val, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			offset := off.Uint64()
			if err := in.expandMemory(offset, 1); err != nil {
				return nil, err
			}
			if err := in.useGas(GasFastestStep); err != nil {
				return nil, err
			}
			mem.Set(offset, 1, []byte{byte(val.Uint64())})
			in.pc++

		case MCOPY:
			dst, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			src, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			size, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			length := size.Uint64()
			maxEnd := dst.Uint64()
			if src.Uint64()+length > maxEnd {
				maxEnd = src.Uint64() + length
			} else {
				maxEnd = dst.Uint64() + length
			}
			if err := in.expandMemory(0, maxEnd); err != nil {
				return nil, err
			}
			if err := in.useGas(safeAdd(GasFastestStep, safeMul(GasCopy, toWordSize(length)))); err != nil {
				return nil, err
			}
			if length > 0 {
				data := mem.GetCopy(src.Uint64(), length)
				mem.Set(dst.Uint64(), length, data)
			}
			in.pc++

		case SLOAD:
			key, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			k := uint256ToHash(&key)
			if err := in.useGas(WarmStorageReadCost); err != nil {
				return nil, err
			}
			var v uint256.Int
			if evm.StateDB != nil {
				// SLoadSpec (§4.2) is both the read and the EIP-2929 cold/warm
				// access: it warms the slot as a side effect, same as
				// chargeColdSlot used to do against the classic access list.
				val, isCold, err := evm.StateDB.SLoadSpec(contract.Address, k)
				if err != nil {
					return nil, err
				}
				if isCold {
					if err := in.useGas(ColdSloadCost - WarmStorageReadCost); err != nil {
						return nil, err
					}
				}
				v = *hashToUint256(val)
			}
			if err := stack.Push(&v); err != nil {
				return nil, err
			}
			in.pc++

		case SSTORE:
			if evm.readOnly {
				return nil, ErrWriteProtection
			}
			key, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			val, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			k := uint256ToHash(&key)
			if evm.StateDB != nil {
				if err := in.chargeColdSlot(contract.Address, k); err != nil {
					return nil, err
				}
			}
			if err := in.useGas(SstoreResetGas); err != nil {
				return nil, err
			}
			if evm.StateDB != nil {
				// SStoreSpec (§4.2) drives the write through the journal
				// engine and reports the original/present/new triple; the
				// flat SstoreResetGas charge above does not depend on it and
				// no refund is recorded here, so the triple is discarded.
				if _, err := evm.StateDB.SStoreSpec(contract.Address, k, uint256ToHash(&val)); err != nil {
					return nil, err
				}
			}
			in.pc++

		case TLOAD:
			key, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := in.useGas(WarmStorageReadCost); err != nil {
				return nil, err
			}
			var v uint256.Int
			if evm.StateDB != nil {
				v = *hashToUint256(evm.StateDB.TLoadSpec(contract.Address, uint256ToHash(&key)))
			}
			if err := stack.Push(&v); err != nil {
				return nil, err
			}
			in.pc++

		case TSTORE:
			if evm.readOnly {
				return nil, ErrWriteProtection
			}
			key, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			val, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := in.useGas(WarmStorageReadCost); err != nil {
				return nil, err
			}
			if evm.StateDB != nil {
				evm.StateDB.TStoreSpec(contract.Address, uint256ToHash(&key), uint256ToHash(&val))
			}
			in.pc++

		case JUMP:
			dest, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := in.useGas(GasMidStep); err != nil {
				return nil, err
			}
			destBig := dest.ToBig()
			if !contract.validJumpdest(destBig) {
				return nil, ErrInvalidJump
			}
			in.pc = destBig.Uint64()
			continue

		case JUMPI:
			dest, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			cond, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := in.useGas(GasSlowStep); err != nil {
				return nil, err
			}
			if !cond.IsZero() {
				destBig := dest.ToBig()
				if !contract.validJumpdest(destBig) {
					return nil, ErrInvalidJump
				}
				in.pc = destBig.Uint64()
				continue
			}
			in.pc++

		case PC:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			if err := stack.Push(uint256.NewInt(in.pc)); err != nil {
				return nil, err
			}
			in.pc++

		case MSIZE:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			if err := stack.Push(uint256.NewInt(uint64(mem.Len()))); err != nil {
				return nil, err
			}
			in.pc++

		case GAS:
			if err := in.useGas(GasQuickStep); err != nil {
				return nil, err
			}
			if err := stack.Push(uint256.NewInt(contract.Gas)); err != nil {
				return nil, err
			}
			in.pc++

		case JUMPDEST:
			if err := in.useGas(1); err != nil {
				return nil, err
			}
			in.pc++

		case CREATE, CREATE2:
			ret, err := in.execCreate(op)
			if err != nil {
				return nil, err
			}
			evm.returnData = ret
			in.pc++

		case CALL, CALLCODE, DELEGATECALL, STATICCALL:
			ret, err := in.execCall(op)
			if err != nil {
				return nil, err
			}
			evm.returnData = ret
			in.pc++

		case RETURN:
			off, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			size, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := in.expandMemory(off.Uint64(), size.Uint64()); err != nil {
				return nil, err
			}
			return mem.GetCopy(off.Uint64(), size.Uint64()), nil

		case REVERT:
			off, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			size, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := in.expandMemory(off.Uint64(), size.Uint64()); err != nil {
				return nil, err
			}
			return mem.GetCopy(off.Uint64(), size.Uint64()), ErrExecutionReverted

		case SELFDESTRUCT:
			if evm.readOnly {
				return nil, ErrWriteProtection
			}
			beneficiaryInt, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			beneficiary := uint256ToAddress(&beneficiaryInt)
			if err := in.useGas(GasSelfdestruct); err != nil {
				return nil, err
			}
			if err := in.chargeColdAccount(beneficiary); err != nil {
				return nil, err
			}
			if evm.StateDB != nil {
				// Selfdestruct (§4.2) carries the EIP-6780 conditional-destroy
				// rule itself: post-Cancun it only destroys the account (and
				// moves its balance) if the account was created earlier in
				// this transaction, otherwise it degrades to a plain balance
				// transfer to beneficiary.
				if _, err := evm.StateDB.Selfdestruct(contract.Address, beneficiary, evm.forkRules.IsCancun); err != nil {
					return nil, err
				}
			}
			return nil, nil

		case INVALID:
			return nil, ErrInvalidOpcode

		default:
			return nil, ErrInvalidOpcode
		}
	}
}

// chargeColdAccount charges the EIP-2929 surcharge if addr has not been
// accessed yet this transaction.
func (in *interpreterState) chargeColdAccount(addr types.Address) error {
	extra := gasEIP2929AccountCheck(in.evm, addr)
	if extra == 0 {
		return nil
	}
	return in.useGas(extra)
}

// chargeColdSlot charges the EIP-2929 surcharge if the storage slot has not
// been accessed yet this transaction.
func (in *interpreterState) chargeColdSlot(addr types.Address, key types.Hash) error {
	extra := gasEIP2929SlotCheck(in.evm, addr, key)
	if extra == 0 {
		return nil
	}
	return in.useGas(extra)
}

func (in *interpreterState) execCopy(source []byte) error {
	destOff, err := in.stack.Pop()
	if err != nil {
		return err
	}
	srcOff, err := in.stack.Pop()
	if err != nil {
		return err
	}
	size, err := in.stack.Pop()
	if err != nil {
		return err
	}
	length := size.Uint64()
	if err := in.expandMemory(destOff.Uint64(), length); err != nil {
		return err
	}
	if err := in.useGas(safeAdd(GasFastestStep, safeMul(GasCopy, toWordSize(length)))); err != nil {
		return err
	}
	data := getDataSlice(source, srcOff.Uint64(), length)
	in.mem.Set(destOff.Uint64(), length, data)
	return nil
}

func (in *interpreterState) execKeccak256() error {
	off, err := in.stack.Pop()
	if err != nil {
		return err
	}
	size, err := in.stack.Pop()
	if err != nil {
		return err
	}
	length := size.Uint64()
	if err := in.expandMemory(off.Uint64(), length); err != nil {
		return err
	}
	gas := safeAdd(Sha3Gas, safeMul(Sha3WordGas, toWordSize(length)))
	if err := in.useGas(gas); err != nil {
		return err
	}
	data := in.mem.GetPtr(off.Uint64(), length)
	hash := crypto.Keccak256(data)
	var v uint256.Int
	v.SetBytes(hash)
	return in.stack.Push(&v)
}

func (in *interpreterState) execLog(op OpCode) ([]byte, error) {
	if in.evm.readOnly {
		return nil, ErrWriteProtection
	}
	off, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	topicCount := int(op - LOG0)
	topics := make([]types.Hash, topicCount)
	for i := 0; i < topicCount; i++ {
		t, err := in.stack.Pop()
		if err != nil {
			return nil, err
		}
		topics[i] = uint256ToHash(&t)
	}
	length := size.Uint64()
	if err := in.expandMemory(off.Uint64(), length); err != nil {
		return nil, err
	}
	gas := safeAdd(LogGas, safeMul(LogTopicGas, uint64(topicCount)))
	gas = safeAdd(gas, safeMul(LogDataGas, length))
	if err := in.useGas(gas); err != nil {
		return nil, err
	}
	if in.evm.StateDB != nil {
		in.evm.StateDB.AddLog(&types.Log{
			Address: in.contract.Address,
			Topics:  topics,
			Data:    in.mem.GetCopy(off.Uint64(), length),
		})
	}
	return nil, nil
}

func (in *interpreterState) execCreate(op OpCode) ([]byte, error) {
	if in.evm.readOnly {
		return nil, ErrWriteProtection
	}
	value, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	off, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	var salt *big.Int
	if op == CREATE2 {
		s, err := in.stack.Pop()
		if err != nil {
			return nil, err
		}
		salt = s.ToBig()
	}
	length := size.Uint64()
	if err := in.expandMemory(off.Uint64(), length); err != nil {
		return nil, err
	}
	initCode := in.mem.GetCopy(off.Uint64(), length)

	kind := CreateKindCreate
	if op == CREATE2 {
		// CREATE2's keccak256 word cost is charged once, inside
		// CreateExecutor.Execute's CalcCreateGas (it must also be the only
		// charge on the EVM.Create2 path, which never goes through
		// execCreate at all).
		kind = CreateKindCreate2
	}

	executor := NewCreateExecutor(in.evm.forkRules)
	result := executor.Execute(in.evm, &CreateParams{
		Kind:     kind,
		Caller:   in.contract.Address,
		InitCode: initCode,
		Value:    value.ToBig(),
		Salt:     salt,
		Gas:      in.contract.Gas,
	})
	in.contract.Gas = result.GasLeft

	var pushVal uint256.Int
	if result.Err == nil {
		pushVal.SetBytes(result.Address[:])
	}
	if err := in.stack.Push(&pushVal); err != nil {
		return nil, err
	}
	return result.ReturnData, nil
}

func (in *interpreterState) execCall(op OpCode) ([]byte, error) {
	var kind CallKind
	switch op {
	case CALL:
		kind = CallKindCall
	case CALLCODE:
		kind = CallKindCallCode
	case DELEGATECALL:
		kind = CallKindDelegateCall
	case STATICCALL:
		kind = CallKindStaticCall
	}

	gasArg, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	addrInt, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	target := uint256ToAddress(&addrInt)

	var value *big.Int
	if kind == CallKindCall || kind == CallKindCallCode {
		v, err := in.stack.Pop()
		if err != nil {
			return nil, err
		}
		value = v.ToBig()
	}

	inOff, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	inSize, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	retOff, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}
	retSize, err := in.stack.Pop()
	if err != nil {
		return nil, err
	}

	if kind == CallKindCall && in.evm.readOnly && value != nil && value.Sign() > 0 {
		return nil, ErrWriteProtection
	}

	memGas, ok := CallMemoryGas(in.mem, inOff.Uint64(), inSize.Uint64(), retOff.Uint64(), retSize.Uint64())
	if !ok {
		return nil, ErrGasUintOverflow
	}
	if err := in.useGas(memGas); err != nil {
		return nil, err
	}
	maxEnd := inOff.Uint64() + inSize.Uint64()
	if e := retOff.Uint64() + retSize.Uint64(); e > maxEnd {
		maxEnd = e
	}
	in.mem.Resize(maxEnd)

	if err := in.chargeColdAccount(target); err != nil {
		return nil, err
	}
	valueGas := CallValueGasCost(in.evm.StateDB, target, value)
	if err := in.useGas(valueGas); err != nil {
		return nil, err
	}

	available := in.contract.Gas
	requested := gasArg.Uint64()
	childGas, deduction := GasForCall(available, requested, IsValueTransfer(value))
	if err := in.useGas(deduction); err != nil {
		return nil, err
	}

	callInput := in.mem.GetCopy(inOff.Uint64(), inSize.Uint64())

	handler := NewCallHandler(in.evm)
	result := handler.HandleCall(&CallHandlerParams{
		Kind:     kind,
		Caller:   in.contract.Address,
		Target:   target,
		Value:    value,
		Input:    callInput,
		Gas:      childGas,
		IsStatic: kind == CallKindStaticCall || in.evm.readOnly,
	})

	returned := ReturnGasFromCall(result.GasLeft, IsValueTransfer(value))
	in.contract.Gas = safeAdd(in.contract.Gas, returned)

	CopyReturnData(in.mem, retOff.Uint64(), retSize.Uint64(), result.ReturnData)

	var success uint256.Int
	if result.Success {
		success.SetUint64(1)
	}
	if err := in.stack.Push(&success); err != nil {
		return nil, err
	}
	return result.ReturnData, nil
}

func (in *interpreterState) execBinaryOp(op OpCode) error {
	constGas := GasFastestStep
	switch op {
	case EXP:
		constGas = GasSlowStep
	case BYTE, SHL, SHR, SAR:
		constGas = GasFastestStep
	}
	y, err := in.stack.Pop()
	if err != nil {
		return err
	}
	x, err := in.stack.Pop()
	if err != nil {
		return err
	}

	var result uint256.Int
	switch op {
	case ADD:
		result.Add(&x, &y)
	case SUB:
		result.Sub(&x, &y)
	case MUL:
		result.Mul(&x, &y)
	case DIV:
		result.Div(&x, &y)
	case SDIV:
		result.SDiv(&x, &y)
	case MOD:
		result.Mod(&x, &y)
	case SMOD:
		result.SMod(&x, &y)
	case EXP:
		words := uint64(y.BitLen()+7) / 8
		if err := in.useGas(safeMul(50, words)); err != nil {
			return err
		}
		result.Exp(&x, &y)
	case SIGNEXTEND:
		result.ExtendSign(&y, &x)
	case LT:
		if x.Lt(&y) {
			result.SetUint64(1)
		}
	case GT:
		if x.Gt(&y) {
			result.SetUint64(1)
		}
	case SLT:
		if x.Slt(&y) {
			result.SetUint64(1)
		}
	case SGT:
		if x.Sgt(&y) {
			result.SetUint64(1)
		}
	case EQ:
		if x.Eq(&y) {
			result.SetUint64(1)
		}
	case AND:
		result.And(&x, &y)
	case OR:
		result.Or(&x, &y)
	case XOR:
		result.Xor(&x, &y)
	case BYTE:
		result.Set(&y)
		result.Byte(&x)
	case SHL:
		result.Lsh(&y, uint(x.Uint64()))
	case SHR:
		result.Rsh(&y, uint(x.Uint64()))
	case SAR:
		result.SRsh(&y, uint(x.Uint64()))
	}
	if op != EXP {
		if err := in.useGas(constGas); err != nil {
			return err
		}
	}
	return in.stack.Push(&result)
}

func (in *interpreterState) execUnaryOp(op OpCode) error {
	if err := in.useGas(GasFastestStep); err != nil {
		return err
	}
	x, err := in.stack.Pop()
	if err != nil {
		return err
	}
	var result uint256.Int
	switch op {
	case ISZERO:
		if x.IsZero() {
			result.SetUint64(1)
		}
	case NOT:
		result.Not(&x)
	}
	return in.stack.Push(&result)
}

func (in *interpreterState) execTernaryOp(op OpCode) error {
	if err := in.useGas(GasMidStep); err != nil {
		return err
	}
	x, err := in.stack.Pop()
	if err != nil {
		return err
	}
	y, err := in.stack.Pop()
	if err != nil {
		return err
	}
	z, err := in.stack.Pop()
	if err != nil {
		return err
	}
	var result uint256.Int
	switch op {
	case ADDMOD:
		result.AddMod(&x, &y, &z)
	case MULMOD:
		result.MulMod(&x, &y, &z)
	}
	return in.stack.Push(&result)
}
