package vm

// errors.go collects the sentinel errors returned by frame dispatch and
// interpretation. Callers use errors.Is against these to distinguish a
// revert (state change undone, remaining gas returned) from an exceptional
// halt (state change undone, all gas consumed).

import "errors"

var (
	ErrOutOfGas                 = errors.New("vm: out of gas")
	ErrExecutionReverted        = errors.New("vm: execution reverted")
	ErrWriteProtection          = errors.New("vm: write protection")
	ErrMaxCallDepthExceeded     = errors.New("vm: max call depth exceeded")
	ErrReturnDataOutOfBounds    = errors.New("vm: return data out of bounds")
	ErrInvalidJump              = errors.New("vm: invalid jump destination")
	ErrStackUnderflow           = errors.New("vm: stack underflow")
	ErrStackOverflow            = errors.New("vm: stack overflow")
	ErrGasUintOverflow          = errors.New("vm: gas uint64 overflow")
	ErrInvalidOpcode            = errors.New("vm: invalid opcode")
	ErrInsufficientBalance      = errors.New("vm: insufficient balance for transfer")
	ErrContractAddressCollision = errors.New("vm: contract address collision")
	ErrNonceUintOverflow        = errors.New("vm: nonce uint64 overflow")
	ErrCodeStoreOutOfGas        = errors.New("vm: code storage out of gas")
)
