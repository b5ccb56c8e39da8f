package types

// CalldataTokenGasCost is the EIP-7623 gas cost of a single calldata token:
// each zero byte counts as one token, each non-zero byte as four, per
// CalcFrameTxGas and the EIP-7706 calldata gas dimension below.
const CalldataTokenGasCost = 4

// CalldataGasLimitRatio derives a block's calldata gas limit from its
// execution gas limit under EIP-7706 (calldata_gas_limit = gas_limit / ratio).
const CalldataGasLimitRatio uint64 = 8

// CalldataTokenGas returns the token-based calldata gas cost of data.
func CalldataTokenGas(data []byte) uint64 {
	var tokens uint64
	for _, b := range data {
		if b == 0 {
			tokens++
		} else {
			tokens += 4
		}
	}
	return tokens * CalldataTokenGasCost
}

// CalldataGas returns the EIP-7706 calldata gas charged for the
// transaction's calldata, independent of its execution intrinsic gas.
func (tx *Transaction) CalldataGas() uint64 {
	return CalldataTokenGas(tx.Data())
}
