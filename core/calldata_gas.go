package core

// calldata_gas.go implements the EIP-7706 calldata gas dimension: a
// separate base fee, gas limit, and gas accounting for calldata, mirroring
// the EIP-4844 blob gas mechanism (an EIP-1559-style exponential fee
// adjustment driven by excess gas against a target).

import (
	"math/big"

	"github.com/eth2030/eth2030/core/types"
)

const (
	// CalldataBaseFeeUpdateFraction controls the exponential update speed,
	// matching the EIP-4844 blob base fee parameters.
	CalldataBaseFeeUpdateFraction = 8

	// CalldataTargetRatio is the ratio of gas limit to target for calldata.
	// A higher ratio than execution gas (4 vs 2) reduces how often blocks
	// hit the calldata limit.
	CalldataTargetRatio uint64 = 4

	// MinCalldataBaseFee is the minimum base fee per calldata gas (1 wei).
	MinCalldataBaseFee = 1
)

// CalcCalldataGasLimit derives the calldata gas limit from the execution gas
// limit: calldata_gas_limit = execution_gas_limit / CalldataGasLimitRatio.
func CalcCalldataGasLimit(executionGasLimit uint64) uint64 {
	return executionGasLimit / types.CalldataGasLimitRatio
}

// CalcCalldataGasTarget computes the calldata gas target for a block.
func CalcCalldataGasTarget(calldataGasLimit uint64) uint64 {
	return calldataGasLimit / CalldataTargetRatio
}

// CalcCalldataExcessGas calculates the excess calldata gas carried into the
// next block, following the EIP-4844 blob excess gas pattern.
func CalcCalldataExcessGas(parentExcess, parentUsed, parentGasLimit uint64) uint64 {
	calldataGasLimit := CalcCalldataGasLimit(parentGasLimit)
	target := CalcCalldataGasTarget(calldataGasLimit)
	sum := parentExcess + parentUsed
	if sum < target {
		return 0
	}
	return sum - target
}

// CalcCalldataBaseFee computes the calldata base fee from the excess
// calldata gas via the fake_exponential formula.
func CalcCalldataBaseFee(excessCalldataGas uint64, calldataGasLimit uint64) *big.Int {
	target := CalcCalldataGasTarget(calldataGasLimit)
	if target == 0 {
		return big.NewInt(MinCalldataBaseFee)
	}
	denominator := new(big.Int).SetUint64(target * CalldataBaseFeeUpdateFraction)
	return fakeExponential(
		big.NewInt(MinCalldataBaseFee),
		new(big.Int).SetUint64(excessCalldataGas),
		denominator,
	)
}

// CalcCalldataBaseFeeFromHeader computes the calldata base fee from a
// header's excess calldata gas, or MinCalldataBaseFee if the header
// predates EIP-7706.
func CalcCalldataBaseFeeFromHeader(header *types.Header) *big.Int {
	if header.CalldataExcessGas == nil {
		return big.NewInt(MinCalldataBaseFee)
	}
	calldataGasLimit := CalcCalldataGasLimit(header.GasLimit)
	return CalcCalldataBaseFee(*header.CalldataExcessGas, calldataGasLimit)
}

// CalldataGasCost computes the total wei cost for a transaction's calldata
// gas: cost = calldata_gas * calldata_base_fee.
func CalldataGasCost(calldataGas uint64, calldataBaseFee *big.Int) *big.Int {
	return new(big.Int).Mul(calldataBaseFee, new(big.Int).SetUint64(calldataGas))
}
