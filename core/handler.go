package core

// handler.go models transaction application as a set of hookable operations
// on a handler object rather than as one monolithic function. A Handler is
// cheap to construct per transaction and carries no state of its own;
// all per-transaction working state lives in the frameContext each phase
// method receives and mutates. applyMessage is now a thin driver that runs
// the four phases in order and lets catchError turn a validation/setup
// failure into the same error applyMessage always returned.

import (
	"fmt"
	"math/big"

	"github.com/eth2030/eth2030/core/state"
	"github.com/eth2030/eth2030/core/types"
	"github.com/eth2030/eth2030/core/vm"
)

// frameContext carries everything a phase computes for the next phase to
// consume: the inputs are fixed at construction, everything else is filled
// in as validate/pre_execute/execute/post_execute run.
type frameContext struct {
	config  *ChainConfig
	getHash vm.GetHashFunc
	statedb state.StateDB
	header  *types.Header
	msg     *Message
	gp      *GasPool

	isCreate      bool
	isGlamsterdan bool
	isEIP1559Tx   bool

	gasPrice         *big.Int
	gasCost          *big.Int
	calldataGasCost  *big.Int
	intrinsicGas     uint64
	gasLeft          uint64
	authCount        uint64
	emptyAuthCount   uint64
	forkRules        vm.ForkRules
	precompileAddrs  map[types.Address]vm.PrecompiledContract

	evm *vm.EVM

	execErr      error
	returnData   []byte
	gasRemaining uint64
	contractAddr types.Address
}

// Handler runs the four-phase transaction-application pipeline: validate
// rejects malformed or unaffordable transactions before any state mutation,
// preExecute buys gas and primes the EVM for the frame loop, execute runs
// the call or creation, and postExecute settles gas refunds and payments.
// catchError is the pipeline's only recovery hook: every early return from
// validate/preExecute routes through it so the gas pool is always restored
// consistently.
type Handler struct{}

// NewHandler constructs a Handler. It holds no per-chain configuration of
// its own; every phase method takes the ChainConfig via frameContext so a
// single Handler can process transactions from different forks.
func NewHandler() *Handler {
	return &Handler{}
}

// validate checks the transaction is well-formed and affordable without
// mutating any account balance, nonce, or code. A non-nil error here means
// the transaction never entered the block: the gas pool is restored and
// the caller should not charge for it.
func (h *Handler) validate(ctx *frameContext) error {
	msg, statedb, header := ctx.msg, ctx.statedb, ctx.header

	stateNonce := statedb.GetNonce(msg.From)
	if msg.Nonce < stateNonce {
		return fmt.Errorf("%w: address %v, tx nonce: %d, state nonce: %d", ErrNonceTooLow, msg.From, msg.Nonce, stateNonce)
	}
	if msg.Nonce > stateNonce {
		return fmt.Errorf("%w: address %v, tx nonce: %d, state nonce: %d", ErrNonceTooHigh, msg.From, msg.Nonce, stateNonce)
	}

	// EIP-3607: only EOAs (including EIP-7702-delegated EOAs) may originate
	// transactions.
	if codeHash := statedb.GetCodeHash(msg.From); codeHash != (types.Hash{}) && codeHash != types.EmptyCodeHash {
		if code := statedb.GetCode(msg.From); !types.HasDelegationPrefix(code) {
			return fmt.Errorf("sender not an EOA: address %v, codehash: %v", msg.From, codeHash)
		}
	}

	ctx.isEIP1559Tx = msg.TxType >= types.DynamicFeeTxType
	if ctx.isEIP1559Tx && header.BaseFee != nil && header.BaseFee.Sign() > 0 {
		if msg.GasFeeCap != nil && msg.GasTipCap != nil {
			if msg.GasFeeCap.Cmp(msg.GasTipCap) < 0 {
				return fmt.Errorf("max priority fee per gas higher than max fee per gas: tip %s, cap %s", msg.GasTipCap, msg.GasFeeCap)
			}
			if msg.GasFeeCap.Cmp(header.BaseFee) < 0 {
				return fmt.Errorf("max fee per gas less than block base fee: fee %s, baseFee %s", msg.GasFeeCap, header.BaseFee)
			}
		}
	}

	ctx.gasPrice = msgEffectiveGasPrice(msg, header.BaseFee)
	ctx.gasCost = new(big.Int).Mul(ctx.gasPrice, new(big.Int).SetUint64(msg.GasLimit))

	if ctx.config != nil && ctx.config.IsGlamsterdan(header.Time) && header.CalldataExcessGas != nil {
		calldataBaseFee := CalcCalldataBaseFeeFromHeader(header)
		calldataGas := types.CalldataTokenGas(msg.Data)
		ctx.calldataGasCost = CalldataGasCost(calldataGas, calldataBaseFee)
	} else {
		ctx.calldataGasCost = new(big.Int)
	}

	balanceGasCost := ctx.gasCost
	if ctx.isEIP1559Tx && msg.GasFeeCap != nil {
		balanceGasCost = new(big.Int).Mul(msg.GasFeeCap, new(big.Int).SetUint64(msg.GasLimit))
	}
	totalCost := new(big.Int).Add(msg.Value, balanceGasCost)
	totalCost.Add(totalCost, ctx.calldataGasCost)
	balance := statedb.GetBalance(msg.From)
	if balance.Cmp(totalCost) < 0 {
		return fmt.Errorf("%w: address %v have %v want %v", ErrInsufficientBalance, msg.From, balance, totalCost)
	}

	ctx.isCreate = msg.To == nil
	ctx.isGlamsterdan = ctx.config != nil && ctx.config.IsGlamsterdan(header.Time)
	return nil
}

// preExecute buys gas from the sender, advances their nonce, computes
// intrinsic gas, and builds the EVM the execute phase will drive: jump
// table, precompile set, fork rules, and the EIP-2929/2930 warm set.
func (h *Handler) preExecute(ctx *frameContext) error {
	msg, statedb, header := ctx.msg, ctx.statedb, ctx.header

	deduction := new(big.Int).Add(ctx.gasCost, ctx.calldataGasCost)
	statedb.SubBalance(msg.From, deduction)

	if !ctx.isCreate {
		statedb.SetNonce(msg.From, msg.Nonce+1)
	}

	if msg.TxType == types.SetCodeTxType && len(msg.AuthList) > 0 {
		ctx.authCount = uint64(len(msg.AuthList))
		for _, auth := range msg.AuthList {
			if !statedb.Exist(auth.Address) || statedb.Empty(auth.Address) {
				ctx.emptyAuthCount++
			}
		}
	}

	var igas uint64
	if ctx.isGlamsterdan {
		hasValue := msg.Value != nil && msg.Value.Sign() > 0
		toExists := msg.To != nil && statedb.Exist(*msg.To)
		igas = intrinsicGasGlamst(msg.Data, ctx.isCreate, hasValue, toExists, ctx.authCount, ctx.emptyAuthCount)
		igas += accessListGasGlamst(msg.AccessList)
	} else {
		isShanghaiForIgas := ctx.config != nil && ctx.config.IsMerge() && ctx.config.IsShanghai(header.Time)
		igas = intrinsicGas(msg.Data, ctx.isCreate, isShanghaiForIgas, ctx.authCount, ctx.emptyAuthCount)
		igas += accessListGas(msg.AccessList)
	}

	if ctx.config != nil && ctx.config.IsPrague(header.Time) {
		var floor uint64
		if ctx.isGlamsterdan {
			floor = calldataFloorGasGlamst(msg.Data, msg.AccessList, ctx.isCreate)
		} else {
			floor = calldataFloorGas(msg.Data, ctx.isCreate)
		}
		if floor > igas {
			igas = floor
		}
	}

	if igas > msg.GasLimit {
		return fmt.Errorf("intrinsic gas too low: have %d, want %d", msg.GasLimit, igas)
	}
	ctx.intrinsicGas = igas
	ctx.gasLeft = msg.GasLimit - igas

	blockCtx := vm.BlockContext{
		GetHash:     ctx.getHash,
		BlockNumber: header.Number,
		Time:        header.Time,
		Coinbase:    header.Coinbase,
		GasLimit:    header.GasLimit,
		BaseFee:     header.BaseFee,
		PrevRandao:  header.MixDigest,
	}
	txCtx := vm.TxContext{
		Origin:     msg.From,
		GasPrice:   ctx.gasPrice,
		BlobHashes: msg.BlobHashes,
	}
	ctx.evm = vm.NewEVMWithState(blockCtx, txCtx, vm.Config{}, statedb)

	if ctx.config != nil {
		rules := ctx.config.Rules(header.Number, ctx.config.IsMerge(), header.Time)
		ctx.forkRules = vm.ForkRules{
			IsGlamsterdan:    rules.IsGlamsterdan,
			IsPrague:         rules.IsPrague,
			IsCancun:         rules.IsCancun,
			IsShanghai:       rules.IsShanghai,
			IsMerge:          rules.IsMerge,
			IsLondon:         rules.IsLondon,
			IsBerlin:         rules.IsBerlin,
			IsIstanbul:       rules.IsIstanbul,
			IsConstantinople: rules.IsConstantinople,
			IsByzantium:      rules.IsByzantium,
			IsHomestead:      rules.IsHomestead,
			IsEIP158:         rules.IsEIP158,
			IsEIP7708:        rules.IsEIP7708,
			IsEIP7954:        rules.IsEIP7954,
		}
		ctx.evm.SetJumpTable(vm.SelectJumpTable(ctx.forkRules))
		ctx.precompileAddrs = vm.SelectPrecompiles(ctx.forkRules)
		ctx.evm.SetPrecompiles(ctx.precompileAddrs)
		ctx.evm.SetForkRules(ctx.forkRules)
	}

	statedb.AddAddressToAccessList(msg.From)
	if msg.To != nil {
		statedb.AddAddressToAccessList(*msg.To)
	}
	statedb.AddAddressToAccessList(header.Coinbase)
	for addr := range ctx.precompileAddrs {
		statedb.AddAddressToAccessList(addr)
	}
	for _, tuple := range msg.AccessList {
		statedb.AddAddressToAccessList(tuple.Address)
		for _, key := range tuple.StorageKeys {
			statedb.AddSlotToAccessList(tuple.Address, key)
		}
	}

	if msg.TxType == types.SetCodeTxType && len(msg.AuthList) > 0 {
		var chainID *big.Int
		if ctx.config != nil && ctx.config.ChainID != nil {
			chainID = ctx.config.ChainID
		}
		if err := ProcessAuthorizations(statedb, msg.AuthList, chainID); err != nil {
			return fmt.Errorf("processing EIP-7702 authorizations: %w", err)
		}
	}
	return nil
}

// execute runs the frame loop: a top-level CREATE or CALL. Unlike validate
// and preExecute, a non-nil outcome here (execErr) is not a pipeline
// failure — it is recorded on the context and reported to the caller inside
// a normal ExecutionResult, matching the EVM's own revert/OOG semantics.
func (h *Handler) execute(ctx *frameContext) {
	msg, evm := ctx.msg, ctx.evm
	if ctx.isCreate {
		ret, addr, gasRemaining, err := evm.Create(msg.From, msg.Data, ctx.gasLeft, msg.Value)
		ctx.returnData, ctx.contractAddr, ctx.gasRemaining, ctx.execErr = ret, addr, gasRemaining, err
		return
	}
	ret, gasRemaining, err := evm.Call(msg.From, *msg.To, msg.Data, ctx.gasLeft, msg.Value)
	ctx.returnData, ctx.gasRemaining, ctx.execErr = ret, gasRemaining, err
}

// postExecute settles the gas refund counter, the EIP-7623 calldata floor,
// the EIP-3529 refund cap, payment of the unused gas back to the sender and
// of the tip (and, on EIP-7708 chains, a base-fee burn log) to the
// coinbase, and returns the ExecutionResult the caller sees.
func (h *Handler) postExecute(ctx *frameContext) *ExecutionResult {
	msg, statedb, header, gp := ctx.msg, ctx.statedb, ctx.header, ctx.gp

	gasUsed := ctx.intrinsicGas + (ctx.gasLeft - ctx.gasRemaining)
	gasUsedBeforeRefund := gasUsed

	refund := statedb.GetRefund()
	refundDivisor := uint64(2)
	if ctx.forkRules.IsLondon {
		refundDivisor = 5
	}
	maxRefund := gasUsed / refundDivisor
	if refund > maxRefund {
		refund = maxRefund
	}
	gasUsed -= refund

	if ctx.config != nil && ctx.config.IsPrague(header.Time) {
		var floor uint64
		if ctx.isGlamsterdan {
			floor = calldataFloorGasGlamst(msg.Data, msg.AccessList, ctx.isCreate)
		} else {
			floor = calldataFloorGas(msg.Data, ctx.isCreate)
		}
		if floor > gasUsed {
			gasUsed = floor
		}
		if floor > gasUsedBeforeRefund {
			gasUsedBeforeRefund = floor
		}
	}

	remainingGas := msg.GasLimit - gasUsed
	if remainingGas > 0 {
		refundAmount := new(big.Int).Mul(ctx.gasPrice, new(big.Int).SetUint64(remainingGas))
		statedb.AddBalance(msg.From, refundAmount)
	}

	if ctx.isGlamsterdan {
		gp.AddGas(msg.GasLimit - gasUsedBeforeRefund)
	} else {
		gp.AddGas(remainingGas)
	}

	if header.BaseFee != nil && header.BaseFee.Sign() > 0 {
		tip := new(big.Int).Sub(ctx.gasPrice, header.BaseFee)
		if tip.Sign() > 0 {
			tipPayment := new(big.Int).Mul(tip, new(big.Int).SetUint64(gasUsed))
			statedb.AddBalance(header.Coinbase, tipPayment)
		}
		if ctx.evm.GetForkRules().IsEIP7708 {
			burnAmount := new(big.Int).Mul(header.BaseFee, new(big.Int).SetUint64(gasUsed))
			vm.EmitBurnLog(statedb, msg.From, burnAmount)
		}
	} else {
		coinbasePayment := new(big.Int).Mul(ctx.gasPrice, new(big.Int).SetUint64(gasUsed))
		statedb.AddBalance(header.Coinbase, coinbasePayment)
	}

	// §4.4: commit the journal now that gas/refund/payment settlement is
	// done but before the caller reads GetLogs — CommitTx keeps this
	// transaction's logs while resetting warm addresses, transient storage,
	// and the refund counter so the next transaction in the block starts
	// clean. execute's own revert/OOG (ctx.execErr) already rolled back its
	// own call frame via the vm's checkpoint handling; it is not grounds to
	// discard the whole transaction, since gas payment above must stick.
	statedb.CommitTx()

	return &ExecutionResult{
		UsedGas:         gasUsed,
		BlockGasUsed:    gasUsedBeforeRefund,
		Err:             ctx.execErr,
		ReturnData:      ctx.returnData,
		ContractAddress: ctx.contractAddr,
	}
}

// catchError restores the gas pool for a transaction that failed validate
// or preExecute and never reached the frame loop, then passes the error
// through unchanged. It is the pipeline's single place that reasons about
// "this transaction never happened": execute's own errors are terminal
// frame outcomes, not pipeline failures, and flow through postExecute
// instead. Per §4.4, a transaction that never entered the block still opened
// no journal (preExecute's SetNonce/SubBalance, if reached, are undone via
// DiscardTx) so warm addresses, transient storage, and the refund counter
// never leak into the next transaction in the block.
func (h *Handler) catchError(ctx *frameContext, err error) (*ExecutionResult, error) {
	ctx.gp.AddGas(ctx.msg.GasLimit)
	ctx.statedb.DiscardTx()
	return nil, err
}

// Apply runs the full four-phase pipeline for msg against statedb and
// returns the resulting ExecutionResult, or an error if the transaction
// never entered the block.
func (h *Handler) Apply(config *ChainConfig, getHash vm.GetHashFunc, statedb state.StateDB, header *types.Header, msg *Message, gp *GasPool) (*ExecutionResult, error) {
	ctx := &frameContext{config: config, getHash: getHash, statedb: statedb, header: header, msg: msg, gp: gp}

	if err := gp.SubGas(msg.GasLimit); err != nil {
		return nil, err
	}
	if err := h.validate(ctx); err != nil {
		return h.catchError(ctx, err)
	}
	if err := h.preExecute(ctx); err != nil {
		return h.catchError(ctx, err)
	}
	h.execute(ctx)
	return h.postExecute(ctx), nil
}
