package keeper_test

import (
	"github.com/ethereum/go-ethereum/common"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
	photontesting "github.com/Chiplis/Photon-solana-contracts/testing"
)

// TestAddKeeperQuorum covers a governance protocol with keepers A, B and C at a 60%
// target rate: two signatures reach quorum, one does not.
func (suite *KeeperTestSuite) TestAddKeeperQuorum() {
	gov := suite.chain.Params.GovProtocolID
	_, newKeepers := photontesting.GenerateKeys(suite.T(), 2)
	op := &types.AddKeeperOperation{ProtocolID: gov, Keepers: newKeepers}

	// signed by B only
	err := suite.chain.Execute(suite.chain.SignOperation(suite.chain.NewOperation(op, 1), 1), gov)
	suite.Require().ErrorIs(err, types.ErrInsufficientQuorum)
	suite.Require().Equal(suite.chain.KeeperAddresses(), suite.chain.GovProtocolInfo().Keepers.Elements())

	// signed by B and C
	err = suite.chain.Execute(suite.chain.SignOperation(suite.chain.NewOperation(op, 1), 1, 2), gov)
	suite.Require().NoError(err)

	expected := append(suite.chain.KeeperAddresses(), newKeepers...)
	suite.Require().Equal(expected, suite.chain.GovProtocolInfo().Keepers.Elements())
}

func (suite *KeeperTestSuite) TestApply() {
	var (
		target   types.ProtocolID
		signedOp types.SignedOperation
	)

	bridge := photontesting.ProtocolID(suite.T(), "bridge")
	executor := photontesting.GenerateLedgerAddress(100)
	protocolAddr := photontesting.GenerateLedgerAddress(200)

	sign := func(op types.GovOperation, idxs ...int) types.SignedOperation {
		return suite.chain.SignOperation(suite.chain.NewOperation(op, 7), idxs...)
	}

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success: add executor",
			func() {
				signedOp = sign(&types.AddExecutorOperation{ProtocolID: bridge, Executor: executor}, 0, 1)
			},
			nil,
		},
		{
			"success: duplicate signatures of a single keeper count once alongside another keeper",
			func() {
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 0, 0, 2)
			},
			nil,
		},
		{
			"success: signature with ethereum style recovery id",
			func() {
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 0, 1)
				sig := append([]byte{}, signedOp.Signatures[0].Signature...)
				sig[types.SignatureLength-1] += 27
				signedOp.Signatures[0].Signature = sig
			},
			nil,
		},
		{
			"failure: no signatures",
			func() {
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5})
			},
			types.ErrInsufficientQuorum,
		},
		{
			"failure: duplicate signatures of a single keeper count once",
			func() {
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 0, 0, 0)
			},
			types.ErrInsufficientQuorum,
		},
		{
			"failure: signer is not a keeper",
			func() {
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 0, 1)
				outsider := photontesting.SignOperation(suite.T(), signedOp.OperationData, photontesting.GenerateKey(suite.T()))
				signedOp.Signatures = append(signedOp.Signatures, outsider.Signatures...)
			},
			types.ErrInvalidSignature,
		},
		{
			"failure: claimed signer differs from recovered signer",
			func() {
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 0, 1)
				signedOp.Signatures[0].Signer = suite.chain.KeeperAddresses()[2]
			},
			types.ErrInvalidSignature,
		},
		{
			"failure: malformed signature",
			func() {
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 0, 1)
				signedOp.Signatures[1].Signature = signedOp.Signatures[1].Signature[:10]
			},
			types.ErrInvalidSignature,
		},
		{
			"failure: signature over different operation",
			func() {
				other := sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 6}, 0, 1)
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 0, 1)
				signedOp.Signatures = other.Signatures
			},
			types.ErrInvalidSignature,
		},
		{
			"failure: operation addressed to a different governance protocol",
			func() {
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5})
				signedOp.OperationData.ProtocolID = bridge
				signedOp = suite.chain.SignOperation(signedOp.OperationData, 0, 1)
			},
			types.ErrTargetProtocolMismatch,
		},
		{
			"failure: decoded protocol differs from target",
			func() {
				target = photontesting.ProtocolID(suite.T(), "other")
				signedOp = sign(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 0, 1)
			},
			types.ErrTargetProtocolMismatch,
		},
		{
			"failure: unsupported selector",
			func() {
				opData := suite.chain.NewOperation(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 7)
				opData.FunctionSelector = types.NewSelector(0xdeadbeef)
				signedOp = suite.chain.SignOperation(opData, 0, 1)
			},
			types.ErrUnsupportedOperation,
		},
		{
			"failure: params do not match selector schema",
			func() {
				opData := suite.chain.NewOperation(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 7)
				opData.Params = opData.Params[:40]
				signedOp = suite.chain.SignOperation(opData, 0, 1)
			},
			types.ErrInvalidProtoMsg,
		},
		{
			"failure: empty params",
			func() {
				opData := suite.chain.NewOperation(&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 5}, 7)
				opData.Params = nil
				signedOp = suite.chain.SignOperation(opData, 0, 1)
			},
			types.ErrInvalidOperationData,
		},
		{
			"failure: target not initialized",
			func() {
				target = photontesting.ProtocolID(suite.T(), "unknown")
				signedOp = sign(&types.AddAllowedProtocolAddressOperation{ProtocolID: target, ProtocolAddress: protocolAddr}, 0, 1)
			},
			types.ErrProtocolNotInitialized,
		},
		{
			"failure: keeper capacity exceeded",
			func() {
				_, addrs := photontesting.GenerateKeys(suite.T(), photontesting.DefaultCapacity)
				signedOp = sign(&types.AddKeeperOperation{ProtocolID: bridge, Keepers: addrs}, 0, 1)
			},
			types.ErrCapacityExceeded,
		},
		{
			"failure: zero keeper address",
			func() {
				signedOp = sign(&types.AddKeeperOperation{ProtocolID: bridge, Keepers: []common.Address{{}}}, 0, 1)
			},
			types.ErrInvalidProtocolInfo,
		},
	}

	for _, tc := range testCases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest()
			suite.chain.InitProtocol(bridge, 5000, suite.chain.KeeperAddresses(), 1)
			target = bridge

			tc.malleate()

			ctx := suite.chain.GetContext()
			before := suite.chain.Keeper.GetAllProtocols(ctx)

			err := suite.chain.Keeper.Apply(ctx, signedOp, target)

			if tc.expErr == nil {
				suite.Require().NoError(err)
				fingerprint, err := signedOp.Fingerprint()
				suite.Require().NoError(err)

				parsed, err := photontesting.ParseFingerprintFromEvents(ctx.EventManager().Events())
				suite.Require().NoError(err)
				suite.Require().Equal(fingerprint.Hex(), parsed)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
				suite.Require().Equal(before, suite.chain.Keeper.GetAllProtocols(ctx))
			}
		})
	}
}

// TestOperations applies every mutating operation to an initialized protocol and
// checks that only the target entry changes.
func (suite *KeeperTestSuite) TestOperations() {
	bridge := photontesting.ProtocolID(suite.T(), "bridge")
	bystander := photontesting.ProtocolID(suite.T(), "bystander")
	executorA := photontesting.GenerateLedgerAddress(100)
	executorB := photontesting.GenerateLedgerAddress(101)
	protocolAddr := photontesting.GenerateLedgerAddress(200)
	_, extraKeepers := photontesting.GenerateKeys(suite.T(), 2)

	testCases := []struct {
		name   string
		ops    []types.GovOperation
		expect func(info types.ProtocolInfo)
	}{
		{
			"add allowed protocol reinitializes with deduplicated keepers",
			[]types.GovOperation{
				&types.AddAllowedProtocolOperation{
					ProtocolID: bridge, ConsensusTargetRate: 7000, ProtocolFee: 3,
					Keepers: []common.Address{extraKeepers[0], extraKeepers[1], extraKeepers[0]},
				},
			},
			func(info types.ProtocolInfo) {
				suite.Require().True(info.IsInit)
				suite.Require().Equal(uint64(7000), info.ConsensusTargetRate)
				suite.Require().Equal(uint64(3), info.ProtocolFee)
				suite.Require().Equal(extraKeepers, info.Keepers.Elements())
			},
		},
		{
			"add protocol address",
			[]types.GovOperation{&types.AddAllowedProtocolAddressOperation{ProtocolID: bridge, ProtocolAddress: protocolAddr}},
			func(info types.ProtocolInfo) {
				suite.Require().Equal(protocolAddr, info.ProtocolAddress)
			},
		},
		{
			"remove protocol address clears it",
			[]types.GovOperation{
				&types.AddAllowedProtocolAddressOperation{ProtocolID: bridge, ProtocolAddress: protocolAddr},
				&types.RemoveAllowedProtocolAddressOperation{ProtocolID: bridge, ProtocolAddress: protocolAddr},
			},
			func(info types.ProtocolInfo) {
				suite.Require().False(info.HasProtocolAddress())
			},
		},
		{
			"add executor moves an existing executor to the end",
			[]types.GovOperation{
				&types.AddExecutorOperation{ProtocolID: bridge, Executor: executorA},
				&types.AddExecutorOperation{ProtocolID: bridge, Executor: executorB},
				&types.AddExecutorOperation{ProtocolID: bridge, Executor: executorA},
			},
			func(info types.ProtocolInfo) {
				suite.Require().Equal([]types.LedgerAddress{executorB, executorA}, info.Executors.Elements())
			},
		},
		{
			"remove absent executor is a no-op",
			[]types.GovOperation{
				&types.AddExecutorOperation{ProtocolID: bridge, Executor: executorA},
				&types.RemoveExecutorOperation{ProtocolID: bridge, Executor: executorB},
			},
			func(info types.ProtocolInfo) {
				suite.Require().Equal([]types.LedgerAddress{executorA}, info.Executors.Elements())
			},
		},
		{
			"remove executor",
			[]types.GovOperation{
				&types.AddExecutorOperation{ProtocolID: bridge, Executor: executorA},
				&types.AddExecutorOperation{ProtocolID: bridge, Executor: executorB},
				&types.RemoveExecutorOperation{ProtocolID: bridge, Executor: executorA},
			},
			func(info types.ProtocolInfo) {
				suite.Require().Equal([]types.LedgerAddress{executorB}, info.Executors.Elements())
			},
		},
		{
			"add keeper is idempotent",
			[]types.GovOperation{
				&types.AddKeeperOperation{ProtocolID: bridge, Keepers: extraKeepers},
				&types.AddKeeperOperation{ProtocolID: bridge, Keepers: extraKeepers},
			},
			func(info types.ProtocolInfo) {
				suite.Require().Equal(append(suite.chain.KeeperAddresses(), extraKeepers...), info.Keepers.Elements())
			},
		},
		{
			"remove keeper",
			[]types.GovOperation{
				&types.AddKeeperOperation{ProtocolID: bridge, Keepers: extraKeepers},
				&types.RemoveKeeperOperation{ProtocolID: bridge, Keepers: extraKeepers[:1]},
			},
			func(info types.ProtocolInfo) {
				suite.Require().Equal(append(suite.chain.KeeperAddresses(), extraKeepers[1]), info.Keepers.Elements())
			},
		},
		{
			"set consensus target rate",
			[]types.GovOperation{&types.SetConsensusTargetRateOperation{ProtocolID: bridge, ConsensusTargetRate: 10000}},
			func(info types.ProtocolInfo) {
				suite.Require().Equal(uint64(10000), info.ConsensusTargetRate)
			},
		},
		{
			"set protocol fee",
			[]types.GovOperation{&types.SetProtocolFeeOperation{ProtocolID: bridge, ProtocolFee: 1_000_000}},
			func(info types.ProtocolInfo) {
				suite.Require().Equal(uint64(1_000_000), info.ProtocolFee)
			},
		},
		{
			"proposer operations leave the registry unchanged",
			[]types.GovOperation{
				&types.AddAllowedProposerAddressOperation{ProtocolID: bridge, Proposer: []byte{0x01, 0x02}},
				&types.RemoveAllowedProposerAddressOperation{ProtocolID: bridge, Proposer: []byte{0x01, 0x02}},
			},
			func(info types.ProtocolInfo) {
				suite.Require().Equal(uint64(5000), info.ConsensusTargetRate)
				suite.Require().Equal(suite.chain.KeeperAddresses(), info.Keepers.Elements())
				suite.Require().Equal(0, info.Executors.Len())
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest()
			suite.chain.InitProtocol(bridge, 5000, suite.chain.KeeperAddresses(), 1)
			suite.chain.InitProtocol(bystander, 5000, suite.chain.KeeperAddresses(), 2)
			govBefore := suite.chain.GovProtocolInfo()
			bystanderBefore := suite.chain.ProtocolInfo(bystander)

			for i, op := range tc.ops {
				signedOp := suite.chain.SignOperation(suite.chain.NewOperation(op, uint64(10+i)), 0, 1)
				suite.Require().NoError(suite.chain.Execute(signedOp, bridge))
			}

			tc.expect(suite.chain.ProtocolInfo(bridge))
			suite.Require().Equal(govBefore, suite.chain.GovProtocolInfo())
			suite.Require().Equal(bystanderBefore, suite.chain.ProtocolInfo(bystander))
		})
	}
}

func (suite *KeeperTestSuite) TestProposerOperationEmitsNoopEvent() {
	bridge := photontesting.ProtocolID(suite.T(), "bridge")
	suite.chain.InitProtocol(bridge, 5000, suite.chain.KeeperAddresses(), 1)

	op := &types.AddAllowedProposerAddressOperation{ProtocolID: bridge, Proposer: []byte{0xaa}}
	ctx := suite.chain.GetContext()
	err := suite.chain.Keeper.Apply(ctx, suite.chain.SignOperation(suite.chain.NewOperation(op, 2), 0, 1), bridge)
	suite.Require().NoError(err)

	photontesting.AssertEvents(&suite.Suite, sdk.Events{
		sdk.NewEvent(
			types.EventTypeGovOperationNoop,
			sdk.NewAttribute(types.AttributeKeyOperation, op.Selector().String()),
			sdk.NewAttribute(types.AttributeKeyTarget, bridge.Hex()),
		),
	}, ctx.EventManager().Events())
}

func (suite *KeeperTestSuite) TestInitProtocolEmitsEvent() {
	bridge := photontesting.ProtocolID(suite.T(), "bridge")
	op := &types.AddAllowedProtocolOperation{ProtocolID: bridge, ConsensusTargetRate: 5000, Keepers: suite.chain.KeeperAddresses()}

	ctx := suite.chain.GetContext()
	err := suite.chain.Keeper.Apply(ctx, suite.chain.SignOperation(suite.chain.NewOperation(op, 1), 0, 1), bridge)
	suite.Require().NoError(err)

	photontesting.AssertEvents(&suite.Suite, sdk.Events{
		sdk.NewEvent(
			types.EventTypeProtocolInitialized,
			sdk.NewAttribute(types.AttributeKeyProtocolID, bridge.Hex()),
			sdk.NewAttribute(types.AttributeKeyKeeperCount, "3"),
		),
	}, ctx.EventManager().Events())
}

func (suite *KeeperTestSuite) TestExecuteGovOperation() {
	var executor types.LedgerAddress
	bridge := photontesting.ProtocolID(suite.T(), "bridge")

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"success: registered executor", func() {}, nil},
		{"failure: unregistered executor", func() {
			executor = photontesting.GenerateLedgerAddress(999)
		}, types.ErrUnauthorizedExecutor},
		{"failure: governance protocol missing", func() {
			params := suite.chain.Params
			params.GovProtocolID = photontesting.ProtocolID(suite.T(), "elsewhere")
			suite.chain.Keeper.SetParams(suite.chain.GetContext(), params)
		}, types.ErrProtocolNotInitialized},
	}

	for _, tc := range testCases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest()
			executor = suite.chain.Executors[0]

			tc.malleate()

			op := &types.AddAllowedProtocolOperation{ProtocolID: bridge, ConsensusTargetRate: 5000, Keepers: suite.chain.KeeperAddresses()}
			signedOp := suite.chain.SignOperation(suite.chain.NewOperation(op, 1), 0, 1)
			err := suite.chain.Keeper.ExecuteGovOperation(suite.chain.GetContext(), executor, signedOp, bridge)

			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().True(suite.chain.ProtocolInfo(bridge).IsInit)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
				suite.Require().False(suite.chain.Keeper.HasProtocolInfo(suite.chain.GetContext(), bridge))
			}
		})
	}
}

// TestRotateGovernanceKeepers replaces the governance keeper set and checks that the
// retired keepers can no longer reach quorum.
func (suite *KeeperTestSuite) TestRotateGovernanceKeepers() {
	gov := suite.chain.Params.GovProtocolID
	oldKeepers := suite.chain.KeeperAddresses()
	newKeys, newAddrs := photontesting.GenerateKeys(suite.T(), 2)

	add := &types.AddKeeperOperation{ProtocolID: gov, Keepers: newAddrs}
	suite.Require().NoError(suite.chain.Execute(suite.chain.SignOperation(suite.chain.NewOperation(add, 1), 0, 1), gov))

	remove := &types.RemoveKeeperOperation{ProtocolID: gov, Keepers: oldKeepers}
	opData := suite.chain.NewOperation(remove, 2)
	suite.Require().NoError(suite.chain.Execute(suite.chain.SignOperation(opData, 0, 1, 2), gov))
	suite.Require().Equal(newAddrs, suite.chain.GovProtocolInfo().Keepers.Elements())

	fee := &types.SetProtocolFeeOperation{ProtocolID: gov, ProtocolFee: 9}
	err := suite.chain.Execute(suite.chain.SignOperation(suite.chain.NewOperation(fee, 3), 0, 1, 2), gov)
	suite.Require().ErrorIs(err, types.ErrInvalidSignature)

	signedOp := photontesting.SignOperation(suite.T(), suite.chain.NewOperation(fee, 3), newKeys...)
	suite.Require().NoError(suite.chain.Execute(signedOp, gov))
	suite.Require().Equal(uint64(9), suite.chain.GovProtocolInfo().ProtocolFee)
}

// TestProtocolIsolation addresses every supported operation to a foreign protocol and
// checks that none of them reaches the target registry.
func (suite *KeeperTestSuite) TestProtocolIsolation() {
	bridge := photontesting.ProtocolID(suite.T(), "bridge")
	foreign := photontesting.ProtocolID(suite.T(), "foreign")
	executor := photontesting.GenerateLedgerAddress(100)
	_, keepers := photontesting.GenerateKeys(suite.T(), 2)

	builders := map[types.Selector]func(id types.ProtocolID) types.GovOperation{
		types.SelectorAddAllowedProtocol: func(id types.ProtocolID) types.GovOperation {
			return &types.AddAllowedProtocolOperation{ProtocolID: id, ConsensusTargetRate: 7000, ProtocolFee: 1, Keepers: keepers}
		},
		types.SelectorAddAllowedProtocolAddress: func(id types.ProtocolID) types.GovOperation {
			return &types.AddAllowedProtocolAddressOperation{ProtocolID: id, ProtocolAddress: photontesting.GenerateLedgerAddress(200)}
		},
		types.SelectorRemoveAllowedProtocolAddress: func(id types.ProtocolID) types.GovOperation {
			return &types.RemoveAllowedProtocolAddressOperation{ProtocolID: id, ProtocolAddress: photontesting.GenerateLedgerAddress(200)}
		},
		types.SelectorAddAllowedProposerAddress: func(id types.ProtocolID) types.GovOperation {
			return &types.AddAllowedProposerAddressOperation{ProtocolID: id, Proposer: []byte{0x01}}
		},
		types.SelectorRemoveAllowedProposerAddress: func(id types.ProtocolID) types.GovOperation {
			return &types.RemoveAllowedProposerAddressOperation{ProtocolID: id, Proposer: []byte{0x01}}
		},
		types.SelectorAddExecutor: func(id types.ProtocolID) types.GovOperation {
			return &types.AddExecutorOperation{ProtocolID: id, Executor: executor}
		},
		types.SelectorRemoveExecutor: func(id types.ProtocolID) types.GovOperation {
			return &types.RemoveExecutorOperation{ProtocolID: id, Executor: executor}
		},
		types.SelectorAddKeeper: func(id types.ProtocolID) types.GovOperation {
			return &types.AddKeeperOperation{ProtocolID: id, Keepers: keepers}
		},
		types.SelectorRemoveKeeper: func(id types.ProtocolID) types.GovOperation {
			return &types.RemoveKeeperOperation{ProtocolID: id, Keepers: suite.chain.KeeperAddresses()[:1]}
		},
		types.SelectorSetConsensusTargetRate: func(id types.ProtocolID) types.GovOperation {
			return &types.SetConsensusTargetRateOperation{ProtocolID: id, ConsensusTargetRate: 10000}
		},
		types.SelectorSetProtocolFee: func(id types.ProtocolID) types.GovOperation {
			return &types.SetProtocolFeeOperation{ProtocolID: id, ProtocolFee: 42}
		},
	}
	suite.Require().Len(builders, len(types.SupportedSelectors()))

	for _, selector := range types.SupportedSelectors() {
		build, ok := builders[selector]
		suite.Require().True(ok, "no operation for selector %s", selector)

		suite.Run(selector.String(), func() {
			suite.SetupTest()
			suite.chain.InitProtocol(bridge, 5000, suite.chain.KeeperAddresses(), 1)
			suite.chain.InitProtocol(foreign, 5000, suite.chain.KeeperAddresses(), 2)

			op := build(foreign)
			suite.Require().Equal(selector, op.Selector())

			ctx := suite.chain.GetContext()
			before := suite.chain.Keeper.GetAllProtocols(ctx)

			signedOp := suite.chain.SignOperation(suite.chain.NewOperation(op, 3), 0, 1, 2)
			err := suite.chain.Keeper.Apply(ctx, signedOp, bridge)
			suite.Require().ErrorIs(err, types.ErrTargetProtocolMismatch)
			suite.Require().Equal(before, suite.chain.Keeper.GetAllProtocols(ctx))

			// the same operation addressed to its own protocol is accepted
			suite.Require().NoError(suite.chain.Keeper.Apply(ctx, signedOp, foreign))
		})
	}
}

// TestExecutorCapacity fills the executor set of a protocol and checks that only a
// new executor is refused.
func (suite *KeeperTestSuite) TestExecutorCapacity() {
	bridge := photontesting.ProtocolID(suite.T(), "bridge")
	suite.chain.InitProtocol(bridge, 5000, suite.chain.KeeperAddresses(), 1)

	var executors []types.LedgerAddress
	for i := 0; i < photontesting.DefaultCapacity; i++ {
		executor := photontesting.GenerateLedgerAddress(100 + i)
		executors = append(executors, executor)

		op := &types.AddExecutorOperation{ProtocolID: bridge, Executor: executor}
		suite.Require().NoError(suite.chain.Execute(suite.chain.SignOperation(suite.chain.NewOperation(op, uint64(10+i)), 0, 1), bridge))
	}
	suite.Require().Equal(executors, suite.chain.ProtocolInfo(bridge).Executors.Elements())

	full := suite.chain.ProtocolInfo(bridge)
	op := &types.AddExecutorOperation{ProtocolID: bridge, Executor: photontesting.GenerateLedgerAddress(999)}
	err := suite.chain.Execute(suite.chain.SignOperation(suite.chain.NewOperation(op, 50), 0, 1), bridge)
	suite.Require().ErrorIs(err, types.ErrCapacityExceeded)
	suite.Require().Equal(full, suite.chain.ProtocolInfo(bridge))

	// an executor already in the full set moves to the end
	op = &types.AddExecutorOperation{ProtocolID: bridge, Executor: executors[0]}
	suite.Require().NoError(suite.chain.Execute(suite.chain.SignOperation(suite.chain.NewOperation(op, 51), 0, 1), bridge))
	suite.Require().Equal(append(executors[1:], executors[0]), suite.chain.ProtocolInfo(bridge).Executors.Elements())
}
