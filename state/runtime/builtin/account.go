package builtin

import (
	"bytes"
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/types"
)

// changeOwnerAddress hands a contract over to a new owner
type changeOwnerAddress struct{}

func (c *changeOwnerAddress) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ChangeOwnerAddress
}

func (c *changeOwnerAddress) run(in *Input, st State) (*Output, error) {
	if err := checkNoValue(in); err != nil {
		return nil, err
	}

	if err := checkNumArgs(in, 1); err != nil {
		return nil, err
	}

	owner, err := parseAddress(in.Args[0])
	if err != nil {
		return nil, err
	}

	if !in.To.IsSmartContract() || st.GetOwner(in.To) != in.Caller {
		return nil, ErrOperationNotAllowed
	}

	st.SetOwner(in.To, owner)

	return &Output{
		Logs: []*types.Log{{
			Address:    in.To,
			Identifier: []byte(in.Function),
			Topics:     [][]byte{owner.Bytes()},
		}},
	}, nil
}

// saveKeyValue writes (key, value) pairs to the storage of the caller
type saveKeyValue struct{}

func (s *saveKeyValue) gas(in *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.SaveKeyValue + schedule.BaseOperationCost.PersistPerByte*argsSize(in.Args)
}

func (s *saveKeyValue) run(in *Input, st State) (*Output, error) {
	if err := checkLocalCall(in, 2); err != nil {
		return nil, err
	}

	if len(in.Args)%2 != 0 {
		return nil, ErrInvalidArguments
	}

	for i := 0; i < len(in.Args); i += 2 {
		if bytes.HasPrefix(in.Args[i], []byte(types.ReservedStorageKeyPrefix)) {
			return nil, runtime.ErrReservedKeyWrite
		}
	}

	for i := 0; i < len(in.Args); i += 2 {
		st.SetStorage(in.Caller, in.Args[i], in.Args[i+1])
	}

	return &Output{}, nil
}

// claimDeveloperRewards pays the accumulated developer reward of a contract to its owner
type claimDeveloperRewards struct{}

func (c *claimDeveloperRewards) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ClaimDeveloperRewards
}

func (c *claimDeveloperRewards) run(in *Input, st State) (*Output, error) {
	if err := checkNoValue(in); err != nil {
		return nil, err
	}

	if !in.To.IsSmartContract() || st.GetOwner(in.To) != in.Caller {
		return nil, ErrOperationNotAllowed
	}

	reward := st.GetDeveloperReward(in.To)
	st.SetDeveloperReward(in.To, new(big.Int))

	// the reward is kept apart from the contract balance
	st.AddBalance(in.Caller, reward)

	return &Output{
		ReturnData: [][]byte{reward.Bytes()},
		Transfers: []*runtime.OutputTransfer{{
			From:     in.To,
			To:       in.Caller,
			Value:    reward,
			CallType: in.CallType,
		}},
	}, nil
}
