package scenario

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/helper/keccak"
	"github.com/0xPolygon/wasm-vm/state"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/storage"
	"github.com/0xPolygon/wasm-vm/storage/memory"
	"github.com/0xPolygon/wasm-vm/types"
)

// DefaultGasLimit is used by transaction steps without a gas limit
const DefaultGasLimit = 100_000_000

// StorageFactory opens the store a scenario runs on
type StorageFactory func(name string) (storage.KV, error)

// Runner runs scenarios, each on a fresh state
type Runner struct {
	logger   hclog.Logger
	params   *chain.Params
	schedule *gas.Schedule
	runtimes []runtime.Runtime

	newStorage StorageFactory
}

func NewRunner(logger hclog.Logger, params *chain.Params, schedule *gas.Schedule, runtimes ...runtime.Runtime) *Runner {
	return &Runner{
		logger:   logger.Named("scenario"),
		params:   params,
		schedule: schedule,
		runtimes: runtimes,
		newStorage: func(string) (storage.KV, error) {
			return memory.NewMemoryStorage(), nil
		},
	}
}

// SetStorage replaces the in-memory store scenarios run on by default
func (r *Runner) SetStorage(f StorageFactory) {
	r.newStorage = f
}

// Report is the outcome of one scenario. ID tells apart the runs of the same file
// in the logs.
type Report struct {
	ID      string
	Path    string
	Name    string
	Steps   int
	Txs     int
	GasUsed uint64
	Root    types.Hash
	Err     error
}

func (r *Report) Passed() bool {
	return r.Err == nil
}

// RunFile loads and runs the scenario at path
func (r *Runner) RunFile(path string) *Report {
	s, err := LoadFile(path)
	if err != nil {
		return &Report{ID: uuid.NewString(), Path: path, Err: err}
	}

	report := r.Run(s, filepath.Dir(path))
	report.Path = path

	return report
}

// RunFiles runs the scenarios concurrently, at most workers at a time. The reports
// keep the order of paths and the error aggregates every failed scenario.
func (r *Runner) RunFiles(ctx context.Context, workers int, paths ...string) ([]*Report, error) {
	reports := make([]*Report, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, path := range paths {
		i, path := i, path

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				reports[i] = r.RunFile(path)

				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result *multierror.Error

	for _, report := range reports {
		if !report.Passed() {
			result = multierror.Append(result, fmt.Errorf("%s: %w", report.Path, report.Err))
		}
	}

	return reports, result.ErrorOrNil()
}

// Run runs every step of s. Files referenced by the scenario are relative to dir.
// A failed check does not stop the scenario, an error applying a step does.
func (r *Runner) Run(s *Scenario, dir string) *Report {
	report := &Report{ID: uuid.NewString(), Name: s.Name}

	kv, err := r.newStorage(s.Name)
	if err != nil {
		report.Err = err

		return report
	}
	defer kv.Close()

	st, err := state.NewState(kv)
	if err != nil {
		report.Err = err

		return report
	}

	executor := state.NewExecutor(r.logger, st, r.params, r.schedule)
	for _, rt := range r.runtimes {
		executor.SetRuntime(rt)
	}

	sess := &session{
		logger:   r.logger.With("scenario", s.Name, "run", report.ID),
		scenario: s,
		in:       newInterpreter(dir),
		executor: executor,
		report:   report,
	}

	var result *multierror.Error

	for i, step := range s.Steps {
		failures, err := sess.run(step)
		for _, failure := range failures {
			result = multierror.Append(result, fmt.Errorf("%s: %w", step.Name(i), failure))
		}

		report.Steps++

		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", step.Name(i), err))

			break
		}
	}

	report.Root = st.NewSnapshot().Root()
	report.Err = result.ErrorOrNil()

	return report
}

type session struct {
	logger   hclog.Logger
	scenario *Scenario
	in       *interpreter
	executor *state.Executor
	report   *Report

	block     types.BlockInfo
	prevBlock types.BlockInfo
}

func (s *session) run(step *Step) ([]error, error) {
	s.logger.Debug("step", "step", step.Step, "id", step.ID)

	switch step.Step {
	case StepSetState:
		return nil, s.setState(step)

	case StepCheckState:
		return s.checkState(step.Accounts)

	default:
		result, err := s.transaction(step)
		if err != nil {
			return nil, err
		}

		if step.Expect == nil {
			return nil, nil
		}

		return s.checkResult(step.Expect, result)
	}
}

func (s *session) setState(step *Step) error {
	if step.PreviousBlockInfo != nil {
		if err := s.blockInfo(step.PreviousBlockInfo, &s.prevBlock); err != nil {
			return err
		}
	}

	if step.CurrentBlockInfo != nil {
		if err := s.blockInfo(step.CurrentBlockInfo, &s.block); err != nil {
			return err
		}
	}

	for _, na := range step.NewAddresses {
		creator, err := s.in.address(na.CreatorAddress)
		if err != nil {
			return err
		}

		nonce, err := s.in.uint64(na.CreatorNonce)
		if err != nil {
			return err
		}

		s.in.bind(na.NewAddress, types.NewContractAddress(creator, nonce, types.WASMVMType))
	}

	if len(step.Accounts) == 0 {
		return nil
	}

	t := s.executor.BeginTxn(s.block, s.prevBlock)
	txn := t.Txn()

	for name, acc := range step.Accounts {
		addr, err := s.in.address(name)
		if err != nil {
			return err
		}

		if err := s.setAccount(txn, addr, acc); err != nil {
			return fmt.Errorf("account %s: %w", name, err)
		}
	}

	_, err := t.Commit()

	return err
}

func (s *session) blockInfo(b *BlockInfo, dst *types.BlockInfo) error {
	var err error

	fields := []struct {
		value string
		dst   *uint64
	}{
		{b.BlockNonce, &dst.Nonce},
		{b.BlockRound, &dst.Round},
		{b.BlockTimestamp, &dst.Timestamp},
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}

		if *f.dst, err = s.in.uint64(f.value); err != nil {
			return err
		}
	}

	if b.BlockEpoch != "" {
		epoch, err := s.in.uint64(b.BlockEpoch)
		if err != nil {
			return err
		}

		dst.Epoch = uint32(epoch)
	}

	if b.BlockRandomSeed != "" {
		if dst.RandomSeed, err = s.in.bytes(b.BlockRandomSeed); err != nil {
			return err
		}
	}

	// a hash the contracts can ask for
	dst.Hash = types.BytesToHash(keccak.Keccak256Concat([]byte("block"), uint64Bytes(dst.Nonce)))

	return nil
}

func (s *session) setAccount(txn *state.Txn, addr types.Address, acc *Account) error {
	txn.CreateAccount(addr)

	nonce, err := s.in.uint64(acc.Nonce)
	if err != nil {
		return err
	}

	balance, err := s.in.bigInt(acc.Balance)
	if err != nil {
		return err
	}

	rewards, err := s.in.bigInt(acc.DeveloperRewards)
	if err != nil {
		return err
	}

	txn.SetNonce(addr, nonce)
	txn.SetBalance(addr, balance)
	txn.SetDeveloperReward(addr, rewards)

	if acc.Username != "" {
		username, err := s.in.bytes(acc.Username)
		if err != nil {
			return err
		}

		txn.SetUsername(addr, username)
	}

	if acc.Code != "" {
		code, err := s.in.bytes(acc.Code)
		if err != nil {
			return err
		}

		metadata, err := s.in.bytes(acc.CodeMetadata)
		if err != nil {
			return err
		}

		txn.SetCode(addr, code, types.CodeMetadataFromBytes(metadata))
	}

	if acc.Owner != "" {
		owner, err := s.in.address(acc.Owner)
		if err != nil {
			return err
		}

		txn.SetOwner(addr, owner)
	}

	for k, v := range acc.Storage {
		key, err := s.in.bytes(k)
		if err != nil {
			return err
		}

		value, err := s.in.bytes(v)
		if err != nil {
			return err
		}

		txn.SetStorage(addr, key, value)
	}

	for token, esdt := range acc.ESDT {
		data, err := s.esdtData(token, esdt)
		if err != nil {
			return err
		}

		txn.SetEsdtData(addr, data)
	}

	return nil
}

func (s *session) esdtData(token string, esdt *ESDT) (*types.EsdtData, error) {
	tokenID, err := s.in.bytes(token)
	if err != nil {
		return nil, err
	}

	data := types.NewEsdtData(tokenID)

	if data.LastNonce, err = s.in.uint64(esdt.LastNonce); err != nil {
		return nil, err
	}

	if data.Roles, err = roles(esdt.Roles); err != nil {
		return nil, err
	}

	data.Frozen = esdt.Frozen == "true"

	for _, i := range esdt.Instances {
		nonce, err := s.in.uint64(i.Nonce)
		if err != nil {
			return nil, err
		}

		inst, err := s.instance(nonce, i)
		if err != nil {
			return nil, err
		}

		data.Instances[nonce] = inst
	}

	return data, nil
}

func (s *session) instance(nonce uint64, i *Instance) (*types.EsdtInstance, error) {
	balance, err := s.in.bigInt(i.Balance)
	if err != nil {
		return nil, err
	}

	inst := &types.EsdtInstance{Balance: balance}
	if nonce == 0 {
		return inst, nil
	}

	m := &types.EsdtMetadata{}

	if i.Creator != "" {
		if m.Creator, err = s.in.address(i.Creator); err != nil {
			return nil, err
		}
	}

	royalties, err := s.in.uint64(i.Royalties)
	if err != nil {
		return nil, err
	}

	m.Royalties = uint32(royalties)

	if m.Name, err = s.in.bytes(i.Name); err != nil {
		return nil, err
	}

	if m.Hash, err = s.in.bytes(i.Hash); err != nil {
		return nil, err
	}

	if m.Attributes, err = s.in.bytes(i.Attributes); err != nil {
		return nil, err
	}

	for _, uri := range i.URIs {
		b, err := s.in.bytes(uri)
		if err != nil {
			return nil, err
		}

		m.URIs = append(m.URIs, b)
	}

	inst.Metadata = m

	return inst, nil
}

func roles(names []string) (types.EsdtRoles, error) {
	var r types.EsdtRoles

	for _, name := range names {
		role, ok := types.RoleFromName(name)
		if !ok {
			return 0, invalid(name, "unknown role")
		}

		r |= role
	}

	return r, nil
}

func uint64Bytes(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)

	return buf
}

// transaction applies the tx of a step. Queries run on a transition that is never
// committed.
func (s *session) transaction(step *Step) (*runtime.ExecutionResult, error) {
	tx, err := s.buildTx(step)
	if err != nil {
		return nil, err
	}

	s.report.Txs++

	var result *runtime.ExecutionResult

	if step.Step == StepScQuery {
		result = s.executor.BeginTxn(s.block, s.prevBlock).Apply(tx)
	} else {
		results, _, err := s.executor.Apply(s.block, s.prevBlock, tx)
		if err != nil {
			return nil, err
		}

		result = results[0]
		s.report.GasUsed += result.GasUsed
	}

	if step.Step == StepScDeploy && result.Succeeded() {
		s.logger.Debug("deployed", "id", step.ID, "address", result.NewAddress)
	}

	return result, nil
}

func (s *session) buildTx(step *Step) (*types.Transaction, error) {
	in := step.Tx

	tx := &types.Transaction{
		CallType: types.Direct,
		Function: in.Function,
		Hash: types.BytesToHash(keccak.Keccak256Concat(
			[]byte(s.scenario.Name),
			uint64Bytes(uint64(s.report.Txs)),
		)),
	}

	var err error

	from := in.From
	if step.Step == StepScQuery && from == "" {
		from = in.To
	}

	if tx.From, err = s.in.address(from); err != nil {
		return nil, err
	}

	if step.Step == StepScDeploy {
		if tx.Code, err = s.in.bytes(in.ContractCode); err != nil {
			return nil, err
		}

		metadata, err := s.in.bytes(in.CodeMetadata)
		if err != nil {
			return nil, err
		}

		tx.CodeMetadata = types.CodeMetadataFromBytes(metadata)
		tx.Function = ""
	} else if tx.To, err = s.in.address(in.To); err != nil {
		return nil, err
	}

	if tx.Value, err = s.in.bigInt(in.EGLDValue); err != nil {
		return nil, err
	}

	if tx.GasPrice, err = s.in.bigInt(in.GasPrice); err != nil {
		return nil, err
	}

	tx.GasLimit = DefaultGasLimit
	if in.GasLimit != "" {
		if tx.GasLimit, err = s.in.uint64(in.GasLimit); err != nil {
			return nil, err
		}
	}

	for _, arg := range in.Arguments {
		b, err := s.in.bytes(arg)
		if err != nil {
			return nil, err
		}

		tx.Args = append(tx.Args, b)
	}

	for _, p := range in.ESDTValue {
		payment, err := s.payment(p)
		if err != nil {
			return nil, err
		}

		tx.ESDTTransfers = append(tx.ESDTTransfers, payment)
	}

	snap := s.executor.State().NewSnapshot()

	account, err := snap.GetAccount(tx.From)
	if err != nil {
		return nil, err
	}

	if account != nil {
		tx.Nonce = account.Nonce
	}

	return tx, nil
}

func (s *session) payment(p *Payment) (*types.EsdtTokenPayment, error) {
	token, err := s.in.bytes(p.TokenIdentifier)
	if err != nil {
		return nil, err
	}

	nonce, err := s.in.uint64(p.Nonce)
	if err != nil {
		return nil, err
	}

	amount, err := s.in.bigInt(p.Value)
	if err != nil {
		return nil, err
	}

	return types.NewEsdtTokenPayment(token, nonce, amount), nil
}
