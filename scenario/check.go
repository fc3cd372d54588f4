package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/0xPolygon/wasm-vm/helper/hex"
	"github.com/0xPolygon/wasm-vm/state"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/types"
)

var ErrCheckFailed = errors.New("check failed")

func mismatch(field string, want, got interface{}) error {
	return fmt.Errorf("%w: %s: want %v, got %v", ErrCheckFailed, field, want, got)
}

func skip(v string) bool {
	return v == "" || v == Any
}

func hexOf(b []byte) string {
	return hex.EncodeToHex(b)
}

// checker collects the failed comparisons of one step
type checker struct {
	in       *interpreter
	failures []error
}

func (c *checker) fail(err error) {
	c.failures = append(c.failures, err)
}

func (c *checker) bytes(field, want string, got []byte) error {
	if want == Any {
		return nil
	}

	b, err := c.in.bytes(want)
	if err != nil {
		return err
	}

	if !bytes.Equal(b, got) {
		c.fail(mismatch(field, hexOf(b), hexOf(got)))
	}

	return nil
}

func (c *checker) bigInt(field, want string, got *big.Int) error {
	if skip(want) {
		return nil
	}

	n, err := c.in.bigInt(want)
	if err != nil {
		return err
	}

	if n.Cmp(got) != 0 {
		c.fail(mismatch(field, n, got))
	}

	return nil
}

func (s *session) checkResult(exp *Expect, result *runtime.ExecutionResult) ([]error, error) {
	c := &checker{in: s.in}

	if !skip(exp.Status) {
		status, err := s.in.uint64(exp.Status)
		if err != nil {
			return nil, err
		}

		if got := uint64(result.ReturnCode()); got != status {
			c.fail(mismatch("status", status, fmt.Sprintf("%d (%s)", got, result.ReturnMessage())))
		}
	}

	if !skip(exp.Message) {
		msg, err := s.in.bytes(exp.Message)
		if err != nil {
			return nil, err
		}

		if got := result.ReturnMessage(); got != string(msg) {
			c.fail(mismatch("message", string(msg), got))
		}
	}

	if exp.Out != nil {
		if len(exp.Out) != len(result.ReturnData) {
			c.fail(mismatch("out length", len(exp.Out), len(result.ReturnData)))
		} else {
			for i, want := range exp.Out {
				if err := c.bytes(fmt.Sprintf("out[%d]", i), want, result.ReturnData[i]); err != nil {
					return nil, err
				}
			}
		}
	}

	if exp.Logs != nil {
		if err := c.logs(exp.Logs, result.Logs); err != nil {
			return nil, err
		}
	}

	if !skip(exp.GasUsed) {
		if err := c.bigInt("gas used", exp.GasUsed, new(big.Int).SetUint64(result.GasUsed)); err != nil {
			return nil, err
		}
	}

	return c.failures, nil
}

func (c *checker) logs(want []*Log, got []*types.Log) error {
	if len(want) != len(got) {
		c.fail(mismatch("logs length", len(want), len(got)))

		return nil
	}

	for i, w := range want {
		g := got[i]
		field := fmt.Sprintf("logs[%d]", i)

		if !skip(w.Address) {
			addr, err := c.in.address(w.Address)
			if err != nil {
				return err
			}

			if addr != g.Address {
				c.fail(mismatch(field+".address", addr, g.Address))
			}
		}

		if !skip(w.Endpoint) {
			if err := c.bytes(field+".endpoint", w.Endpoint, g.Identifier); err != nil {
				return err
			}
		}

		if w.Topics != nil {
			if len(w.Topics) != len(g.Topics) {
				c.fail(mismatch(field+".topics length", len(w.Topics), len(g.Topics)))
			} else {
				for j, topic := range w.Topics {
					if err := c.bytes(fmt.Sprintf("%s.topics[%d]", field, j), topic, g.Topics[j]); err != nil {
						return err
					}
				}
			}
		}

		if !skip(w.Data) {
			if err := c.bytes(field+".data", w.Data, g.Data); err != nil {
				return err
			}
		}
	}

	return nil
}

// checkState compares the committed state with the expected accounts. Only the
// listed accounts, storage keys and tokens are compared.
func (s *session) checkState(accounts map[string]*Account) ([]error, error) {
	c := &checker{in: s.in}
	snap := s.executor.State().NewSnapshot()

	names := make([]string, 0, len(accounts))
	for name := range accounts {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		want := accounts[name]

		addr, err := s.in.address(name)
		if err != nil {
			return nil, err
		}

		got, err := snap.GetAccount(addr)
		if err != nil {
			return nil, err
		}

		if got == nil {
			c.fail(fmt.Errorf("%w: account %s does not exist", ErrCheckFailed, name))

			continue
		}

		if err := c.account(name, want, got); err != nil {
			return nil, err
		}
	}

	return c.failures, nil
}

func (c *checker) account(name string, want *Account, got *state.Account) error {
	if err := c.bigInt(name+".nonce", want.Nonce, new(big.Int).SetUint64(got.Nonce)); err != nil {
		return err
	}

	if err := c.bigInt(name+".balance", want.Balance, got.Balance); err != nil {
		return err
	}

	if err := c.bigInt(name+".developerRewards", want.DeveloperRewards, got.DeveloperReward); err != nil {
		return err
	}

	fields := []struct {
		field string
		want  string
		got   []byte
	}{
		{".username", want.Username, got.Username},
		{".code", want.Code, got.Code},
		{".codeMetadata", want.CodeMetadata, got.CodeMetadata.Bytes()},
		{".owner", want.Owner, got.Owner.Bytes()},
	}

	for _, f := range fields {
		if f.want == "" {
			continue
		}

		if err := c.bytes(name+f.field, f.want, f.got); err != nil {
			return err
		}
	}

	for k, v := range want.Storage {
		key, err := c.in.bytes(k)
		if err != nil {
			return err
		}

		if err := c.bytes(fmt.Sprintf("%s.storage[%s]", name, k), v, got.GetStorage(key)); err != nil {
			return err
		}
	}

	for token, esdt := range want.ESDT {
		if err := c.esdt(name, token, esdt, got); err != nil {
			return err
		}
	}

	return nil
}

func (c *checker) esdt(name, token string, want *ESDT, got *state.Account) error {
	tokenID, err := c.in.bytes(token)
	if err != nil {
		return err
	}

	field := fmt.Sprintf("%s.esdt[%s]", name, token)

	data, ok := got.GetEsdtData(tokenID)
	if !ok {
		data = types.NewEsdtData(tokenID)
	}

	if err := c.bigInt(field+".lastNonce", want.LastNonce, new(big.Int).SetUint64(data.LastNonce)); err != nil {
		return err
	}

	if want.Roles != nil {
		roles, err := roles(want.Roles)
		if err != nil {
			return err
		}

		if roles != data.Roles {
			c.fail(mismatch(field+".roles", roles.Names(), data.Roles.Names()))
		}
	}

	if !skip(want.Frozen) {
		if frozen := want.Frozen == "true"; frozen != data.Frozen {
			c.fail(mismatch(field+".frozen", frozen, data.Frozen))
		}
	}

	for _, w := range want.Instances {
		nonce, err := c.in.uint64(w.Nonce)
		if err != nil {
			return err
		}

		if err := c.instance(fmt.Sprintf("%s[%d]", field, nonce), w, data.Instances[nonce]); err != nil {
			return err
		}
	}

	return nil
}

func (c *checker) instance(field string, want *Instance, got *types.EsdtInstance) error {
	if got == nil {
		got = &types.EsdtInstance{Balance: new(big.Int)}
	}

	if err := c.bigInt(field+".balance", want.Balance, got.Balance); err != nil {
		return err
	}

	m := got.Metadata
	if m == nil {
		m = &types.EsdtMetadata{}
	}

	if !skip(want.Creator) {
		creator, err := c.in.address(want.Creator)
		if err != nil {
			return err
		}

		if creator != m.Creator {
			c.fail(mismatch(field+".creator", creator, m.Creator))
		}
	}

	if err := c.bigInt(field+".royalties", want.Royalties, big.NewInt(int64(m.Royalties))); err != nil {
		return err
	}

	fields := []struct {
		field string
		want  string
		got   []byte
	}{
		{".name", want.Name, m.Name},
		{".hash", want.Hash, m.Hash},
		{".attributes", want.Attributes, m.Attributes},
	}

	for _, f := range fields {
		if f.want == "" {
			continue
		}

		if err := c.bytes(field+f.field, f.want, f.got); err != nil {
			return err
		}
	}

	if want.URIs != nil {
		if len(want.URIs) != len(m.URIs) {
			c.fail(mismatch(field+".uri length", len(want.URIs), len(m.URIs)))

			return nil
		}

		for i, uri := range want.URIs {
			if err := c.bytes(fmt.Sprintf("%s.uri[%d]", field, i), uri, m.URIs[i]); err != nil {
				return err
			}
		}
	}

	return nil
}
