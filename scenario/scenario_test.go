package scenario

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/state/runtime/native"
	"github.com/0xPolygon/wasm-vm/state/runtime/native/contracts"
	"github.com/0xPolygon/wasm-vm/storage"
	"github.com/0xPolygon/wasm-vm/storage/leveldb"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()

	params := chain.DefaultParams()
	schedule := gas.DefaultSchedule()

	n := native.NewNative(hclog.NewNullLogger(), schedule, params)
	contracts.Register(n)

	return NewRunner(hclog.NewNullLogger(), params, schedule, n)
}

func TestRunner_Testdata(t *testing.T) {
	t.Parallel()

	files, err := Find("testdata")
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, file := range files {
		file := file

		t.Run(filepath.Base(file), func(t *testing.T) {
			t.Parallel()

			report := newTestRunner(t).RunFile(file)
			require.NoError(t, report.Err)
			assert.Equal(t, file, report.Path)
			assert.NotZero(t, report.Txs)
		})
	}
}

func TestRunner_RunFiles(t *testing.T) {
	t.Parallel()

	files, err := Find("testdata")
	require.NoError(t, err)

	reports, err := newTestRunner(t).RunFiles(context.Background(), 2, files...)
	require.NoError(t, err)
	require.Len(t, reports, len(files))

	ids := map[string]struct{}{}

	for i, report := range reports {
		assert.Equal(t, files[i], report.Path)
		assert.True(t, report.Passed())

		_, err := uuid.Parse(report.ID)
		require.NoError(t, err)

		ids[report.ID] = struct{}{}
	}

	assert.Len(t, ids, len(reports))
}

func TestRunner_DeterministicRoot(t *testing.T) {
	t.Parallel()

	path := filepath.Join("testdata", "crowdfunding.scen.yaml")

	first := newTestRunner(t).RunFile(path)
	require.NoError(t, first.Err)

	r := newTestRunner(t)
	r.SetStorage(func(string) (storage.KV, error) {
		return leveldb.NewLevelDBStorage(t.TempDir(), hclog.NewNullLogger())
	})

	second := r.RunFile(path)
	require.NoError(t, second.Err)

	assert.Equal(t, first.Root, second.Root)
	assert.Equal(t, first.GasUsed, second.GasUsed)
}

const failingScenario = `{
    "name": "failing",
    "steps": [
        {
            "step": "setState",
            "accounts": {
                "address:owner": {"nonce": "0"},
                "sc:adder": {"code": "native:adder", "storage": {"str:sum": "1"}}
            }
        },
        {
            "step": "scCall",
            "id": "add",
            "tx": {"from": "address:owner", "to": "sc:adder", "function": "add", "arguments": ["2"]},
            "expect": {"status": "4", "out": ["1"]}
        },
        {
            "step": "scCall",
            "id": "missing",
            "tx": {"from": "address:owner", "to": "sc:adder", "function": "sub"},
            "expect": {"status": "1", "message": "str:function not found"}
        },
        {
            "step": "checkState",
            "accounts": {
                "sc:adder": {"storage": {"str:sum": "4"}},
                "address:nobody": {}
            }
        }
    ]
}`

func TestRunner_CheckFailures(t *testing.T) {
	t.Parallel()

	s, err := Decode([]byte(failingScenario), "json")
	require.NoError(t, err)

	report := newTestRunner(t).Run(s, "")
	require.Error(t, report.Err)
	assert.Equal(t, len(s.Steps), report.Steps)

	var merr *multierror.Error
	require.True(t, errors.As(report.Err, &merr))

	// status and out of the add step, the stored sum and the missing account
	assert.Len(t, merr.Errors, 4)

	for _, err := range merr.Errors {
		assert.ErrorIs(t, err, ErrCheckFailed)
	}
}

func TestRunner_StepError(t *testing.T) {
	t.Parallel()

	s := &Scenario{
		Name: "broken",
		Steps: []*Step{
			{Step: StepSetState, Accounts: map[string]*Account{"address:a": {Balance: "0xzz"}}},
			{Step: StepCheckState},
		},
	}

	report := newTestRunner(t).Run(s, "")
	assert.ErrorIs(t, report.Err, ErrInvalidValue)
	assert.Equal(t, 1, report.Steps)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		raw    string
		format string
		err    error
	}{
		{"yaml", "name: x\nsteps:\n  - step: checkState\n", "yaml", nil},
		{"json", `{"steps": [{"step": "setState"}]}`, "json", nil},
		{"unknown format", `{}`, "toml", ErrUnknownFormat},
		{"unknown step", `{"steps": [{"step": "dance"}]}`, "json", ErrUnknownStep},
		{"tx step without tx", `{"steps": [{"step": "scCall"}]}`, "json", ErrMissingTx},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode([]byte(c.raw), c.format)
			if c.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.err)
			}
		})
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))

	for _, name := range []string{"b.json", "a.yaml", "nested/c.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0600))
	}

	files, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "nested", "c.yml"),
	}, files)

	_, err = Find(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
