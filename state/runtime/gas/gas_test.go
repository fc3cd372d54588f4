package gas

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/0xPolygon/wasm-vm/state/runtime"
)

func TestMeter(t *testing.T) {
	t.Parallel()

	m := NewMeter(100)
	require.NoError(t, m.UseGas(40))
	assert.Equal(t, uint64(60), m.GasLeft())
	assert.Equal(t, uint64(40), m.GasUsed())

	require.NoError(t, m.Lock(10))
	assert.Equal(t, uint64(10), m.Locked())
	assert.Equal(t, uint64(50), m.GasLeft())

	m.Refund(1000)
	assert.Equal(t, uint64(100), m.GasLeft())

	m.SetGasLeft(200)
	assert.Equal(t, uint64(100), m.GasLeft())

	m.SetGasLeft(5)
	assert.ErrorIs(t, m.UseGas(6), runtime.ErrOutOfGas)
	assert.Equal(t, uint64(0), m.GasLeft())
}

func TestMeter_ChildGasLimit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		left      uint64
		requested uint64
		reserve   uint64
		expected  uint64
		err       error
	}{
		{"all available", 1000, 0, 100, 900, nil},
		{"capped", 1000, 5000, 100, 900, nil},
		{"exact", 1000, 300, 100, 300, nil},
		{"nothing left", 100, 10, 100, 0, runtime.ErrOutOfGas},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			m := NewMeter(c.left)
			limit, err := m.ChildGasLimit(c.requested, c.reserve)

			if c.err != nil {
				assert.ErrorIs(t, err, c.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, c.expected, limit)
		})
	}
}

func TestSchedule_EncodeDecode(t *testing.T) {
	t.Parallel()

	raw, err := DefaultSchedule().Encode()
	require.NoError(t, err)

	s, err := DecodeSchedule(raw)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule(), s)
}

func TestSchedule_DecodeRejectsUnknownAndMissing(t *testing.T) {
	t.Parallel()

	raw, err := DefaultSchedule().Encode()
	require.NoError(t, err)

	group, ok := raw["BigIntAPICost"].(map[string]interface{})
	require.True(t, ok)

	delete(group, "BigIntAdd")
	group["BigIntFrobnicate"] = uint64(1)

	_, err = DecodeSchedule(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BigIntFrobnicate")
	assert.Contains(t, err.Error(), "BigIntAdd")
}

func writeSchedule(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))

	return path
}

func encodeHCL(t *testing.T, raw map[string]interface{}) []byte {
	t.Helper()

	groups := make([]string, 0, len(raw))
	for g := range raw {
		groups = append(groups, g)
	}

	sort.Strings(groups)

	var sb strings.Builder

	for _, g := range groups {
		costs, ok := raw[g].(map[string]interface{})
		require.True(t, ok)

		fmt.Fprintf(&sb, "%s {\n", g)

		for name, cost := range costs {
			fmt.Fprintf(&sb, "  %s = %d\n", name, cost)
		}

		sb.WriteString("}\n")
	}

	return []byte(sb.String())
}

func TestLoadSchedule(t *testing.T) {
	t.Parallel()

	raw, err := DefaultSchedule().Encode()
	require.NoError(t, err)

	jsonData, err := jsoniter.Marshal(raw)
	require.NoError(t, err)

	yamlData, err := yaml.Marshal(raw)
	require.NoError(t, err)

	files := []struct {
		name string
		data []byte
	}{
		{"schedule.json", jsonData},
		{"schedule.yaml", yamlData},
		{"schedule.hcl", encodeHCL(t, raw)},
	}

	for _, f := range files {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			s, err := LoadSchedule(writeSchedule(t, f.name, f.data))
			require.NoError(t, err)
			assert.Equal(t, DefaultSchedule(), s)
		})
	}

	_, err = LoadSchedule(writeSchedule(t, "schedule.toml", []byte{}))
	assert.ErrorIs(t, err, ErrUnknownScheduleFormat)
}
