package scenario

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/0xPolygon/wasm-vm/helper/hex"
	"github.com/0xPolygon/wasm-vm/helper/keccak"
	"github.com/0xPolygon/wasm-vm/state/runtime/native"
	"github.com/0xPolygon/wasm-vm/types"
)

// Any matches every value in a check
const Any = "*"

var ErrInvalidValue = errors.New("invalid value")

// interpreter turns the value expressions of a scenario into bytes
type interpreter struct {
	dir     string
	aliases map[string]types.Address
}

func newInterpreter(dir string) *interpreter {
	return &interpreter{
		dir:     dir,
		aliases: map[string]types.Address{},
	}
}

func invalid(v string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidValue, v, reason)
}

// bytes evaluates v. Expressions joined by '|' are concatenated.
func (in *interpreter) bytes(v string) ([]byte, error) {
	if strings.Contains(v, "|") {
		var out []byte

		for _, part := range strings.Split(v, "|") {
			b, err := in.bytes(part)
			if err != nil {
				return nil, err
			}

			out = append(out, b...)
		}

		return out, nil
	}

	switch {
	case v == "":
		return []byte{}, nil

	case v == "true":
		return []byte{1}, nil

	case v == "false":
		return []byte{}, nil

	case strings.HasPrefix(v, "0x"):
		b, err := hex.DecodeHex(v)
		if err != nil {
			return nil, invalid(v, err.Error())
		}

		return b, nil

	case strings.HasPrefix(v, "str:"):
		return []byte(v[len("str:"):]), nil

	case strings.HasPrefix(v, "''"), strings.HasPrefix(v, "``"):
		return []byte(v[2:]), nil

	case strings.HasPrefix(v, "address:"), strings.HasPrefix(v, "sc:"):
		addr, err := in.address(v)
		if err != nil {
			return nil, err
		}

		return addr.Bytes(), nil

	case strings.HasPrefix(v, "native:"):
		return native.Code(v[len("native:"):]), nil

	case strings.HasPrefix(v, "file:"):
		path := v[len("file:"):]
		if !filepath.IsAbs(path) {
			path = filepath.Join(in.dir, path)
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return nil, invalid(v, err.Error())
		}

		return b, nil

	case strings.HasPrefix(v, "keccak256:"):
		b, err := in.bytes(v[len("keccak256:"):])
		if err != nil {
			return nil, err
		}

		return keccak.Keccak256(nil, b), nil

	case strings.HasPrefix(v, "nested:"):
		b, err := in.bytes(v[len("nested:"):])
		if err != nil {
			return nil, err
		}

		return nested(b), nil

	case strings.HasPrefix(v, "biguint:"):
		n, err := parseNumber(v[len("biguint:"):])
		if err != nil {
			return nil, err
		}

		return nested(n.Bytes()), nil
	}

	for prefix, size := range fixedWidth {
		if strings.HasPrefix(v, prefix) {
			return in.fixed(v, prefix, size)
		}
	}

	n, err := parseNumber(v)
	if err != nil {
		return nil, err
	}

	return n.Bytes(), nil
}

var fixedWidth = map[string]int{
	"u64:": 8,
	"u32:": 4,
	"u16:": 2,
	"u8:":  1,
}

func (in *interpreter) fixed(v, prefix string, size int) ([]byte, error) {
	n, err := strconv.ParseUint(strings.ReplaceAll(v[len(prefix):], ",", ""), 10, size*8)
	if err != nil {
		return nil, invalid(v, err.Error())
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)

	return buf[8-size:], nil
}

func nested(b []byte) []byte {
	out := make([]byte, 4, 4+len(b))
	binary.BigEndian.PutUint32(out, uint32(len(b)))

	return append(out, b...)
}

// parseNumber reads a non negative decimal number, ',' and '_' are separators
func parseNumber(v string) (*big.Int, error) {
	clean := strings.NewReplacer(",", "", "_", "").Replace(v)

	n, ok := new(big.Int).SetString(clean, 10)
	if !ok || n.Sign() < 0 {
		return nil, invalid(v, "not an unsigned number")
	}

	return n, nil
}

// address evaluates v as an account address. User addresses are the name padded
// with '_'. Contract addresses carry the smart contract prefix unless the name
// was bound to a deployed address.
func (in *interpreter) address(v string) (types.Address, error) {
	var addr types.Address

	switch {
	case strings.HasPrefix(v, "address:"):
		name := v[len("address:"):]
		pad(addr[:], name)

	case strings.HasPrefix(v, "sc:"):
		if bound, ok := in.aliases[v]; ok {
			return bound, nil
		}

		name := v[len("sc:"):]
		prefix := types.SCAddressNumLeadingZeros + len(types.WASMVMType)

		copy(addr[types.SCAddressNumLeadingZeros:], types.WASMVMType)
		pad(addr[prefix:], name)

	default:
		b, err := in.bytes(v)
		if err != nil {
			return addr, err
		}

		if len(b) != types.AddressLength {
			return addr, invalid(v, "not an address")
		}

		copy(addr[:], b)
	}

	return addr, nil
}

func pad(dst []byte, name string) {
	n := copy(dst, name)
	for i := n; i < len(dst); i++ {
		dst[i] = '_'
	}
}

func (in *interpreter) bigInt(v string) (*big.Int, error) {
	if v == "" {
		return new(big.Int), nil
	}

	if n, err := parseNumber(v); err == nil {
		return n, nil
	}

	b, err := in.bytes(v)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetBytes(b), nil
}

func (in *interpreter) uint64(v string) (uint64, error) {
	n, err := in.bigInt(v)
	if err != nil {
		return 0, err
	}

	if !n.IsUint64() {
		return 0, invalid(v, "does not fit 64 bits")
	}

	return n.Uint64(), nil
}

// bind makes the contract name resolve to addr
func (in *interpreter) bind(name string, addr types.Address) {
	in.aliases[name] = addr
}
