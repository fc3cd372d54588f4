package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Step kinds
const (
	StepSetState   = "setState"
	StepCheckState = "checkState"
	StepScDeploy   = "scDeploy"
	StepScCall     = "scCall"
	StepScQuery    = "scQuery"
	StepTransfer   = "transfer"
)

var (
	ErrUnknownStep   = errors.New("unknown step")
	ErrMissingTx     = errors.New("step has no tx")
	ErrUnknownFormat = errors.New("unknown scenario format")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Scenario is an ordered list of steps run against a fresh state
type Scenario struct {
	Name    string  `json:"name" yaml:"name"`
	Comment string  `json:"comment,omitempty" yaml:"comment,omitempty"`
	Steps   []*Step `json:"steps" yaml:"steps"`
}

type Step struct {
	Step    string `json:"step" yaml:"step"`
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// setState and checkState
	Accounts          map[string]*Account `json:"accounts,omitempty" yaml:"accounts,omitempty"`
	NewAddresses      []*NewAddress       `json:"newAddresses,omitempty" yaml:"newAddresses,omitempty"`
	CurrentBlockInfo  *BlockInfo          `json:"currentBlockInfo,omitempty" yaml:"currentBlockInfo,omitempty"`
	PreviousBlockInfo *BlockInfo          `json:"previousBlockInfo,omitempty" yaml:"previousBlockInfo,omitempty"`

	// transaction steps
	Tx     *Tx     `json:"tx,omitempty" yaml:"tx,omitempty"`
	Expect *Expect `json:"expect,omitempty" yaml:"expect,omitempty"`
}

// Name identifies the step in reports
func (s *Step) Name(i int) string {
	if s.ID != "" {
		return fmt.Sprintf("step %d (%s %s)", i, s.Step, s.ID)
	}

	return fmt.Sprintf("step %d (%s)", i, s.Step)
}

// Account is the state of an account. In checks, empty and "*" fields are not compared.
type Account struct {
	Nonce            string            `json:"nonce,omitempty" yaml:"nonce,omitempty"`
	Balance          string            `json:"balance,omitempty" yaml:"balance,omitempty"`
	Username         string            `json:"username,omitempty" yaml:"username,omitempty"`
	Owner            string            `json:"owner,omitempty" yaml:"owner,omitempty"`
	Code             string            `json:"code,omitempty" yaml:"code,omitempty"`
	CodeMetadata     string            `json:"codeMetadata,omitempty" yaml:"codeMetadata,omitempty"`
	DeveloperRewards string            `json:"developerRewards,omitempty" yaml:"developerRewards,omitempty"`
	Storage          map[string]string `json:"storage,omitempty" yaml:"storage,omitempty"`
	ESDT             map[string]*ESDT  `json:"esdt,omitempty" yaml:"esdt,omitempty"`
}

// ESDT is everything an account holds of one token
type ESDT struct {
	Instances []*Instance `json:"instances,omitempty" yaml:"instances,omitempty"`
	LastNonce string      `json:"lastNonce,omitempty" yaml:"lastNonce,omitempty"`
	Roles     []string    `json:"roles,omitempty" yaml:"roles,omitempty"`
	Frozen    string      `json:"frozen,omitempty" yaml:"frozen,omitempty"`
}

type Instance struct {
	Nonce      string   `json:"nonce,omitempty" yaml:"nonce,omitempty"`
	Balance    string   `json:"balance" yaml:"balance"`
	Creator    string   `json:"creator,omitempty" yaml:"creator,omitempty"`
	Royalties  string   `json:"royalties,omitempty" yaml:"royalties,omitempty"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Hash       string   `json:"hash,omitempty" yaml:"hash,omitempty"`
	URIs       []string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Attributes string   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// NewAddress names the contract the creator deploys at the given nonce
type NewAddress struct {
	CreatorAddress string `json:"creatorAddress" yaml:"creatorAddress"`
	CreatorNonce   string `json:"creatorNonce" yaml:"creatorNonce"`
	NewAddress     string `json:"newAddress" yaml:"newAddress"`
}

type BlockInfo struct {
	BlockNonce      string `json:"blockNonce,omitempty" yaml:"blockNonce,omitempty"`
	BlockRound      string `json:"blockRound,omitempty" yaml:"blockRound,omitempty"`
	BlockEpoch      string `json:"blockEpoch,omitempty" yaml:"blockEpoch,omitempty"`
	BlockTimestamp  string `json:"blockTimestamp,omitempty" yaml:"blockTimestamp,omitempty"`
	BlockRandomSeed string `json:"blockRandomSeed,omitempty" yaml:"blockRandomSeed,omitempty"`
}

type Tx struct {
	From         string     `json:"from" yaml:"from"`
	To           string     `json:"to,omitempty" yaml:"to,omitempty"`
	EGLDValue    string     `json:"egldValue,omitempty" yaml:"egldValue,omitempty"`
	ESDTValue    []*Payment `json:"esdtValue,omitempty" yaml:"esdtValue,omitempty"`
	Function     string     `json:"function,omitempty" yaml:"function,omitempty"`
	Arguments    []string   `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	ContractCode string     `json:"contractCode,omitempty" yaml:"contractCode,omitempty"`
	CodeMetadata string     `json:"codeMetadata,omitempty" yaml:"codeMetadata,omitempty"`
	GasLimit     string     `json:"gasLimit,omitempty" yaml:"gasLimit,omitempty"`
	GasPrice     string     `json:"gasPrice,omitempty" yaml:"gasPrice,omitempty"`
}

type Payment struct {
	TokenIdentifier string `json:"tokenIdentifier" yaml:"tokenIdentifier"`
	Nonce           string `json:"nonce,omitempty" yaml:"nonce,omitempty"`
	Value           string `json:"value" yaml:"value"`
}

// Expect is the outcome of a transaction step. A nil Out or Logs is not compared.
type Expect struct {
	Out     []string `json:"out,omitempty" yaml:"out,omitempty"`
	Status  string   `json:"status,omitempty" yaml:"status,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
	Logs    []*Log   `json:"logs,omitempty" yaml:"logs,omitempty"`
	GasUsed string   `json:"gasUsed,omitempty" yaml:"gasUsed,omitempty"`
}

type Log struct {
	Address  string   `json:"address" yaml:"address"`
	Endpoint string   `json:"endpoint" yaml:"endpoint"`
	Topics   []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	Data     string   `json:"data,omitempty" yaml:"data,omitempty"`
}

// Decode parses a scenario in the given format, "json" or "yaml"
func Decode(raw []byte, format string) (*Scenario, error) {
	s := &Scenario{}

	var err error

	switch format {
	case "json":
		err = json.Unmarshal(raw, s)
	case "yaml":
		err = yaml.Unmarshal(raw, s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func formatOf(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", true
	case ".yaml", ".yml":
		return "yaml", true
	default:
		return "", false
	}
}

// LoadFile reads a scenario, the format follows the file extension
func LoadFile(path string) (*Scenario, error) {
	format, ok := formatOf(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s, err := Decode(raw, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return s, nil
}

// Find expands directories into the scenario files they contain, sorted
func Find(paths ...string) ([]string, error) {
	files := []string{}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, path)

			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if _, ok := formatOf(p); ok && !d.IsDir() {
				files = append(files, p)
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)

	return files, nil
}

func (s *Scenario) validate() error {
	for i, step := range s.Steps {
		switch step.Step {
		case StepSetState, StepCheckState:
		case StepScDeploy, StepScCall, StepScQuery, StepTransfer:
			if step.Tx == nil {
				return fmt.Errorf("%s: %w", step.Name(i), ErrMissingTx)
			}
		default:
			return fmt.Errorf("%s: %w", step.Name(i), ErrUnknownStep)
		}
	}

	return nil
}
