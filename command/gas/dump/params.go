package dump

import (
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
)

const (
	formatFlag = "format"
	outputFlag = "output"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	params = &dumpParams{}
)

var errUnknownFormat = errors.New("unknown schedule format")

type dumpParams struct {
	format string
	output string

	schedule map[string]interface{}
}

func (p *dumpParams) validateFlags() error {
	if p.format != formatJSON && p.format != formatYAML {
		return fmt.Errorf("%w: %q", errUnknownFormat, p.format)
	}

	return nil
}

func (p *dumpParams) initSchedule() error {
	raw, err := gas.DefaultSchedule().Encode()
	if err != nil {
		return err
	}

	p.schedule = raw

	return nil
}

func (p *dumpParams) encode() ([]byte, error) {
	if p.format == formatYAML {
		return yaml.Marshal(p.schedule)
	}

	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(p.schedule, "", "    ")
}

func (p *dumpParams) writeSchedule() error {
	data, err := p.encode()
	if err != nil {
		return err
	}

	return os.WriteFile(p.output, data, 0600)
}

func (p *dumpParams) getResult() (*DumpResult, error) {
	res := &DumpResult{Output: p.output}

	if p.output != "" {
		return res, nil
	}

	data, err := p.encode()
	if err != nil {
		return nil, err
	}

	res.Schedule = string(data)

	return res, nil
}
