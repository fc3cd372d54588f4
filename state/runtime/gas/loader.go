package gas

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var ErrUnknownScheduleFormat = errors.New("unknown gas schedule format")

// LoadSchedule reads a gas schedule file. The format is picked from the file suffix
// (.json, .yaml, .yml or .hcl) and every cost of the schedule must be present.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := map[string]interface{}{}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".hcl":
		err = hcl.Decode(&raw, string(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheduleFormat, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse gas schedule %s: %w", path, err)
	}

	return DecodeSchedule(flattenBlocks(raw))
}

// DecodeSchedule converts a group -> name -> cost table into a Schedule.
// Unknown groups or names and missing costs are all reported.
func DecodeSchedule(raw map[string]interface{}) (*Schedule, error) {
	s := &Schedule{}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      s,
		ErrorUnused: true,
		ErrorUnset:  true,
	})
	if err != nil {
		return nil, err
	}

	if err := dec.Decode(raw); err != nil {
		var msErr *mapstructure.Error
		if !errors.As(err, &msErr) {
			return nil, err
		}

		var result *multierror.Error
		for _, e := range msErr.Errors {
			result = multierror.Append(result, errors.New(e))
		}

		return nil, result.ErrorOrNil()
	}

	return s, nil
}

// Encode returns the schedule as a group -> name -> cost table
func (s *Schedule) Encode() (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := mapstructure.Decode(s, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// hcl decodes every block as a list of objects; merge them back into maps
func flattenBlocks(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))

	for k, v := range raw {
		list, ok := v.([]map[string]interface{})
		if !ok {
			out[k] = v

			continue
		}

		merged := map[string]interface{}{}

		for _, obj := range list {
			for name, cost := range obj {
				merged[name] = cost
			}
		}

		out[k] = merged
	}

	return out
}
