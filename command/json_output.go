package command

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// JSONOutput prints a single json document holding the result, the error or both
type JSONOutput struct {
	commonOutputFormatter
}

type jsonDocument struct {
	Result CommandResult `json:"result,omitempty"`
	Err    string        `json:"error,omitempty"`
}

func (jo *JSONOutput) WriteOutput() {
	if jo.commandOutput == nil && jo.errorOutput == nil {
		return
	}

	w := jo.out
	if jo.errorOutput != nil {
		w = jo.err
	}

	_, _ = fmt.Fprintln(w, jo.getCommandOutput())
}

func (jo *JSONOutput) getErrorOutput() string {
	if jo.errorOutput == nil {
		return ""
	}

	return jo.errorOutput.Error()
}

func (jo *JSONOutput) getCommandOutput() string {
	return marshalJSONToString(jsonDocument{
		Result: jo.commandOutput,
		Err:    jo.getErrorOutput(),
	})
}

func marshalJSONToString(input interface{}) string {
	bytes, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(input)
	if err != nil {
		return err.Error()
	}

	return string(bytes)
}
