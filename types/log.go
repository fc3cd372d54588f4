package types

const (
	// InternalVMErrorsIdentifier names the log appended when a nested call fails
	InternalVMErrorsIdentifier = "internalVMErrors"
)

// Log is an event written by a contract or a builtin function
type Log struct {
	Address    Address
	Identifier []byte
	Topics     [][]byte
	Data       []byte
}

func (l *Log) Copy() *Log {
	ll := &Log{
		Address:    l.Address,
		Identifier: append([]byte{}, l.Identifier...),
		Data:       append([]byte{}, l.Data...),
	}

	for _, t := range l.Topics {
		ll.Topics = append(ll.Topics, append([]byte{}, t...))
	}

	return ll
}

// NewInternalVMErrorsLog builds the log recording a failed nested call from 'from' to 'to'
func NewInternalVMErrorsLog(from, to Address, function string, message string) *Log {
	return &Log{
		Address:    from,
		Identifier: []byte(InternalVMErrorsIdentifier),
		Topics:     [][]byte{to.Bytes(), []byte(function)},
		Data:       []byte(message),
	}
}
