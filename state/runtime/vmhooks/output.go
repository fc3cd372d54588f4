package vmhooks

import (
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/types"
)

const (
	legacyTopicLen = 32
	maxTopics      = 1 << 10
)

// finish appends data to the output of the frame. The base cost of the hook is
// charged by the caller.
func (h *VMHooks) finish(data []byte) error {
	if err := h.useGas(h.schedule.BaseOperationCost.PersistPerByte * uint64(len(data))); err != nil {
		return err
	}

	h.appendOutput(data)

	return nil
}

func (h *VMHooks) Finish(pointer int32, length int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Finish); err != nil {
		return err
	}

	data, err := h.memLoad(pointer, length)
	if err != nil {
		return err
	}

	return h.finish(data)
}

func (h *VMHooks) MBufferFinish(sourceHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferFinish); err != nil {
		return 0, err
	}

	data, err := h.arena.Buffer(sourceHandle)
	if err != nil {
		return 0, err
	}

	return resultOk, h.finish(data)
}

func (h *VMHooks) SmallIntFinishUnsigned(value int64) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64Finish); err != nil {
		return err
	}

	return h.finish(types.TopEncodeUint64(uint64(value)))
}

func (h *VMHooks) SmallIntFinishSigned(value int64) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64Finish); err != nil {
		return err
	}

	return h.finish(types.TopEncodeInt64(value))
}

func (h *VMHooks) Int64finish(value int64) error {
	return h.SmallIntFinishSigned(value)
}

// writeLog records an event. The first topic becomes the identifier. The base cost
// of the hook is charged by the caller.
func (h *VMHooks) writeLog(topics [][]byte, data []byte) error {
	size := len(data)
	for _, t := range topics {
		size += len(t)
	}

	if err := h.useGas(h.schedule.BaseOperationCost.PersistPerByte * uint64(size)); err != nil {
		return err
	}

	log := &types.Log{
		Address: h.self(),
		Data:    data,
	}

	if len(topics) > 0 {
		log.Identifier = topics[0]
		log.Topics = topics[1:]
	}

	h.logs = append(h.logs, log)

	return nil
}

// WriteLog reads numTopics topics of 32 bytes each
func (h *VMHooks) WriteLog(dataPointer int32, dataLength int32, topicPtr int32, numTopics int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Log); err != nil {
		return err
	}

	if numTopics < 0 || numTopics > maxTopics {
		return ErrInvalidNumberOfTopics
	}

	data, err := h.memLoad(dataPointer, dataLength)
	if err != nil {
		return err
	}

	raw, err := h.memLoad(topicPtr, numTopics*legacyTopicLen)
	if err != nil {
		return err
	}

	topics := make([][]byte, numTopics)
	for i := range topics {
		topics[i] = raw[i*legacyTopicLen : (i+1)*legacyTopicLen]
	}

	return h.writeLog(topics, data)
}

func (h *VMHooks) WriteEventLog(numTopics int32, topicLengthsOffset int32, topicOffset int32, dataOffset int32, dataLength int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Log); err != nil {
		return err
	}

	if numTopics < 0 || numTopics > maxTopics {
		return ErrInvalidNumberOfTopics
	}

	topics, err := h.memLoadMultiple(topicOffset, topicLengthsOffset, numTopics)
	if err != nil {
		return err
	}

	data, err := h.memLoad(dataOffset, dataLength)
	if err != nil {
		return err
	}

	return h.writeLog(topics, data)
}

func (h *VMHooks) ManagedWriteLog(topicsHandle int32, dataHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Log); err != nil {
		return err
	}

	topics, err := h.arena.ReadBufferVec(topicsHandle)
	if err != nil {
		return err
	}

	data, err := h.arena.Buffer(dataHandle)
	if err != nil {
		return err
	}

	return h.writeLog(topics, data)
}

// SignalError ends the frame with a user error carrying the message
func (h *VMHooks) SignalError(messageOffset int32, messageLength int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.SignalError); err != nil {
		return err
	}

	msg, err := h.memLoad(messageOffset, messageLength)
	if err != nil {
		return err
	}

	if err := h.useGas(h.schedule.BaseOperationCost.PersistPerByte * uint64(len(msg))); err != nil {
		return err
	}

	return runtime.NewUserError(string(msg))
}

func (h *VMHooks) ManagedSignalError(errHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.SignalError); err != nil {
		return err
	}

	msg, err := h.arena.Buffer(errHandle)
	if err != nil {
		return err
	}

	if err := h.useGas(h.schedule.BaseOperationCost.PersistPerByte * uint64(len(msg))); err != nil {
		return err
	}

	return runtime.NewUserError(string(msg))
}
