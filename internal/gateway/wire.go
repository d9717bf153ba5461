// Package gateway exposes a running BacktestEngine to an out-of-process
// strategy over TCP: submit/cancel requests in, OrderUpdate/Fill reports
// streamed back out.
package gateway

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"

	"backtestcore/internal/model"
)

var (
	ErrImproperConversion = errors.New("gateway: improper task type conversion")
	ErrInvalidMessageType = errors.New("gateway: invalid message type")
)

// MessageType tags the variant of a framed message.
type MessageType uint16

const (
	MsgSubmitOrder MessageType = iota
	MsgCancelOrder
	MsgOrderAck
	MsgOrderUpdate
	MsgFill
	MsgError
)

// frameHeaderLen is the 2-byte type tag plus 4-byte body length.
const frameHeaderLen = 6

// SubmitOrderRequest is the wire payload for MsgSubmitOrder.
type SubmitOrderRequest struct {
	AssetId  model.AssetId
	Side     model.Side
	Price    model.Price
	Quantity model.Quantity
	TIF      model.TimeInForce
	Type     model.OrderType
}

// CancelOrderRequest is the wire payload for MsgCancelOrder.
type CancelOrderRequest struct {
	AssetId model.AssetId
	OrderId model.OrderId
}

// OrderAck is returned synchronously for a submitted order.
type OrderAck struct {
	OrderId model.OrderId
}

// ErrorReport is the wire payload for MsgError.
type ErrorReport struct {
	Message string
}

// WriteFrame is the exported form of writeFrame, for use by a remote
// client outside this package (cmd/gatewayctl) that speaks this wire
// format.
func WriteFrame(w io.Writer, msgType MessageType, payload any) error {
	return writeFrame(w, msgType, payload)
}

// ReadFrame is the exported form of readFrame.
func ReadFrame(r io.Reader) (MessageType, []byte, error) {
	return readFrame(r)
}

// writeFrame marshals payload as JSON and writes it behind a fixed
// binary header (type + length), mirroring the teacher's type-tagged
// framing convention while avoiding hand-packed field offsets for the
// engine's richer report payloads.
func writeFrame(w io.Writer, msgType MessageType, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	header := make([]byte, frameHeaderLen)
	binary.BigEndian.PutUint16(header[0:2], uint16(msgType))
	binary.BigEndian.PutUint32(header[2:6], uint32(len(body)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// readFrame blocks until one full frame has arrived on r.
func readFrame(r io.Reader) (MessageType, []byte, error) {
	header := make([]byte, frameHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}
	msgType := MessageType(binary.BigEndian.Uint16(header[0:2]))
	length := binary.BigEndian.Uint32(header[2:6])
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return msgType, body, nil
}
