package protocol

import (
	"fmt"
	"strings"
)

// MessageType is the stable wire identifier of an IAC message.
type MessageType int

const (
	MetadataRequest MessageType = iota + 1
	MetadataResponse
	AccountShareRequest
	AccountShareResponse
	TransactionSignRequest
	TransactionSignResponse
	MessageSignRequest
	MessageSignResponse
)

var messageTypeNames = map[MessageType]string{
	MetadataRequest:         "metadata-request",
	MetadataResponse:        "metadata-response",
	AccountShareRequest:     "account-share-request",
	AccountShareResponse:    "account-share-response",
	TransactionSignRequest:  "transaction-sign-request",
	TransactionSignResponse: "transaction-sign-response",
	MessageSignRequest:      "message-sign-request",
	MessageSignResponse:     "message-sign-response",
}

// MessageTypes lists every known type in wire order.
func MessageTypes() []MessageType {
	return []MessageType{
		MetadataRequest,
		MetadataResponse,
		AccountShareRequest,
		AccountShareResponse,
		TransactionSignRequest,
		TransactionSignResponse,
		MessageSignRequest,
		MessageSignResponse,
	}
}

func (t MessageType) Valid() bool {
	_, ok := messageTypeNames[t]
	return ok
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("message-type(%d)", int(t))
}

// ParseMessageType accepts the kebab-case name used by schema documents.
func ParseMessageType(name string) (MessageType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range messageTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("protocol: unknown message type %q", name)
}
