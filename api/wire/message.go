// Package wire defines the inter-node message format: ASCII,
// semicolon-delimited requests and plain result-string replies.
//
//	operation;accountId;category;payload
//
// payload is operation specific: "shareID-count" for purchase and
// sell, unused ("N/A") for availability listing. A reply is the same
// human-readable result string the node entry points produce; its
// Success/Failed prefix is the only machine-checkable part.
package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Operations carried between nodes.
const (
	OpPurchase = "purchaseShare"
	OpSell     = "sellShare"
	OpList     = "listShareAvailability"
)

// None fills fields an operation does not use.
const None = "N/A"

var ErrMalformed = errors.New("wire: malformed message")

// Request is one inter-node request.
type Request struct {
	Op        string
	AccountID string
	Category  string
	Payload   string
}

// Encode renders the request in wire form.
func (r Request) Encode() []byte {
	return []byte(r.Op + ";" + r.AccountID + ";" + r.Category + ";" + r.Payload)
}

// Decode parses a wire-form request.
func Decode(data []byte) (Request, error) {
	parts := strings.SplitN(string(data), ";", 4)
	if len(parts) != 4 {
		return Request{}, fmt.Errorf("%w: %q", ErrMalformed, string(data))
	}
	req := Request{Op: parts[0], AccountID: parts[1], Category: parts[2], Payload: parts[3]}
	switch req.Op {
	case OpPurchase, OpSell, OpList:
		return req, nil
	default:
		return Request{}, fmt.Errorf("%w: unknown operation %q", ErrMalformed, req.Op)
	}
}

// SharePayload renders the purchase/sell payload field.
func SharePayload(shareID string, count int) string {
	return shareID + "-" + strconv.Itoa(count)
}

// ParseSharePayload splits a purchase/sell payload field.
func ParseSharePayload(payload string) (shareID string, count int, err error) {
	i := strings.LastIndexByte(payload, '-')
	if i <= 0 || i == len(payload)-1 {
		return "", 0, fmt.Errorf("%w: payload %q", ErrMalformed, payload)
	}
	count, err = strconv.Atoi(payload[i+1:])
	if err != nil || count < 0 {
		return "", 0, fmt.Errorf("%w: payload count %q", ErrMalformed, payload[i+1:])
	}
	return payload[:i], count, nil
}

// Succeeded classifies a reply by its result prefix. Callers decide
// every follow-up from this tag alone, never from the message body.
func Succeeded(result string) bool {
	return strings.HasPrefix(result, "Success")
}
