package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Row Data Types
// --------------------------------------------------------------------------

// Cell is a single column value of a row: family, qualifier and value.
// A zero Timestamp means the server assigns the write time.
type Cell struct {
	Family    string `json:"family"`
	Qualifier string `json:"qualifier"`
	Value     []byte `json:"value,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Column addresses a column (family + qualifier) without a value.
// Used for projections on Get and Scan requests.
type Column struct {
	Family    string `json:"family"`
	Qualifier string `json:"qualifier"`
}

// RowResult is one row returned by a Get, MultiGet or Scan response.
// A result with no cells marks a missing row; the row key is still set so
// responses stay aligned with the request.
type RowResult struct {
	Row   []byte `json:"row"`
	Cells []Cell `json:"cells,omitempty"`
}

// RegionDesc describes one row-key range [Start, Stop) and the server that
// owns it. A nil Start means the beginning of the table, a nil Stop means
// the end of the table.
type RegionDesc struct {
	Start  []byte `json:"start,omitempty"`
	Stop   []byte `json:"stop,omitempty"`
	Server string `json:"server"`
}

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Table   string   `json:"table,omitempty"`    // Used for: all table-scoped requests
	Row     []byte   `json:"row,omitempty"`      // Used for: Mutate, Get requests
	RowKeys [][]byte `json:"row_keys,omitempty"` // Used for: MultiGet requests
	Cells   []Cell   `json:"cells,omitempty"`    // Used for: Mutate requests
	Columns []Column `json:"columns,omitempty"`  // Used for: Get, MultiGet, Scan projections

	// Scan fields
	StartRow  []byte `json:"start_row,omitempty"`  // Scan range start (inclusive)
	StopRow   []byte `json:"stop_row,omitempty"`   // Scan range stop (exclusive)
	BatchSize uint32 `json:"batch_size,omitempty"` // Scan batch size hint
	ScannerID uint64 `json:"scanner_id,omitempty"` // Scan lease ID (0 = open a new scanner)

	// Response only fields
	Rows    []RowResult  `json:"rows,omitempty"`    // Used for: Get, MultiGet, Scan responses
	More    bool         `json:"more,omitempty"`    // Used for: Scan responses (lease still open)
	Regions []RegionDesc `json:"regions,omitempty"` // Used for: Locate responses
	Err     string       `json:"err,omitempty"`     // Empty if no error, otherwise the error message
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewMutateRequest creates a new Mutate (row write) request
func NewMutateRequest(table string, row []byte, cells []Cell) *Message {
	return &Message{
		MsgType: MsgTMutate,
		Table:   table,
		Row:     row,
		Cells:   cells,
	}
}

// NewMutateResponse creates a new Mutate response
func NewMutateResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTMutate,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetRequest creates a new single-row Get request
func NewGetRequest(table string, row []byte, columns []Column) *Message {
	return &Message{
		MsgType: MsgTGet,
		Table:   table,
		Row:     row,
		Columns: columns,
	}
}

// NewGetResponse creates a new Get response. A missing row keeps its key
// but carries no cells.
func NewGetResponse(row RowResult, err error) *Message {
	msg := &Message{
		MsgType: MsgTGet,
		Rows:    []RowResult{row},
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewMultiGetRequest creates a new MultiGet request for several rows owned
// by the same server
func NewMultiGetRequest(table string, rowKeys [][]byte, columns []Column) *Message {
	return &Message{
		MsgType: MsgTMultiGet,
		Table:   table,
		RowKeys: rowKeys,
		Columns: columns,
	}
}

// NewMultiGetResponse creates a new MultiGet response. The rows slice must
// be aligned with the request's row keys; missing rows keep their key but
// carry no cells.
func NewMultiGetResponse(rows []RowResult, err error) *Message {
	msg := &Message{
		MsgType: MsgTMultiGet,
		Rows:    rows,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewScanRequest creates a new Scan batch request. A zero scannerID opens a
// new server-side scanner for [startRow, stopRow); a non-zero scannerID
// continues an existing lease.
func NewScanRequest(table string, startRow, stopRow []byte, columns []Column, batchSize uint32, scannerID uint64) *Message {
	return &Message{
		MsgType:   MsgTScan,
		Table:     table,
		StartRow:  startRow,
		StopRow:   stopRow,
		Columns:   columns,
		BatchSize: batchSize,
		ScannerID: scannerID,
	}
}

// NewScanResponse creates a new Scan batch response. more reports whether
// the server-side lease is still open.
func NewScanResponse(scannerID uint64, rows []RowResult, more bool, err error) *Message {
	msg := &Message{
		MsgType:   MsgTScan,
		ScannerID: scannerID,
		Rows:      rows,
		More:      more,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewScanCloseRequest creates a new ScanClose request releasing a lease
func NewScanCloseRequest(table string, scannerID uint64) *Message {
	return &Message{
		MsgType:   MsgTScanClose,
		Table:     table,
		ScannerID: scannerID,
	}
}

// NewScanCloseResponse creates a new ScanClose response
func NewScanCloseResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTScanClose,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewLocateRequest creates a new Locate request for the region list of a table
func NewLocateRequest(table string) *Message {
	return &Message{
		MsgType: MsgTLocate,
		Table:   table,
	}
}

// NewLocateResponse creates a new Locate response
func NewLocateResponse(regions []RegionDesc, err error) *Message {
	msg := &Message{
		MsgType: MsgTLocate,
		Regions: regions,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTMutate:
		return "mutate"
	case MsgTGet:
		return "get"
	case MsgTMultiGet:
		return "multiGet"
	case MsgTScan:
		return "scan"
	case MsgTScanClose:
		return "scanClose"
	case MsgTLocate:
		return "locate"
	case MsgTError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "mutate":
		*t = MsgTMutate
	case "get":
		*t = MsgTGet
	case "multiGet":
		*t = MsgTMultiGet
	case "scan":
		*t = MsgTScan
	case "scanClose":
		*t = MsgTScanClose
	case "locate":
		*t = MsgTLocate
	case "error":
		*t = MsgTError
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTError               // Indicates an error occurred

	// Table operations

	MsgTMutate    // Write the cells of one row
	MsgTGet       // Read one row
	MsgTMultiGet  // Read several rows owned by one server
	MsgTScan      // Fetch the next batch of a range scan
	MsgTScanClose // Release a server-side scan lease

	// Cluster topology operations

	MsgTLocate // Resolve the region list of a table
)
