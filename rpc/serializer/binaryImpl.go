package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/kvgrid/kvgrid/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() ISerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements ISerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasTable     uint16 = 1 << 0
	hasRow       uint16 = 1 << 1
	hasRowKeys   uint16 = 1 << 2
	hasCells     uint16 = 1 << 3
	hasColumns   uint16 = 1 << 4
	hasStartRow  uint16 = 1 << 5
	hasStopRow   uint16 = 1 << 6
	hasBatchSize uint16 = 1 << 7
	hasScannerID uint16 = 1 << 8
	hasRows      uint16 = 1 << 9
	hasMore      uint16 = 1 << 10
	hasRegions   uint16 = 1 << 11
	hasErr       uint16 = 1 << 12
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Header: MsgType (1 byte) + flags (2 bytes), filled in at the end
	w := &binWriter{buf: make([]byte, 3, 64)}
	w.buf[0] = byte(msg.MsgType)

	var flags uint16

	if msg.Table != "" {
		flags |= hasTable
		w.writeBytes([]byte(msg.Table))
	}
	if msg.Row != nil {
		flags |= hasRow
		w.writeBytes(msg.Row)
	}
	if msg.RowKeys != nil {
		flags |= hasRowKeys
		w.writeUint32(uint32(len(msg.RowKeys)))
		for _, k := range msg.RowKeys {
			w.writeBytes(k)
		}
	}
	if msg.Cells != nil {
		flags |= hasCells
		w.writeCells(msg.Cells)
	}
	if msg.Columns != nil {
		flags |= hasColumns
		w.writeUint32(uint32(len(msg.Columns)))
		for _, c := range msg.Columns {
			w.writeBytes([]byte(c.Family))
			w.writeBytes([]byte(c.Qualifier))
		}
	}
	if msg.StartRow != nil {
		flags |= hasStartRow
		w.writeBytes(msg.StartRow)
	}
	if msg.StopRow != nil {
		flags |= hasStopRow
		w.writeBytes(msg.StopRow)
	}
	if msg.BatchSize > 0 {
		flags |= hasBatchSize
		w.writeUint32(msg.BatchSize)
	}
	if msg.ScannerID > 0 {
		flags |= hasScannerID
		w.writeUint64(msg.ScannerID)
	}
	if msg.Rows != nil {
		flags |= hasRows
		w.writeUint32(uint32(len(msg.Rows)))
		for _, r := range msg.Rows {
			w.writeBytes(r.Row)
			w.writeCells(r.Cells)
		}
	}
	if msg.More {
		flags |= hasMore
	}
	if msg.Regions != nil {
		flags |= hasRegions
		w.writeUint32(uint32(len(msg.Regions)))
		for _, r := range msg.Regions {
			w.writeBytes(r.Start)
			w.writeBytes(r.Stop)
			w.writeBytes([]byte(r.Server))
		}
	}
	if msg.Err != "" {
		flags |= hasErr
		w.writeBytes([]byte(msg.Err))
	}

	binary.BigEndian.PutUint16(w.buf[1:3], flags)
	return w.buf, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < 3 {
		return fmt.Errorf("data too short for header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := binary.BigEndian.Uint16(data[1:3])
	r := &binReader{data: data, pos: 3}

	// Fields are decoded in the same fixed order they are encoded in.
	// Absent fields are reset to their zero value so the message can be reused.

	if flags&hasTable != 0 {
		msg.Table = string(r.readBytes())
	} else {
		msg.Table = ""
	}

	if flags&hasRow != 0 {
		msg.Row = r.readBytesCopy()
	} else {
		msg.Row = nil
	}

	if flags&hasRowKeys != 0 {
		n := r.readUint32()
		keys := make([][]byte, 0, n)
		for i := uint32(0); i < n && r.err == nil; i++ {
			keys = append(keys, r.readBytesCopy())
		}
		msg.RowKeys = keys
	} else {
		msg.RowKeys = nil
	}

	if flags&hasCells != 0 {
		msg.Cells = r.readCells()
	} else {
		msg.Cells = nil
	}

	if flags&hasColumns != 0 {
		n := r.readUint32()
		cols := make([]common.Column, 0, n)
		for i := uint32(0); i < n && r.err == nil; i++ {
			cols = append(cols, common.Column{
				Family:    string(r.readBytes()),
				Qualifier: string(r.readBytes()),
			})
		}
		msg.Columns = cols
	} else {
		msg.Columns = nil
	}

	if flags&hasStartRow != 0 {
		msg.StartRow = r.readBytesCopy()
	} else {
		msg.StartRow = nil
	}

	if flags&hasStopRow != 0 {
		msg.StopRow = r.readBytesCopy()
	} else {
		msg.StopRow = nil
	}

	if flags&hasBatchSize != 0 {
		msg.BatchSize = r.readUint32()
	} else {
		msg.BatchSize = 0
	}

	if flags&hasScannerID != 0 {
		msg.ScannerID = r.readUint64()
	} else {
		msg.ScannerID = 0
	}

	if flags&hasRows != 0 {
		n := r.readUint32()
		rows := make([]common.RowResult, 0, n)
		for i := uint32(0); i < n && r.err == nil; i++ {
			rows = append(rows, common.RowResult{
				Row:   r.readBytesCopy(),
				Cells: r.readCells(),
			})
		}
		msg.Rows = rows
	} else {
		msg.Rows = nil
	}

	msg.More = flags&hasMore != 0

	if flags&hasRegions != 0 {
		n := r.readUint32()
		regions := make([]common.RegionDesc, 0, n)
		for i := uint32(0); i < n && r.err == nil; i++ {
			regions = append(regions, common.RegionDesc{
				Start:  r.readBytesCopy(),
				Stop:   r.readBytesCopy(),
				Server: string(r.readBytes()),
			})
		}
		msg.Regions = regions
	} else {
		msg.Regions = nil
	}

	if flags&hasErr != 0 {
		msg.Err = string(r.readBytes())
	} else {
		msg.Err = ""
	}

	return r.err
}

// --------------------------------------------------------------------------
// Encoding helpers
// --------------------------------------------------------------------------

// binWriter appends length-prefixed fields to a growing buffer
type binWriter struct {
	buf []byte
}

func (w *binWriter) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// writeBytes writes a uint32 length prefix followed by the raw bytes
func (w *binWriter) writeBytes(b []byte) {
	w.writeUint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *binWriter) writeCells(cells []common.Cell) {
	w.writeUint32(uint32(len(cells)))
	for _, c := range cells {
		w.writeBytes([]byte(c.Family))
		w.writeBytes([]byte(c.Qualifier))
		w.writeBytes(c.Value)
		w.writeUint64(uint64(c.Timestamp))
	}
}

// binReader reads length-prefixed fields and remembers the first error
type binReader struct {
	data []byte
	pos  int
	err  error
}

func (r *binReader) readUint32() uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+4 > len(r.data) {
		r.err = fmt.Errorf("data too short at offset %d", r.pos)
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *binReader) readUint64() uint64 {
	if r.err != nil {
		return 0
	}
	if r.pos+8 > len(r.data) {
		r.err = fmt.Errorf("data too short at offset %d", r.pos)
		return 0
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v
}

// readBytes returns a slice aliasing the input buffer
func (r *binReader) readBytes() []byte {
	n := int(r.readUint32())
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = fmt.Errorf("data too short at offset %d", r.pos)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// readBytesCopy returns a copy so the message does not alias the read buffer
func (r *binReader) readBytesCopy() []byte {
	b := r.readBytes()
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (r *binReader) readCells() []common.Cell {
	n := r.readUint32()
	if r.err != nil || n == 0 {
		return nil
	}
	cells := make([]common.Cell, 0, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		cells = append(cells, common.Cell{
			Family:    string(r.readBytes()),
			Qualifier: string(r.readBytes()),
			Value:     r.readBytesCopy(),
			Timestamp: int64(r.readUint64()),
		})
	}
	return cells
}
