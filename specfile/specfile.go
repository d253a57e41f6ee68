// Package specfile loads TIS-100 puzzle specifications: small Lua scripts
// that define the grid's tile layout and its test data streams. A spec
// file must define get_layout(), returning a 12-element list of tile
// codes, and get_streams(), returning up to 8 stream descriptors.
package specfile

import (
	"fmt"
	"math"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Tile is the kind of node a puzzle places in one of its 12 grid slots.
type Tile int

const (
	TILE_UNIMPLEMENTED Tile = iota
	COMPUTE                  // A programmable execution node.
	MEMORY                   // A stack memory node.
	DAMAGED                  // A corrupted, permanently stalled node.
	TILE_MAX
)

// NumNodes is the number of grid slots a spec's layout must describe.
const NumNodes = 12

// StreamKind distinguishes a spec's three kinds of test data stream.
type StreamKind int

const (
	STREAM_UNIMPLEMENTED StreamKind = iota
	INPUT
	OUTPUT
	IMAGE
	STREAM_MAX
)

// Stream is one test data stream: which column's pseudo-node it attaches
// to (Node, 0-3; see grid.AttachStream) and the sequence of values it carries (an image stream's data is a flattened
// 30x18 grid of pixel codes).
type Stream struct {
	Kind StreamKind
	Name string
	Node int
	Data []int
}

// Spec is a fully loaded puzzle specification.
type Spec struct {
	Layout  [NumNodes]Tile
	Streams []Stream
}

// ErrorKind distinguishes the ways loading a spec file can fail.
type ErrorKind int

const (
	ERR_UNIMPLEMENTED ErrorKind = iota
	ERR_SEED_RANDOM_FAILED
	ERR_READ_FILE_FAILED
	ERR_GET_LAYOUT_FAILED
	ERR_GET_STREAMS_FAILED
	ERR_MAX
)

// LoadError reports why a spec file failed to load.
type LoadError struct {
	Kind ErrorKind
	Err  error // The underlying Lua or I/O error, if any.
}

// Error implements the error interface for LoadError.
func (e LoadError) Error() string {
	var reason string
	switch e.Kind {
	case ERR_SEED_RANDOM_FAILED:
		reason = "failed to seed random number generator"
	case ERR_READ_FILE_FAILED:
		reason = "failed to read spec file"
	case ERR_GET_LAYOUT_FAILED:
		reason = "get_layout() did not return a valid 12-tile layout"
	case ERR_GET_STREAMS_FAILED:
		reason = "get_streams() did not return valid stream descriptors"
	default:
		reason = "unknown spec load error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", reason, e.Err)
	}
	return reason
}

// seedRandom returns the seed handed to the spec's math.randomseed: the
// current time in nanoseconds.
var seedRandom = func() int64 { return time.Now().UnixNano() }

// Load reads and evaluates a spec file, extracting its layout and streams.
func Load(filename string) (*Spec, error) {
	l := lua.NewState()
	defer l.Close()
	l.OpenLibs()

	l.SetGlobal("math_randomseed_value", lua.LNumber(seedRandom()))
	if err := l.DoString(`math.randomseed(math_randomseed_value)`); err != nil {
		return nil, LoadError{Kind: ERR_SEED_RANDOM_FAILED, Err: err}
	}

	l.SetGlobal("STREAM_INPUT", lua.LNumber(INPUT-1))
	l.SetGlobal("STREAM_OUTPUT", lua.LNumber(OUTPUT-1))
	l.SetGlobal("STREAM_IMAGE", lua.LNumber(IMAGE-1))
	l.SetGlobal("TILE_COMPUTE", lua.LNumber(COMPUTE-1))
	l.SetGlobal("TILE_MEMORY", lua.LNumber(MEMORY-1))
	l.SetGlobal("TILE_DAMAGED", lua.LNumber(DAMAGED-1))

	if err := l.DoFile(filename); err != nil {
		return nil, LoadError{Kind: ERR_READ_FILE_FAILED, Err: err}
	}

	layout, err := loadLayout(l)
	if err != nil {
		return nil, err
	}

	streams, err := loadStreams(l)
	if err != nil {
		return nil, err
	}

	return &Spec{Layout: layout, Streams: streams}, nil
}

func loadLayout(l *lua.LState) ([NumNodes]Tile, error) {
	var layout [NumNodes]Tile

	fn := l.GetGlobal("get_layout")
	if fn.Type() != lua.LTFunction {
		return layout, LoadError{Kind: ERR_GET_LAYOUT_FAILED}
	}

	if err := l.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return layout, LoadError{Kind: ERR_GET_LAYOUT_FAILED, Err: err}
	}
	ret := l.Get(-1)
	l.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok || table.Len() != NumNodes {
		return layout, LoadError{Kind: ERR_GET_LAYOUT_FAILED}
	}

	for i := 0; i < NumNodes; i++ {
		code, ok := table.RawGetInt(i + 1).(lua.LNumber)
		if !ok {
			return layout, LoadError{Kind: ERR_GET_LAYOUT_FAILED}
		}
		tile := Tile(int(code)) + 1 // Lua side is 0-indexed; Tile's valid range starts at 1.
		if tile <= TILE_UNIMPLEMENTED || tile >= TILE_MAX {
			return layout, LoadError{Kind: ERR_GET_LAYOUT_FAILED}
		}
		layout[i] = tile
	}
	return layout, nil
}

func loadStreams(l *lua.LState) ([]Stream, error) {
	fn := l.GetGlobal("get_streams")
	if fn.Type() != lua.LTFunction {
		return nil, LoadError{Kind: ERR_GET_STREAMS_FAILED}
	}

	if err := l.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return nil, LoadError{Kind: ERR_GET_STREAMS_FAILED, Err: err}
	}
	ret := l.Get(-1)
	l.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok {
		return nil, LoadError{Kind: ERR_GET_STREAMS_FAILED}
	}

	var streams []Stream
	for i := 1; i <= 8; i++ {
		entry := table.RawGetInt(i)
		if entry == lua.LNil {
			break
		}
		stream, ok := entry.(*lua.LTable)
		if !ok {
			return nil, LoadError{Kind: ERR_GET_STREAMS_FAILED}
		}

		s, err := parseStream(stream)
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
	}
	return streams, nil
}

func parseStream(t *lua.LTable) (Stream, error) {
	kindNum, ok := t.RawGetInt(1).(lua.LNumber)
	if !ok {
		return Stream{}, LoadError{Kind: ERR_GET_STREAMS_FAILED}
	}
	kind := StreamKind(int(kindNum)) + 1
	if kind <= STREAM_UNIMPLEMENTED || kind >= STREAM_MAX {
		return Stream{}, LoadError{Kind: ERR_GET_STREAMS_FAILED}
	}

	name, ok := t.RawGetInt(2).(lua.LString)
	if !ok {
		return Stream{}, LoadError{Kind: ERR_GET_STREAMS_FAILED}
	}

	nodeNum, ok := t.RawGetInt(3).(lua.LNumber)
	if !ok {
		return Stream{}, LoadError{Kind: ERR_GET_STREAMS_FAILED}
	}

	dataTable, ok := t.RawGetInt(4).(*lua.LTable)
	if !ok {
		return Stream{}, LoadError{Kind: ERR_GET_STREAMS_FAILED}
	}

	var data []int
	for i := 1; i <= dataTable.Len(); i++ {
		v, ok := dataTable.RawGetInt(i).(lua.LNumber)
		if !ok {
			return Stream{}, LoadError{Kind: ERR_GET_STREAMS_FAILED}
		}
		data = append(data, int(math.Round(float64(v))))
	}

	return Stream{Kind: kind, Name: string(name), Node: int(nodeNum), Data: data}, nil
}
