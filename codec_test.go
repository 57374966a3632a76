package piston

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/vmihailenco/msgpack/v4"
	"golang.org/x/sync/errgroup"
)

func genTestInputs() [][]byte {
	r := rand.New(rand.NewSource(0))
	inputs := [][]byte{
		{},
		{0x00},
		[]byte("aaab"),
		bytes.Repeat([]byte{0x41}, 100),
		[]byte("The quick brown fox jumps over the lazy dog."),
		makeTestInput(5, 9, 12, 13, 16, 45),
	}

	every := make([]byte, NumSymbols)
	for i := range every {
		every[i] = byte(i)
	}
	inputs = append(inputs, every)

	for i := 0; i < 20; i++ {
		input := make([]byte, r.Intn(4096))
		r.Read(input)
		inputs = append(inputs, input)
	}
	return inputs
}

func TestCompress_RoundTrip(t *testing.T) {
	for index, input := range genTestInputs() {
		t.Run(fmt.Sprintf("case#%d", index), func(t *testing.T) {
			payload, err := Compress(input)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if payload.Count != uint64(len(input)) {
				t.Errorf("expected count %d, got %d", len(input), payload.Count)
			}

			output, err := Decompress(payload.Data, payload.Count, payload.Table)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(input, output) {
				t.Errorf("round trip mismatch:\n\texpect: %#v\n\tactual: %#v", input, output)
			}
		})
	}
}

func TestCompress_TableProperties(t *testing.T) {
	for index, input := range genTestInputs() {
		payload, err := Compress(input)
		if err != nil {
			t.Fatalf("case#%d: Compress failed: %v", index, err)
		}

		if !IsPrefixFree(payload.Table) {
			t.Errorf("case#%d: table is not prefix-free: %v", index, payload.Table)
		}

		freqs := CountFrequencies(input)
		var actualSymbols []Symbol
		for _, entry := range payload.Table {
			actualSymbols = append(actualSymbols, entry.Symbol)
		}
		if diff := cmp.Diff(freqs.Symbols(), actualSymbols, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("case#%d: table does not cover the alphabet exactly (-expect +actual):\n%s", index, diff)
		}
	}
}

func TestCompress_Literal(t *testing.T) {
	payload, err := Compress([]byte("aaab"))
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	expect := &Payload{
		Data:  []byte{0xe0},
		Count: 4,
		Table: []Entry{
			{Symbol: 'a', Path: MakeCode("1")},
			{Symbol: 'b', Path: MakeCode("0")},
		},
	}
	if diff := cmp.Diff(expect, payload); diff != "" {
		t.Errorf("wrong payload (-expect +actual):\n%s", diff)
	}

	output, err := payload.Decompress()
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if string(output) != "aaab" {
		t.Errorf("expected %q, got %q", "aaab", output)
	}
}

func TestCompress_Empty(t *testing.T) {
	payload, err := Compress([]byte{})
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(payload.Data) != 0 || payload.Count != 0 || len(payload.Table) != 0 {
		t.Errorf("expected empty payload, got %#v", payload)
	}

	output, err := Decompress(payload.Data, payload.Count, payload.Table)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if output == nil || len(output) != 0 {
		t.Errorf("expected empty non-nil output, got %#v", output)
	}
}

func TestCompress_Skewed(t *testing.T) {
	input := append(bytes.Repeat([]byte{'x'}, 1000), 'y')

	payload, err := Compress(input)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(payload.Data) >= len(input) {
		t.Errorf("expected packed output smaller than %d bytes, got %d", len(input), len(payload.Data))
	}
	if len(payload.Data) != 126 {
		t.Errorf("expected 1001 bits in 126 bytes, got %d bytes", len(payload.Data))
	}
}

func TestCompress_SingleSymbol(t *testing.T) {
	input := bytes.Repeat([]byte{0x41}, 100)

	payload, err := Compress(input)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(payload.Table) != 1 || !payload.Table[0].Path.Equal(MakeCode("0")) {
		t.Fatalf("expected a single one-bit entry, got %v", payload.Table)
	}

	output, err := payload.Decompress()
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(input, output) {
		t.Errorf("round trip mismatch: got %d bytes", len(output))
	}
}

func TestDecompress_Errors(t *testing.T) {
	payload, err := Compress([]byte("abracadabra"))
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	type testRow struct {
		name    string
		packed  []byte
		count   uint64
		entries []Entry
		kind    Kind
	}

	testData := [...]testRow{
		{name: "empty-table", packed: payload.Data, count: 1, entries: nil, kind: KindInvalidArgument},
		{name: "empty-path", packed: []byte{0}, count: 1, entries: []Entry{{Symbol: 'a'}}, kind: KindInvalidArgument},
		{name: "not-prefix-free", packed: []byte{0}, count: 1, entries: []Entry{{'a', MakeCode("0")}, {'b', MakeCode("00")}}, kind: KindInvalidArgument},
		{name: "count-beyond-bits", packed: payload.Data, count: uint64(8*len(payload.Data) + 1), entries: payload.Table, kind: KindDataCorruption},
		{name: "count-beyond-symbols", packed: payload.Data, count: payload.Count + 8, entries: payload.Table, kind: KindDataCorruption},
		{name: "truncated", packed: payload.Data[:1], count: payload.Count, entries: payload.Table, kind: KindDataCorruption},
		{name: "off-table", packed: []byte{0x40}, count: 2, entries: []Entry{{'a', MakeCode("0")}}, kind: KindDataCorruption},
	}
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			output, err := Decompress(row.packed, row.count, row.entries)
			if err == nil {
				t.Fatalf("expected an error, got output %#v", output)
			}
			if KindOf(err) != row.kind {
				t.Errorf("expected %v, got %v (%v)", row.kind, KindOf(err), err)
			}
		})
	}
}

func TestDecompress_ZeroCount(t *testing.T) {
	output, err := Decompress([]byte{0xff}, 0, nil)
	if err != nil || len(output) != 0 {
		t.Errorf("expected empty output, got %#v, %v", output, err)
	}
}

func TestCompress_Parallel(t *testing.T) {
	inputs := genTestInputs()

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		for _, input := range inputs {
			input := input
			g.Go(func() error {
				payload, err := Compress(input)
				if err != nil {
					return err
				}
				output, err := payload.Decompress()
				if err != nil {
					return err
				}
				if !bytes.Equal(input, output) {
					return fmt.Errorf("round trip mismatch for %d-byte input", len(input))
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Error(err)
	}
}

func TestPayload_MarshalBinary(t *testing.T) {
	payload, err := Compress([]byte("mississippi river"))
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	raw, err := payload.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	var parsed Payload
	if err := parsed.UnmarshalBinary(raw); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if diff := cmp.Diff(payload, &parsed); diff != "" {
		t.Errorf("wrong payload (-expect +actual):\n%s", diff)
	}

	if err := parsed.UnmarshalBinary([]byte{0xc1}); !IsInvalidArgument(err) {
		t.Errorf("expected %v, got %v (%v)", KindInvalidArgument, KindOf(err), err)
	}
}

func TestPayload_UnmarshalBinary_SymbolOutOfRange(t *testing.T) {
	type testRow struct {
		symbol interface{}
		valid  bool
	}

	testData := [...]testRow{
		{symbol: uint64(65), valid: true},
		{symbol: uint64(255), valid: true},
		{symbol: uint64(256), valid: false},
		{symbol: uint64(321), valid: false},
		{symbol: int64(-1), valid: false},
	}
	for _, row := range testData {
		t.Run(fmt.Sprint(row.symbol), func(t *testing.T) {
			raw, err := msgpack.Marshal(map[string]interface{}{
				"data":  []byte{0x00},
				"count": uint64(1),
				"table": []map[string]interface{}{
					{"symbol": row.symbol, "path": MakeCode("0")},
				},
			})
			if err != nil {
				t.Fatalf("msgpack.Marshal failed: %v", err)
			}

			var parsed Payload
			err = parsed.UnmarshalBinary(raw)
			if !row.valid {
				if !IsInvalidArgument(err) {
					t.Errorf("expected %v, got %v (%v) with table %v", KindInvalidArgument, KindOf(err), err, parsed.Table)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalBinary failed: %v", err)
			}

			output, err := parsed.Decompress()
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if expect := []byte{byte(row.symbol.(uint64))}; !bytes.Equal(expect, output) {
				t.Errorf("expected %#v, got %#v", expect, output)
			}
		})
	}
}
