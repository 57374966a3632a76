package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chronos-tachyon/piston"
	"github.com/chronos-tachyon/piston/internal/config"
	"github.com/chronos-tachyon/piston/internal/server"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"piston"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, dir string, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testRoundTrip(t *testing.T, globalArgs []string, input []byte) {
	dir := t.TempDir()
	inPath := writeFile(t, dir, "input.bin", input)
	packedPath := filepath.Join(dir, "packed.piston")
	outPath := filepath.Join(dir, "output.bin")

	_, err := runApp(t, append(globalArgs, "compress", inPath, packedPath)...)
	require.NoError(t, err)

	raw, err := os.ReadFile(packedPath)
	require.NoError(t, err)

	var payload piston.Payload
	require.NoError(t, payload.UnmarshalBinary(raw))
	require.Equal(t, uint64(len(input)), payload.Count)

	_, err = runApp(t, append(globalArgs, "decompress", packedPath, outPath)...)
	require.NoError(t, err)

	output, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, input, output)
}

func TestLocalRoundTrip(t *testing.T) {
	for _, input := range [][]byte{
		{},
		[]byte("aaab"),
		[]byte(strings.Repeat("she sells sea shells by the sea shore ", 40)),
	} {
		testRoundTrip(t, nil, input)
	}
}

func TestRemoteRoundTrip(t *testing.T) {
	loggerInstance, err := nucliozap.NewNuclioZapTest("test")
	require.NoError(t, err)

	configuration := config.Default()
	newServer, err := server.NewServer(loggerInstance, &configuration)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- newServer.Serve(ctx, listener)
	}()
	defer func() {
		cancel()
		require.NoError(t, <-serveErr)
	}()

	testRoundTrip(t,
		[]string{"--remote", listener.Addr().String()},
		[]byte(strings.Repeat("peter piper picked a peck of pickled peppers ", 25)))
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	inPath := writeFile(t, dir, "input.txt", []byte("aaab"))
	packedPath := filepath.Join(dir, "packed.piston")

	_, err := runApp(t, "compress", inPath, packedPath)
	require.NoError(t, err)

	out, err := runApp(t, "inspect", packedPath)
	require.NoError(t, err)
	require.Contains(t, out, "Count() = 4\n")
	require.Contains(t, out, "PackedSize() = 1\n")
	require.Contains(t, out, "(Huffman code table with 2 symbols, with coded lengths of 1 .. 1 bits)")
	require.Contains(t, out, `Lookup(97) = "1"`)
	require.Contains(t, out, `Lookup(98) = "0"`)
}

func TestCorruptPayload(t *testing.T) {
	dir := t.TempDir()
	inPath := writeFile(t, dir, "input.txt", []byte("abracadabra"))
	packedPath := filepath.Join(dir, "packed.piston")

	_, err := runApp(t, "compress", inPath, packedPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(packedPath)
	require.NoError(t, err)

	var payload piston.Payload
	require.NoError(t, payload.UnmarshalBinary(raw))
	payload.Data = payload.Data[:1]
	raw, err = payload.MarshalBinary()
	require.NoError(t, err)
	truncatedPath := writeFile(t, dir, "truncated.piston", raw)

	_, err = runApp(t, "decompress", truncatedPath, filepath.Join(dir, "output.txt"))
	require.Error(t, err)
	require.True(t, piston.IsDataCorruption(err))

	garbagePath := writeFile(t, dir, "garbage.piston", []byte{0xc1})
	_, err = runApp(t, "inspect", garbagePath)
	require.Error(t, err)
	require.True(t, piston.IsInvalidArgument(err))
}

func TestWrongArgumentCount(t *testing.T) {
	_, err := runApp(t, "compress", "only-one")
	require.Error(t, err)

	_, err = runApp(t, "inspect")
	require.Error(t, err)
}
