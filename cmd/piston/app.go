package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chronos-tachyon/piston"
	"github.com/chronos-tachyon/piston/internal/config"
	"github.com/chronos-tachyon/piston/internal/server"
	"github.com/nuclio/errors"
	"gopkg.in/urfave/cli.v1"
)

const remoteTimeout = 30 * time.Second

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "piston"
	app.Usage = "Huffman compression, locally or through a piston server"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "remote",
			Usage:  "Address of a piston server to compress and decompress through",
			EnvVar: "PISTON_REMOTE",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the gRPC codec service",
			Flags:  config.Flags(),
			Action: serveAction,
		},
		{
			Name:      "compress",
			Usage:     "Compress a file into a payload file",
			ArgsUsage: "<in> <out>",
			Action:    compressAction,
		},
		{
			Name:      "decompress",
			Usage:     "Recover the original file from a payload file",
			ArgsUsage: "<in> <out>",
			Action:    decompressAction,
		},
		{
			Name:      "inspect",
			Usage:     "Describe a payload file and its code table",
			ArgsUsage: "<in>",
			Action:    inspectAction,
		},
	}
	return app
}

func serveAction(c *cli.Context) error {
	configuration, err := config.FromContext(c)
	if err != nil {
		return err
	}

	loggerInstance, err := server.NewLogger("piston", configuration.LogLevel, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	newServer, err := server.NewServer(loggerInstance, configuration)
	if err != nil {
		return errors.Wrap(err, "Failed to create server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newServer.Run(ctx)
}

func compressAction(c *cli.Context) error {
	inPath, outPath, err := twoArgs(c)
	if err != nil {
		return err
	}

	data, err := readInput(inPath)
	if err != nil {
		return err
	}

	var payload *piston.Payload
	err = withCodec(c, func(backend codec) error {
		payload, err = backend.Compress(data)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "Failed to compress")
	}

	raw, err := payload.MarshalBinary()
	if err != nil {
		return err
	}

	return writeOutput(outPath, raw)
}

func decompressAction(c *cli.Context) error {
	inPath, outPath, err := twoArgs(c)
	if err != nil {
		return err
	}

	payload, err := readPayload(inPath)
	if err != nil {
		return err
	}

	var data []byte
	err = withCodec(c, func(backend codec) error {
		data, err = backend.Decompress(payload)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "Failed to decompress")
	}

	return writeOutput(outPath, data)
}

func inspectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.Errorf("Expected 1 argument, got %d", c.NArg())
	}

	payload, err := readPayload(c.Args().First())
	if err != nil {
		return err
	}

	table, err := piston.NewCodeTable(payload.Table)
	if err != nil {
		return errors.Wrap(err, "Invalid code table")
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Count() = %d\n", payload.Count)
	fmt.Fprintf(w, "PackedSize() = %d\n", len(payload.Data))
	if payload.Count != 0 {
		fmt.Fprintf(w, "Ratio() = %.3f\n", float64(len(payload.Data))/float64(payload.Count))
	}
	fmt.Fprintln(w, table.String())
	if _, err := table.Dump(w); err != nil {
		return errors.Wrap(err, "Failed to write code table")
	}

	return nil
}

// codec is satisfied by both the local codec and a remote client
type codec interface {
	Compress(data []byte) (*piston.Payload, error)
	Decompress(payload *piston.Payload) ([]byte, error)
}

type localCodec struct{}

func (localCodec) Compress(data []byte) (*piston.Payload, error) {
	return piston.Compress(data)
}

func (localCodec) Decompress(payload *piston.Payload) ([]byte, error) {
	return payload.Decompress()
}

type remoteCodec struct {
	ctx    context.Context
	client *server.Client
}

func (rc remoteCodec) Compress(data []byte) (*piston.Payload, error) {
	return rc.client.Compress(rc.ctx, data)
}

func (rc remoteCodec) Decompress(payload *piston.Payload) ([]byte, error) {
	return rc.client.Decompress(rc.ctx, payload)
}

// withCodec runs fn against the server named by --remote, or in process when
// none is given
func withCodec(c *cli.Context, fn func(codec) error) error {
	addr := c.GlobalString("remote")
	if addr == "" {
		return fn(localCodec{})
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	client, err := server.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close() // nolint: errcheck

	return fn(remoteCodec{ctx: ctx, client: client})
}

func twoArgs(c *cli.Context) (string, string, error) {
	if c.NArg() != 2 {
		return "", "", errors.Errorf("Expected 2 arguments, got %d", c.NArg())
	}
	return c.Args().Get(0), c.Args().Get(1), nil
}

func readPayload(path string) (*piston.Payload, error) {
	raw, err := readInput(path)
	if err != nil {
		return nil, err
	}

	payload := &piston.Payload{}
	if err := payload.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse payload file %s", path)
	}
	return payload, nil
}

// readInput reads path, or standard input when path is "-"
func readInput(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %s", path)
	}
	return data, nil
}

// writeOutput writes path, or standard output when path is "-"
func writeOutput(path string, data []byte) error {
	var err error
	if path == "-" {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return errors.Wrapf(err, "Failed to write %s", path)
	}
	return nil
}
