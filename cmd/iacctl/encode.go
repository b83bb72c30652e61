package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type encodeOptions struct {
	in    string
	chunk int
	url   bool
}

func newEncodeCommand(root *rootOptions) *cobra.Command {
	opts := &encodeOptions{}
	c := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON message list into frames",
		Long: `Reads a JSON array of {"id", "type", "protocol", "payload"} objects and
prints one frame per line, or a single deep link with --url.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runEncode(c, root, opts)
		},
	}
	flags := c.Flags()
	flags.StringVar(&opts.in, "in", "-", "message list file, - for stdin")
	flags.IntVar(&opts.chunk, "chunk", -1, "chunk size in bytes, 0 disables chunking (default from config)")
	flags.BoolVar(&opts.url, "url", false, "print a deep link instead of frames")
	return c
}

func runEncode(c *cobra.Command, root *rootOptions, opts *encodeOptions) error {
	s, err := root.serializer()
	if err != nil {
		return err
	}

	var r io.Reader = c.InOrStdin()
	if opts.in != "-" {
		f, err := os.Open(opts.in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	msgs, err := readMessages(r, s)
	if err != nil {
		return err
	}

	chunk := opts.chunk
	if chunk < 0 {
		chunk = root.cfg.ChunkSize
	}
	out := c.OutOrStdout()
	if opts.url {
		link, err := s.SerializeToURL(msgs, chunk)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, link)
		return err
	}
	frames, err := s.Serialize(msgs, chunk)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if _, err := fmt.Fprintln(out, f); err != nil {
			return err
		}
	}
	return nil
}
