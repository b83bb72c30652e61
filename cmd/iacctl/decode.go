package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/spf13/cobra"
)

type decodeOptions struct {
	in  string
	url string
}

func newDecodeCommand(root *rootOptions) *cobra.Command {
	opts := &decodeOptions{}
	c := &cobra.Command{
		Use:   "decode [frames...]",
		Short: "Decode frames or a deep link into a JSON message list",
		Long: `Frames come from the arguments, from --url, or one per line from --in
(stdin when no other source is given). Frames may be in any order.`,
		RunE: func(c *cobra.Command, args []string) error {
			return runDecode(c, root, opts, args)
		},
	}
	flags := c.Flags()
	flags.StringVar(&opts.in, "in", "", "file with one frame per line, - for stdin")
	flags.StringVar(&opts.url, "url", "", "deep link carrying the frames")
	return c
}

func runDecode(c *cobra.Command, root *rootOptions, opts *decodeOptions, args []string) error {
	s, err := root.serializer()
	if err != nil {
		return err
	}

	var msgs []message.Message
	switch {
	case opts.url != "":
		msgs, err = s.DeserializeURL(opts.url)
	case len(args) > 0:
		msgs, err = s.Deserialize(args)
	default:
		var frames []string
		frames, err = readFrames(c.InOrStdin(), opts.in)
		if err == nil {
			msgs, err = s.Deserialize(frames)
		}
	}
	if err != nil {
		if incomplete, ok := protocol.IsIncomplete(err); ok {
			fmt.Fprintf(c.ErrOrStderr(), "missing pages %v of %d\n", incomplete.Missing(), incomplete.TotalPages)
		}
		return err
	}
	return writeMessages(c.OutOrStdout(), msgs)
}

func readFrames(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var frames []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			frames = append(frames, line)
		}
	}
	return frames, sc.Err()
}
