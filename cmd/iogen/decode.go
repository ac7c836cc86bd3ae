package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iogen/iogen/internal/config"
	"github.com/iogen/iogen/internal/engine"
	"github.com/iogen/iogen/internal/request"
	"github.com/iogen/iogen/internal/stats"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Print the records in an iogen stream",
		Long: `Read an iogen record stream from FILE (or stdin) and print one line per
record. zstd-compressed streams are detected automatically.

With --manifest, the stream's record count and BLAKE3 digest are checked
against a manifest written by "iogen --manifest". --fill N prints the first N
bytes each write record's executor stores.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDecode,
	}
	cmd.Flags().String("format", "binary", "record format: binary or msgpack")
	cmd.Flags().String("manifest", "", "verify the stream against a run manifest")
	cmd.Flags().Bool("summary", false, "print only per-kind counts")
	cmd.Flags().Int("fill", 0, "also print the first N bytes each write record stores")
	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")      //nolint:errcheck // flag name is hardcoded
	manifestPath, _ := cmd.Flags().GetString("manifest") //nolint:errcheck // flag name is hardcoded
	summary, _ := cmd.Flags().GetBool("summary")         //nolint:errcheck // flag name is hardcoded
	fill, _ := cmd.Flags().GetInt("fill")                //nolint:errcheck // flag name is hardcoded

	var manifest *config.Manifest
	if manifestPath != "" {
		m, err := config.ReadManifest(manifestPath)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		manifest = &m
		if !cmd.Flags().Changed("format") && m.Format != "" {
			formatStr = m.Format
		}
	}

	format, err := request.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open stream: %w", err)
		}
		defer f.Close()
		in = f
	}

	br := bufio.NewReader(in)
	if head, _ := br.Peek(len(zstdMagic)); bytes.Equal(head, zstdMagic) { //nolint:errcheck // short streams are not compressed
		zr, err := request.NewDecompressedReader(br)
		if err != nil {
			return err
		}
		defer zr.Close()
		in = zr
	} else {
		in = br
	}

	digest := engine.NewDigestWriter(io.Discard)
	dec, err := request.NewDecoder(io.TeeReader(in, digest), format)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	counts := stats.NewCollector()
	for {
		rec, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", counts.Snapshot().Records+1, err)
		}
		counts.AddRecord(rec.Kind(), request.Total(rec), 0)
		if summary {
			continue
		}
		fmt.Fprintln(out, request.Describe(rec))
		data, err := request.ExpectedData(rec, fill)
		if err != nil {
			return fmt.Errorf("record %d: %w", counts.Snapshot().Records, err)
		}
		if data != nil {
			fmt.Fprintf(out, "  data %q\n", data)
		}
	}

	snap := counts.Snapshot()
	snap.BytesOut = digest.Written()
	if summary {
		fmt.Fprintln(out, snap.String())
	}

	if manifest != nil {
		if snap.Records != manifest.Records || digest.Sum() != manifest.Digest {
			fmt.Fprintf(cmd.ErrOrStderr(),
				"stream does not match manifest: %d records, digest %s; manifest has %d records, digest %s\n",
				snap.Records, digest.Sum(), manifest.Records, manifest.Digest)
			return &exitError{code: 1}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "stream matches manifest %s (run %s)\n", manifestPath, manifest.RunID)
	}
	return nil
}
