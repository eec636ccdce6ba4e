// Command flac2wav converts a FLAC file to a 16-bit/44.1kHz/stereo WAVE
// file.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	flac "github.com/kzio/flaccore"
	"github.com/kzio/flaccore/wav"
)

func usage() {
	const use = `Usage: flac2wav INPUT.flac OUTPUT.wav`
	os.Stderr.WriteString(use + "\n")
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	if err := flac2wav(flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatalf("%+v", err)
	}
}

func flac2wav(flacPath, wavPath string) error {
	stream, err := flac.Open(flacPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer stream.Close()

	w, err := os.Create(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Close()

	sink := wav.NewSink(w)

	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.WithStack(err)
		}
		if len(f.Subframes) != 2 {
			return errors.Errorf("flac2wav: expected 2 subframes, got %d", len(f.Subframes))
		}
		if err := sink.WriteBlock(f.Subframes[0].Samples, f.Subframes[1].Samples); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(sink.Close())
}
