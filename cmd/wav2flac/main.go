// Command wav2flac converts a 16-bit/44.1kHz/stereo WAVE file to FLAC.
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
	const use = `Usage: wav2flac INPUT.wav OUTPUT.flac`
	os.Stderr.WriteString(use + "\n")
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	if err := wav2flac(flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatalf("%+v", err)
	}
}

func wav2flac(wavPath, flacPath string) error {
	r, err := os.Open(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer r.Close()

	src, err := wav.NewSource(r)
	if err != nil {
		return errors.WithStack(err)
	}

	w, err := os.Create(flacPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Close()

	enc, err := flac.NewEncoder(w)
	if err != nil {
		return errors.WithStack(err)
	}

	for {
		left, right, err := src.ReadBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.WithStack(err)
		}
		if err := enc.WriteSamples(left, right); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(enc.Close())
}
