// Command listconv converts suggestion lists between the text, binary and
// msgpack formats. The output format follows the output file extension.
//
//	listconv -in fruit.txt -out fruit.bin
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/bastiangx/wordoracle/internal/utils"
	"github.com/bastiangx/wordoracle/pkg/dictionary"
	"github.com/charmbracelet/log"
)

func main() {
	in := flag.String("in", "", "Suggestion list to read (.txt, .bin, .msgpack)")
	out := flag.String("out", "", "File to write, format taken from the extension")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	n, err := convert(*in, *out)
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}
	log.Infof("Wrote %s entries to %s", utils.FormatWithCommas(n), *out)
}

func convert(inPath, outPath string) (int, error) {
	entries, err := dictionary.ReadFile(inPath)
	if err != nil {
		return 0, err
	}

	file, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	switch dictionary.FormatForExtension(outPath) {
	case dictionary.FormatBinary:
		err = dictionary.WriteBinary(w, entries)
	case dictionary.FormatMsgpack:
		err = dictionary.WriteMsgpack(w, entries)
	case dictionary.FormatText:
		for _, e := range entries {
			if _, err = fmt.Fprintln(w, e); err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("unsupported output extension for %s", outPath)
	}
	if err != nil {
		return 0, err
	}
	if err := w.Flush(); err != nil {
		return 0, err
	}
	return len(entries), file.Close()
}
