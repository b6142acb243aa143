// Command prepctl queries a question corpus from the command line.
//
// Exit codes: 0 success, 1 not found, 2 usage or corpus load error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prepdeck/prepdeck/internal/corpus"
	"github.com/prepdeck/prepdeck/internal/export"
	"github.com/prepdeck/prepdeck/internal/store"
)

const usage = `usage: prepctl [-corpus dir] <command> [args]

commands:
  topics                      list the topic set
  questions <topic>           list questions for a topic
  get <id>                    print one question by id
  sample [-n N] [-topic t]    print random questions
  plan                        print the study plan
  export -o <file.xlsx>       write the corpus to a workbook
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("prepctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	corpusDir := fs.String("corpus", defaultCorpusDir(), "corpus directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	c, err := corpus.Load(*corpusDir)
	if err != nil {
		fmt.Fprintf(stderr, "prepctl: %v\n", err)
		return 2
	}
	s := store.NewMemoryStore(c)
	ctx := context.Background()

	switch rest[0] {
	case "topics":
		topics, _ := s.ListTopics(ctx)
		return printJSON(stdout, stderr, topics)

	case "questions":
		if len(rest) != 2 {
			fmt.Fprintln(stderr, "usage: prepctl questions <topic>")
			return 2
		}
		recs, err := s.GetByTopic(ctx, rest[1])
		if err != nil {
			return printLookupError(stderr, err)
		}
		return printJSON(stdout, stderr, recs)

	case "get":
		if len(rest) != 2 {
			fmt.Fprintln(stderr, "usage: prepctl get <id>")
			return 2
		}
		rec, err := s.GetByID(ctx, rest[1])
		if err != nil {
			return printLookupError(stderr, err)
		}
		return printJSON(stdout, stderr, rec)

	case "sample":
		sampleFS := flag.NewFlagSet("sample", flag.ContinueOnError)
		sampleFS.SetOutput(stderr)
		n := sampleFS.Int("n", 1, "number of questions")
		topic := sampleFS.String("topic", "", "restrict to one topic")
		if err := sampleFS.Parse(rest[1:]); err != nil {
			return 2
		}
		recs, err := s.Sample(ctx, *topic, *n)
		if err != nil {
			return printLookupError(stderr, err)
		}
		return printJSON(stdout, stderr, recs)

	case "plan":
		return printJSON(stdout, stderr, c.Plan())

	case "export":
		exportFS := flag.NewFlagSet("export", flag.ContinueOnError)
		exportFS.SetOutput(stderr)
		out := exportFS.String("o", "", "output file")
		if err := exportFS.Parse(rest[1:]); err != nil {
			return 2
		}
		if *out == "" {
			fmt.Fprintln(stderr, "usage: prepctl export -o <file.xlsx>")
			return 2
		}
		if err := writeWorkbook(*out, c.Records()); err != nil {
			fmt.Fprintf(stderr, "prepctl: %v\n", err)
			return 2
		}
		fmt.Fprintf(stdout, "wrote %d records to %s\n", len(c.Records()), *out)
		return 0

	default:
		fmt.Fprintf(stderr, "prepctl: unknown command %q\n", rest[0])
		fmt.Fprint(stderr, usage)
		return 2
	}
}

func writeWorkbook(path string, records []corpus.QARecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Workbook(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "prepctl: %v\n", err)
		return 2
	}
	return 0
}

func printLookupError(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "prepctl: %v\n", err)
	if errors.Is(err, store.ErrNotFound) {
		return 1
	}
	return 2
}

func defaultCorpusDir() string {
	if v := os.Getenv("PREP_CORPUS_PATH"); v != "" {
		return v
	}
	return "./corpus"
}
