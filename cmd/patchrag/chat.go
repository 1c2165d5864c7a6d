package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ersonp/patchrag/internal/application/handlers"
	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/services"
)

type questionAnswerer interface {
	Handle(ctx context.Context, question string, opts handlers.QueryOptions) (*services.Answer, error)
}

// chatLoop prompts for questions until input ends or ctx is cancelled. A
// failed question is reported and the loop keeps going.
func chatLoop(ctx context.Context, h questionAnswerer, in io.Reader, out io.Writer, opts handlers.QueryOptions) error {
	fmt.Fprintln(out, "Enter your query. Press Ctrl+C to exit.")
	fmt.Fprintf(out, "\tExample: %s\n", exampleQuestion)

	lines := readLines(ctx, in)

	for {
		fmt.Fprint(out, "> ")

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nCancelled. Exiting program.")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out, "\nInput stream closed. Exiting.")
			return nil
		}

		question := strings.TrimSpace(line)
		switch question {
		case "":
			fmt.Fprintln(out, "Please enter a query.")
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := h.Handle(ctx, question, opts)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out, "\nCancelled. Exiting program.")
				return nil
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		printAnswer(out, answer)
	}
}

// readLines delivers lines from in until EOF or ctx is done. The reader
// goroutine may outlive the loop while blocked on a read.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func printAnswer(out io.Writer, answer *services.Answer) {
	fmt.Fprintf(out, "\nQuery: %s\n", answer.Question)
	if f := formatFilter(answer.Filter); f != "" {
		fmt.Fprintf(out, "With filter: %s\n", f)
	}

	fmt.Fprintln(out, "\nAnswer:")
	fmt.Fprintln(out, answer.Text)

	if len(answer.Sources) == 0 {
		fmt.Fprintln(out)
		return
	}

	fmt.Fprintln(out, "\nSource Documents:")
	for i, doc := range answer.Sources {
		m := doc.Metadata
		fmt.Fprintf(out, "  %d. [%s] %s/%s %s (score %.3f)\n", i+1, m.PatchName, m.Type, m.Subtype, m.Title, doc.Score)
		fmt.Fprintf(out, "     %s\n", doc.PageContent)
	}
	fmt.Fprintln(out)
}

// formatFilter renders the filter as sorted key=value pairs.
func formatFilter(f entities.Filter) string {
	conds := f.Conditions()
	if len(conds) == 0 {
		return ""
	}

	keys := make([]string, 0, len(conds))
	for k := range conds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + conds[k]
	}
	return strings.Join(parts, " ")
}
