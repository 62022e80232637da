package page

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Consenter asks the user to approve an action. It may block until the
// user answers.
type Consenter interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConsentFunc adapts a function to Consenter.
type ConsentFunc func(ctx context.Context, message string) (bool, error)

func (f ConsentFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// Always answers every request with answer.
func Always(answer bool) Consenter {
	return ConsentFunc(func(context.Context, string) (bool, error) { return answer, nil })
}

// Prompt asks on a terminal. Only "y" or "yes" grants consent.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

func (p Prompt) Confirm(_ context.Context, message string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y/N] ", message)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
