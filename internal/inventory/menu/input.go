package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/abgdnv/inventory/internal/inventory/product"
	"github.com/shopspring/decimal"
)

// ParamValidator is a function type that validates a parsed integer.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// gte returns a ParamValidator that checks if the argument is greater than or equal to the value captured in the closure.
func gte(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue >= closedValue
	})
}

// lineReader delivers input lines on a channel so reads can be abandoned on cancellation.
type lineReader struct {
	lines <-chan string
	done  chan struct{}
}

func newLineReader(r io.Reader) *lineReader {
	lines := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return &lineReader{lines: lines, done: done}
}

// Close stops the reader goroutine once its pending read returns.
func (l *lineReader) Close() {
	close(l.done)
}

// next returns the next line, io.EOF when input is exhausted, or the context error.
func (l *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// ask prints the prompt and reads one line.
func (m *Menu) ask(ctx context.Context, prompt string) (string, error) {
	_, _ = fmt.Fprint(m.out, m.paint(colorInput, prompt))
	return m.in.next(ctx)
}

// askText reads a non-empty line, re-prompting on blank input.
func (m *Menu) askText(ctx context.Context, prompt string) (string, error) {
	for {
		line, err := m.ask(ctx, prompt)
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		m.fail("Valor obrigatório.")
	}
}

// askInt reads an integer accepted by pValidator, re-prompting on invalid input.
func (m *Menu) askInt(ctx context.Context, prompt string, pValidator ParamValidator) (int, error) {
	for {
		v, err := m.askOptionalInt(ctx, prompt, pValidator)
		if err != nil {
			return 0, err
		}
		if v != nil {
			return *v, nil
		}
		m.fail("Valor inválido. Digite um número inteiro.")
	}
}

// askOptionalInt reads an integer accepted by pValidator. Blank input yields nil.
func (m *Menu) askOptionalInt(ctx context.Context, prompt string, pValidator ParamValidator) (*int, error) {
	for {
		line, err := m.ask(ctx, prompt)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return nil, nil
		}
		v, err := strconv.ParseInt(line, 10, 0)
		if err != nil || !pValidator(v) {
			m.fail("Valor inválido. Digite um número inteiro.")
			continue
		}
		n := int(v)
		return &n, nil
	}
}

// askDecimal reads a non-negative decimal, re-prompting on invalid input.
func (m *Menu) askDecimal(ctx context.Context, prompt string) (decimal.Decimal, error) {
	for {
		v, err := m.askOptionalDecimal(ctx, prompt)
		if err != nil {
			return decimal.Zero, err
		}
		if v != nil {
			return *v, nil
		}
		m.fail("Valor inválido. Digite um número real.")
	}
}

// askOptionalDecimal reads a non-negative decimal, accepting a comma as decimal separator.
// Blank input yields nil.
func (m *Menu) askOptionalDecimal(ctx context.Context, prompt string) (*decimal.Decimal, error) {
	for {
		line, err := m.ask(ctx, prompt)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return nil, nil
		}
		v, err := decimal.NewFromString(strings.Replace(line, ",", ".", 1))
		if err != nil || v.IsNegative() {
			m.fail("Valor inválido. Digite um número real.")
			continue
		}
		return &v, nil
	}
}

// askOptionalDate reads a dd/mm/yyyy date. Blank input yields nil.
func (m *Menu) askOptionalDate(ctx context.Context, prompt string) (*time.Time, error) {
	for {
		line, err := m.ask(ctx, prompt)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return nil, nil
		}
		d, err := product.ParseDate(line)
		if err != nil {
			m.fail("Data inválida. Use o formato dd/mm/aaaa.")
			continue
		}
		return &d, nil
	}
}
