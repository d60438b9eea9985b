package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gorgonia/bpnet/matrix"
	"github.com/pkg/errors"
)

type Command interface {
	Do(id int, args []string, e *Engine) (int, string, error)
}

type stdlib func(e *Engine) string

type stdlib2 func(e *Engine, args []string) (string, error)

func (f stdlib) Do(id int, args []string, e *Engine) (int, string, error) {
	str := f(e)
	return id, str, nil
}

func (f stdlib2) Do(id int, args []string, e *Engine) (int, string, error) {
	str, err := f(e, args)
	return id, str, err
}

func protocolVersion(e *Engine) string { return "1" }
func name(e *Engine) string            { return e.name }
func version(e *Engine) string         { return e.version }

func listCommands(e *Engine) string {
	cmds := make([]string, 0, len(e.known))
	for c := range e.known {
		cmds = append(cmds, c)
	}
	sort.Strings(cmds)
	return strings.Join(cmds, "\n")
}

func quit(e *Engine) string { e.quit = true; return "" }

func layout(e *Engine) string {
	l := e.net.Layout()
	s := make([]string, len(l))
	for i, n := range l {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, " ")
}

func activation(e *Engine) string { return e.net.Activation().String() }

func knownCommand(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"known_command\"")
	}
	if _, ok := e.known[args[0]]; ok {
		return "true", nil
	}
	return "false", nil
}

// input parses args into an input column for the network.
func input(e *Engine, cmd string, args []string) (*matrix.Dense, error) {
	want := e.net.Layout().Inputs()
	if len(args) != want {
		return nil, errors.Errorf("%q takes %d values, got %d", cmd, want, len(args))
	}
	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, errors.WithMessagef(err, "Unable to parse argument %d of %q", i+1, cmd)
		}
		vals[i] = v
	}
	return matrix.NewColumn(vals...), nil
}

func forward(e *Engine, args []string) (string, error) {
	in, err := input(e, "forward", args)
	if err != nil {
		return "", err
	}
	if err = e.net.Forward(in, e.ctx); err != nil {
		return "", err
	}
	out := matrix.Flatten(e.ctx.Output())
	s := make([]string, len(out))
	for i, v := range out {
		s[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return strings.Join(s, " "), nil
}

func predict(e *Engine, args []string) (string, error) {
	in, err := input(e, "predict", args)
	if err != nil {
		return "", err
	}
	if err = e.net.Forward(in, e.ctx); err != nil {
		return "", err
	}
	return strconv.Itoa(matrix.ArgMax(e.ctx.Output())), nil
}

func weights(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"weights\"")
	}
	l, err := strconv.Atoi(args[0])
	if err != nil {
		return "", errors.WithMessage(err, "Unable to parse layer argument")
	}
	w, err := e.net.Weight(l)
	if err != nil {
		return "", err
	}
	return "\n" + strings.TrimRight(w.String(), "\n"), nil
}

func StandardLib() map[string]Command {
	return map[string]Command{
		"protocol_version": stdlib(protocolVersion),
		"name":             stdlib(name),
		"version":          stdlib(version),
		"list_commands":    stdlib(listCommands),
		"quit":             stdlib(quit),
		"layout":           stdlib(layout),
		"activation":       stdlib(activation),

		"known_command": stdlib2(knownCommand),
		"forward":       stdlib2(forward),
		"predict":       stdlib2(predict),
		"weights":       stdlib2(weights),
	}
}
