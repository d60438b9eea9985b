// Package query implements a line oriented text protocol for querying a
// trained network, in the manner of GTP.
//
// Every command is one line: an optional numeric id, the command name and its
// arguments. A successful response is "= result\n\n", a failure "? error\n\n".
// The id, if given, is echoed after the "=" or "?".
package query

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/pkg/errors"
)

// Net is what the engine queries. *fcn.Network implements it.
type Net interface {
	Layout() fcn.Layout
	Activation() fcn.Activation
	Forward(input *matrix.Dense, ctx *fcn.Context) error
	Weight(layer int) (*matrix.Dense, error)
}

type Engine struct {
	net Net
	ctx *fcn.Context

	known map[string]Command

	ch   chan string
	ret  chan string
	done chan struct{}
	quit bool

	name, version string
}

// New creates an engine answering queries about net. A nil known uses StandardLib.
func New(net Net, name, version string, known map[string]Command) *Engine {
	if known == nil {
		known = StandardLib()
	}
	return &Engine{
		net:     net,
		ctx:     fcn.NewContext(net.Layout()),
		known:   known,
		name:    name,
		version: version,
		done:    make(chan struct{}),
	}
}

// Start runs the engine on its own goroutine. Every command sent on input
// yields exactly one response on output. After "quit" the engine stops and
// closes output.
func (e *Engine) Start() (input, output chan string) {
	e.ch = make(chan string)
	e.ret = make(chan string)
	go e.start()
	return e.ch, e.ret
}

// Done is closed once "quit" has been handled.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Serve answers every line of r on w until r is exhausted or "quit" is received.
func (e *Engine) Serve(r io.Reader, w io.Writer) error {
	in, out := e.Start()
	defer close(in)
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		in <- line
		if _, err := io.WriteString(w, <-out); err != nil {
			return errors.WithStack(err)
		}
		select {
		case <-e.done:
			return nil
		default:
		}
	}
	return errors.WithStack(s.Err())
}

func (e *Engine) start() {
	defer close(e.ret)
	for cmd := range e.ch {
		id, x, args, err := e.parse(cmd)
		if x == nil && err == nil {
			e.ret <- handleResult(id, "", nil)
			continue
		}
		if err != nil {
			e.ret <- handleErr(id, err)
			continue
		}
		id, result, err := x.Do(id, args, e)
		reply := handleResult(id, result, err)
		if e.quit {
			close(e.done)
			e.ret <- reply
			return
		}
		e.ret <- reply
	}
}

func (e *Engine) parse(cmd string) (id int, x Command, args []string, err error) {
	cmd = preprocess(cmd)
	tokens := strings.Fields(cmd)
	id = -1
	if len(tokens) == 0 {
		return id, nil, nil, nil
	}
	if i, err := strconv.Atoi(tokens[0]); err == nil {
		// the id is optional
		id = i
		tokens = tokens[1:]
	}

	if len(tokens) == 0 {
		return id, nil, nil, nil
	}

	var ok bool
	if x, ok = e.known[tokens[0]]; !ok {
		return id, nil, nil, errors.Errorf("Unknown command %q", tokens[0])
	}
	if len(tokens) > 1 {
		args = tokens[1:]
	}
	return
}

func preprocess(a string) string {
	if i := strings.IndexByte(a, '#'); i >= 0 {
		a = a[:i]
	}
	return strings.ToLower(strings.TrimSpace(a))
}

func handleErr(id int, err error) string {
	if id != -1 {
		return fmt.Sprintf("? %d %v\n\n", id, err)
	}
	return fmt.Sprintf("? %v\n\n", err)
}

func handleResult(id int, result string, err error) string {
	if err != nil {
		return handleErr(id, err)
	}

	if id != -1 {
		return fmt.Sprintf("= %d %v\n\n", id, result)
	}
	return fmt.Sprintf("= %v\n\n", result)
}
