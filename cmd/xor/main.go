// Command xor trains a small network on the XOR problem.
//
// Progress is logged, and optionally streamed to a browser (websocket JSON on
// /ws, MJPEG heat maps on /mjpeg), written to an animated GIF and dumped as
// CSV. The trained network can be saved with gob, exported to Graphviz and
// queried over stdin.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strings"

	"github.com/gorgonia/bpnet"
	"github.com/gorgonia/bpnet/encoding/gif"
	"github.com/gorgonia/bpnet/encoding/mjpeg"
	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/gorgonia/bpnet/query"
	"github.com/pkg/errors"
)

var (
	configFile = flag.String("config", "", "JSON training config. Flags given explicitly override it")
	epochs     = flag.Int("epochs", 5000, "maximum number of epochs")
	lr         = flag.Float64("lr", 0.5, "learning rate")
	target     = flag.Float64("target", 0.01, "stop once the average epoch loss falls below this")
	batch      = flag.Int("batch", 4, "batch size")
	pattern    = flag.Bool("pattern", false, "update the weights after every sample")
	nworkers   = flag.Int("workers", 0, "sub-batches per batch. 0 uses every CPU")
	seed       = flag.Int64("seed", 0, "shuffle seed. 0 seeds from the OS")
	hidden     = flag.Int("hidden", 3, "hidden layer width")
	act        = flag.String("activation", "sigmoid", "sigmoid, tanh or relu")

	addr    = flag.String("http", "", "serve progress on this address, e.g. :8080")
	gifFile = flag.String("gif", "", "write an animated GIF of the training")
	csvFile = flag.String("csv", "", "dump the epoch statistics as CSV")
	saveTo  = flag.String("save", "", "save the trained network")
	dotFile = flag.String("dot", "", "write the trained network as a Graphviz graph")
	serve   = flag.Bool("query", false, "answer queries on stdin after training")
)

// xor samples as 8 bit pixels; Binarize turns them into 0/1 inputs
var (
	pixels = [][]float64{{0, 0}, {0, 255}, {255, 0}, {255, 255}}
	labels = []int{0, 1, 1, 0}
)

var classes = []int{0, 1}

func config() (bpnet.Config, error) {
	conf := bpnet.DefaultConfig()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			return conf, errors.WithStack(err)
		}
		defer f.Close()
		if conf, err = bpnet.LoadConfig(f); err != nil {
			return conf, err
		}
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	override := func(name string) bool { return *configFile == "" || set[name] }

	var err error
	if override("epochs") {
		err = conf.SetEpochs(*epochs)
	}
	if err == nil && override("lr") {
		err = conf.SetLearningRate(*lr)
	}
	if override("target") {
		conf.SetTargetLoss(*target)
	}
	if err == nil && override("batch") && !*pattern {
		err = conf.SetBatchSize(*batch)
	}
	if err == nil && *pattern {
		err = conf.SetTrainingMode(bpnet.PatternMode)
	}
	if override("workers") {
		conf.Workers = *nworkers
	}
	if override("seed") {
		conf.Seed = *seed
	}
	if err != nil {
		return conf, err
	}
	return conf, conf.Validate()
}

func activation(name string) (fcn.Activation, error) {
	for a := fcn.Activation(0); a < fcn.MAXACTIVATION; a++ {
		if strings.EqualFold(a.String(), name) {
			return a, nil
		}
	}
	return fcn.MAXACTIVATION, errors.Wrapf(fcn.ErrActivation, "%q", name)
}

func dataset() (inputs, desired []*matrix.Dense, err error) {
	for _, p := range pixels {
		inputs = append(inputs, bpnet.Binarize(matrix.NewColumn(p...)))
	}
	desired, err = bpnet.OneHots(labels, classes)
	return
}

func writeFile(name string, write func(f *os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.WithStack(err)
	}
	if err = write(f); err != nil {
		f.Close()
		return err
	}
	return errors.WithStack(f.Close())
}

func run() error {
	conf, err := config()
	if err != nil {
		return err
	}
	a, err := activation(*act)
	if err != nil {
		return err
	}
	net, err := fcn.New(fcn.Layout{2, *hidden, len(classes)}, fcn.WithActivation(a))
	if err != nil {
		return err
	}
	inputs, desired, err := dataset()
	if err != nil {
		return err
	}

	b, err := bpnet.New(net, conf)
	if err != nil {
		return err
	}
	defer b.Close()

	var encs encoders
	if *addr != "" {
		ws := NewEncoder(64)
		mj := mjpeg.NewEncoder(480, 640)
		encs = append(encs, ws, mj)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/ws", ws)
			mux.Handle("/mjpeg", mj)
			mux.Handle("/debug/pprof/", http.DefaultServeMux)
			log.Printf("http://localhost%v/mjpeg", *addr)
			if err := http.ListenAndServe(*addr, mux); err != nil {
				log.Println(err)
			}
		}()
	}
	if *gifFile != "" {
		f, err := os.Create(*gifFile)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()
		g := gif.NewGifEncoder(480, 640)
		g.Writer = f
		encs = append(encs, g)
	}
	if len(encs) > 0 {
		b.SetEncoder(encs)
	}

	res, err := b.Train(inputs, desired)
	if err != nil {
		return err
	}
	log.Printf("%d epochs, %d updates, loss %v, target reached: %t", res.Epochs, res.Updates, res.Loss, res.Reached)

	ctx := fcn.NewContext(net.Layout())
	for i, in := range inputs {
		if err := net.Forward(in, ctx); err != nil {
			return err
		}
		got, err := bpnet.Label(ctx.Output(), classes)
		if err != nil {
			return err
		}
		fmt.Printf("%v XOR %v = %d (want %d)\n", pixels[i][0] > 128, pixels[i][1] > 128, got, labels[i])
	}
	acc, err := bpnet.Accuracy(net, inputs, desired, classes)
	if err != nil {
		return err
	}
	fmt.Printf("accuracy: %.2f%%\n", acc*100)

	if *csvFile != "" {
		if err := b.Statistics().Dump(*csvFile); err != nil {
			return err
		}
	}
	if *saveTo != "" {
		if err := writeFile(*saveTo, func(f *os.File) error { return fcn.Save(f, net) }); err != nil {
			return err
		}
	}
	if *dotFile != "" {
		dot, err := net.ToDot()
		if err != nil {
			return err
		}
		if err := writeFile(*dotFile, func(f *os.File) error {
			_, err := f.WriteString(dot)
			return errors.WithStack(err)
		}); err != nil {
			return err
		}
	}
	if *serve {
		return query.New(net, "xor", "0.1", nil).Serve(os.Stdin, os.Stdout)
	}
	return nil
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("%+v", err)
	}
}
