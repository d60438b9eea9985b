package bpnet

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// TrainingMode selects how many samples contribute to each weight update.
type TrainingMode byte

const (
	// BatchMode averages the gradients of BatchSize samples per update.
	BatchMode TrainingMode = iota
	// PatternMode updates the weights after every sample.
	PatternMode
	MAXTRAININGMODE
)

var modeNames = [...]string{"batch", "pattern"}

func (m TrainingMode) IsValid() bool { return m < MAXTRAININGMODE }

func (m TrainingMode) String() string {
	if !m.IsValid() {
		return "unknown"
	}
	return modeNames[m]
}

func (m TrainingMode) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, errors.Wrapf(ErrConfig, "unsupported training mode %d", byte(m))
	}
	return []byte(m.String()), nil
}

func (m *TrainingMode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range modeNames {
		if s == name {
			*m = TrainingMode(i)
			return nil
		}
	}
	return errors.Wrapf(ErrConfig, "unsupported training mode %q", s)
}

// Config holds the training hyperparameters.
type Config struct {
	LearningRate float64      `json:"learning_rate"`
	Epochs       int          `json:"epochs"`
	TargetLoss   float64      `json:"target_loss"`
	Mode         TrainingMode `json:"mode"`
	BatchSize    int          `json:"batch_size"`

	Workers        int     `json:"workers"`         // 0 means runtime.NumCPU(); a change takes effect at the next Train
	HistorySize    int     `json:"history_size"`    // epoch losses kept for the rolling standard deviation
	ShakeThreshold float64 `json:"shake_threshold"` // perturb the weights when 0 < stddev < ShakeThreshold
	Seed           int64   `json:"seed"`            // 0 seeds the shuffle from the OS entropy source
}

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return Config{
		LearningRate:   0.1,
		Epochs:         10,
		TargetLoss:     0.5,
		Mode:           BatchMode,
		BatchSize:      200,
		HistorySize:    10,
		ShakeThreshold: 0.001,
	}
}

// IsValid reports whether the config can be used for training.
func (c Config) IsValid() bool { return c.Validate() == nil }

// Validate returns the first problem found in c.
func (c Config) Validate() error {
	switch {
	case !(c.LearningRate > 0):
		return errors.Wrapf(ErrConfig, "learning rate must be positive, got %v", c.LearningRate)
	case c.Epochs < 1:
		return errors.Wrapf(ErrConfig, "epochs must be positive, got %d", c.Epochs)
	case !c.Mode.IsValid():
		return errors.Wrapf(ErrConfig, "unsupported training mode %d", byte(c.Mode))
	case c.Mode == BatchMode && c.BatchSize < 1:
		return errors.Wrapf(ErrConfig, "batch size must be positive, got %d", c.BatchSize)
	case c.Workers < 0:
		return errors.Wrapf(ErrConfig, "negative worker count %d", c.Workers)
	case c.HistorySize < 2:
		return errors.Wrapf(ErrConfig, "loss history needs at least 2 entries, got %d", c.HistorySize)
	case c.ShakeThreshold < 0:
		return errors.Wrapf(ErrConfig, "negative shake threshold %v", c.ShakeThreshold)
	}
	return nil
}

// SetLearningRate sets the step size. It must be positive.
func (c *Config) SetLearningRate(lr float64) error {
	if !(lr > 0) {
		return errors.Wrapf(ErrConfig, "learning rate must be positive, got %v", lr)
	}
	c.LearningRate = lr
	return nil
}

func (c *Config) SetEpochs(n int) error {
	if n < 1 {
		return errors.Wrapf(ErrConfig, "epochs must be positive, got %d", n)
	}
	c.Epochs = n
	return nil
}

func (c *Config) SetTargetLoss(loss float64) { c.TargetLoss = loss }

// SetTrainingMode switches the mode. PatternMode forces a batch size of 1.
func (c *Config) SetTrainingMode(m TrainingMode) error {
	if !m.IsValid() {
		return errors.Wrapf(ErrConfig, "unsupported training mode %d", byte(m))
	}
	c.Mode = m
	if m == PatternMode {
		c.BatchSize = 1
	}
	return nil
}

// SetBatchSize sets the number of samples per update. The batch size cannot
// be changed in PatternMode.
func (c *Config) SetBatchSize(n int) error {
	if c.Mode == PatternMode {
		return errors.Wrap(ErrConfig, "batch size is fixed to 1 in pattern mode")
	}
	if n < 1 {
		return errors.Wrapf(ErrConfig, "batch size must be positive, got %d", n)
	}
	c.BatchSize = n
	return nil
}

func (c Config) batchSize() int {
	if c.Mode == PatternMode {
		return 1
	}
	return c.BatchSize
}

// LoadConfig reads a JSON config. Fields missing from the document keep their default values.
func LoadConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return c, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes c as indented JSON.
func (c Config) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return errors.WithStack(enc.Encode(c))
}
