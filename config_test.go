package bpnet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	assert := assert.New(t)
	c := DefaultConfig()
	assert.True(c.IsValid())
	assert.Equal(0.1, c.LearningRate)
	assert.Equal(10, c.Epochs)
	assert.Equal(0.5, c.TargetLoss)
	assert.Equal(BatchMode, c.Mode)
	assert.Equal(200, c.BatchSize)
	assert.Equal(10, c.HistorySize)
	assert.Equal(0.001, c.ShakeThreshold)
}

func TestConfigSetters(t *testing.T) {
	assert := assert.New(t)
	c := DefaultConfig()

	assert.Equal(ErrConfig, errors.Cause(c.SetEpochs(0)))
	assert.NoError(c.SetEpochs(3))
	assert.Equal(3, c.Epochs)

	assert.Equal(ErrConfig, errors.Cause(c.SetLearningRate(0)))
	assert.NoError(c.SetLearningRate(0.5))

	assert.Equal(ErrConfig, errors.Cause(c.SetBatchSize(0)))
	assert.NoError(c.SetBatchSize(32))
	assert.Equal(32, c.batchSize())

	assert.Equal(ErrConfig, errors.Cause(c.SetTrainingMode(MAXTRAININGMODE)))
	assert.NoError(c.SetTrainingMode(PatternMode))
	assert.Equal(1, c.BatchSize)
	assert.Equal(1, c.batchSize())
	assert.Equal(ErrConfig, errors.Cause(c.SetBatchSize(5)), "batch size is fixed in pattern mode")

	c.SetTargetLoss(0.01)
	assert.Equal(0.01, c.TargetLoss)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"learning rate", func(c *Config) { c.LearningRate = -1 }},
		{"epochs", func(c *Config) { c.Epochs = 0 }},
		{"mode", func(c *Config) { c.Mode = MAXTRAININGMODE }},
		{"batch size", func(c *Config) { c.BatchSize = 0 }},
		{"workers", func(c *Config) { c.Workers = -2 }},
		{"history", func(c *Config) { c.HistorySize = 1 }},
		{"threshold", func(c *Config) { c.ShakeThreshold = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(&c)
			assert.False(t, c.IsValid())
			assert.Equal(t, ErrConfig, errors.Cause(c.Validate()))
		})
	}
}

func TestConfigJSON(t *testing.T) {
	assert := assert.New(t)
	c := DefaultConfig()
	c.SetTrainingMode(PatternMode)
	c.Seed = 1337

	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		t.Fatal(err)
	}
	assert.Contains(buf.String(), `"mode": "pattern"`)

	c2, err := LoadConfig(&buf)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(c, c2)

	// missing fields keep their defaults
	c3, err := LoadConfig(strings.NewReader(`{"epochs": 50, "mode": "batch"}`))
	assert.NoError(err)
	assert.Equal(50, c3.Epochs)
	assert.Equal(200, c3.BatchSize)

	_, err = LoadConfig(strings.NewReader(`{"mode": "online"}`))
	assert.Error(err)
	_, err = LoadConfig(strings.NewReader(`{"epochs": 0}`))
	assert.Equal(ErrConfig, errors.Cause(err))
	_, err = LoadConfig(strings.NewReader(`{"momentum": 0.9}`))
	assert.Error(err)
}
