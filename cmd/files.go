package cmd

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/CraigKelly/chainmar/model"
)

// chainFormat is a format we can both read and write
type chainFormat interface {
	model.Reader
	model.Writer
}

// formatFor picks the chain format from a file name's extension
func formatFor(filename string) (chainFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".npy":
		return model.NPYFormat{}, nil
	case ".uai":
		return model.UAIFormat{}, nil
	}
	return nil, errors.Wrapf(model.ErrInvalidArgument, "Unknown model file type for %s (need .npy or .uai)", filename)
}

// loadChain reads the chain named by the model flag
func loadChain(sp *startupParams) (*model.Chain, error) {
	filename := sp.v.GetString("model")
	if filename == "" {
		return nil, errors.Wrap(model.ErrInvalidArgument, "A model file is required (--model)")
	}

	f, err := formatFor(filename)
	if err != nil {
		return nil, err
	}

	c, err := model.NewChainFromFile(f, filename)
	if err != nil {
		return nil, err
	}

	sp.log.Info("read model",
		zap.String("file", filename),
		zap.Int("vars", c.N),
		zap.Int("card", c.K),
	)
	return c, nil
}
