package controller

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/errs"
)

// CalcAPI is the backend sum endpoint.
type CalcAPI interface {
	CalcSum(ctx context.Context, a, b string) (string, error)
}

// Calc validates calculator input before asking the backend.
type Calc struct {
	api CalcAPI
	log *zap.Logger
}

// NewCalc returns a Calc backed by api. A nil log discards output.
func NewCalc(api CalcAPI, log *zap.Logger) *Calc {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calc{api: api, log: log}
}

// Sum returns a+b as the backend formats it. Operands are trimmed and must
// parse as finite numbers; otherwise Sum fails with errs.ErrValidation and no
// request is made. The operand text itself is what gets sent.
func (c *Calc) Sum(ctx context.Context, a, b string) (string, error) {
	x, err := parseOperand("a", a)
	if err != nil {
		return "", err
	}
	y, err := parseOperand("b", b)
	if err != nil {
		return "", err
	}
	res, err := c.api.CalcSum(ctx, x, y)
	if err != nil {
		c.log.Error("calc sum", zap.String("a", x), zap.String("b", y), zap.Error(err))
		return "", err
	}
	return res, nil
}

func parseOperand(name, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", errs.ErrValidation, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w: %s is not a number", errs.ErrValidation, name)
	}
	return s, nil
}
