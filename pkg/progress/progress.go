// Package progress holds the floor progress arithmetic applied when an
// execution activity is recorded. It is free of I/O; callers own the
// transaction that reads the prior cumulative and persists the result.
package progress

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveArea   = errors.New("a área executada deve ser maior que zero")
	ErrExceedsFloorArea  = errors.New("a área executada não pode ser maior que a área do pavimento")
	ErrInvalidFloorArea  = errors.New("o pavimento não possui área válida")
	ErrNonPositiveShares = errors.New("é necessário ao menos um integrante")
)

var hundred = decimal.NewFromInt(100)

// Input of one execution.
type Input struct {
	ExecutedM2  decimal.Decimal // area executed by this activity
	FloorAreaM2 decimal.Decimal // pavimento.areaM2
	MortarM3    decimal.Decimal // pavimento.argamassaM3
	PriorSaldo  decimal.Decimal // cumulative of the latest activity on the floor, zero when none
}

// Result values written back to the floor and the new activity.
type Result struct {
	PercentualExecutado decimal.Decimal
	EspessuraCM         decimal.Decimal
	SaldoAcumuladoM2    decimal.Decimal
}

// Validate rejects executions that can never be recorded, independent of prior state.
func Validate(executedM2, floorAreaM2 decimal.Decimal) error {
	if !floorAreaM2.IsPositive() {
		return ErrInvalidFloorArea
	}
	if !executedM2.IsPositive() {
		return ErrNonPositiveArea
	}
	if executedM2.GreaterThan(floorAreaM2) {
		return ErrExceedsFloorArea
	}
	return nil
}

// Compute derives floor percent, mortar thickness and the running cumulative.
//
// percent   = executed / floorArea * 100 (overwrites, the last execution wins)
// espessura = mortar / executed * 100
// saldo     = prior + executed
func Compute(in Input) (Result, error) {
	if err := Validate(in.ExecutedM2, in.FloorAreaM2); err != nil {
		return Result{}, err
	}

	return Result{
		PercentualExecutado: in.ExecutedM2.Div(in.FloorAreaM2).Mul(hundred).Round(2),
		EspessuraCM:         in.MortarM3.Div(in.ExecutedM2).Mul(hundred).Round(2),
		SaldoAcumuladoM2:    CarryForward(in.PriorSaldo).Add(in.ExecutedM2),
	}, nil
}

// CarryForward is the cumulative recorded by activities that do not execute area.
func CarryForward(prior decimal.Decimal) decimal.Decimal {
	if prior.IsNegative() {
		return decimal.Zero
	}
	return prior
}

// ShareOf splits the executed area evenly among the workers of the activity.
func ShareOf(executedM2 decimal.Decimal, workers int) (decimal.Decimal, error) {
	if workers <= 0 {
		return decimal.Zero, ErrNonPositiveShares
	}
	return executedM2.Div(decimal.NewFromInt(int64(workers))).Round(4), nil
}
