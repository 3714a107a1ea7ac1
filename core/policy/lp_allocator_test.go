package policy

import (
	"errors"
	"testing"

	"github.com/kilianp07/rotables/core/model"
)

func hubBatch(stock model.Kits, pax ...model.Kits) []LoadInput {
	out := make([]LoadInput, len(pax))
	for i, p := range pax {
		in := baseInput()
		in.OriginIsHub = true
		in.OriginStock = stock
		in.Flight.Passengers = p
		out[i] = in
	}
	return out
}

func TestLPAllocatorSharesScarcePool(t *testing.T) {
	l := NewLPAllocator(NewAllocator(AllocationParams{}))
	inputs := hubBatch(model.Kits{First: 50}, model.Kits{First: 40}, model.Kits{First: 30})

	out, usedLP := l.DecideBatch(inputs)
	if !usedLP {
		t.Fatal("expected LP solution")
	}
	total := out[0].First + out[1].First
	if total != 50 {
		t.Fatalf("expected the whole pool of 50 to be used, got %d", total)
	}
	if out[0].First > 40 || out[1].First > 30 || out[0].First < 0 || out[1].First < 0 {
		t.Fatalf("allocation exceeds flight limits: %v", out)
	}
}

func TestLPAllocatorAmplePool(t *testing.T) {
	l := NewLPAllocator(NewAllocator(AllocationParams{}))
	inputs := hubBatch(model.Kits{Economy: 1_000}, model.Kits{Economy: 120}, model.Kits{Economy: 80})

	out, err := l.DecideBatchStrict(inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Economy != 120 || out[1].Economy != 80 {
		t.Fatalf("expected full demand, got %v", out)
	}
}

func TestLPAllocatorSolverFailureFallsBack(t *testing.T) {
	old := lpSolve
	lpSolve = func(_, _ []float64, _ float64) ([]float64, error) { return nil, errors.New("fail") }
	defer func() { lpSolve = old }()

	l := NewLPAllocator(NewAllocator(AllocationParams{}))
	inputs := hubBatch(model.Kits{First: 50}, model.Kits{First: 40}, model.Kits{First: 30})

	if _, err := l.DecideBatchStrict(inputs); err == nil {
		t.Fatal("expected strict error")
	}
	out, usedLP := l.DecideBatch(inputs)
	if usedLP {
		t.Fatal("expected sequential fallback")
	}
	if out[0].First != 40 || out[1].First != 10 {
		t.Fatalf("expected sequential 40/10 got %v", out)
	}
}

func TestLPAllocatorRejectsOverdraw(t *testing.T) {
	old := lpSolve
	lpSolve = func(_, upper []float64, _ float64) ([]float64, error) { return upper, nil }
	defer func() { lpSolve = old }()

	l := NewLPAllocator(NewAllocator(AllocationParams{}))
	inputs := hubBatch(model.Kits{First: 50}, model.Kits{First: 40}, model.Kits{First: 30})
	if _, err := l.DecideBatchStrict(inputs); !errors.Is(err, ErrPoolExceeded) {
		t.Fatalf("expected ErrPoolExceeded got %v", err)
	}
}

func TestLPAllocatorSingleFlightIsSequential(t *testing.T) {
	l := NewLPAllocator(NewAllocator(AllocationParams{}))
	out, usedLP := l.DecideBatch(hubBatch(model.Kits{Business: 10}, model.Kits{Business: 25}))
	if usedLP {
		t.Fatal("single flight should not use the solver")
	}
	if out[0].Business != 10 {
		t.Fatalf("expected 10 got %d", out[0].Business)
	}
}

func TestLPAllocatorSequentialSharesDestinationHeadroom(t *testing.T) {
	l := NewLPAllocator(NewAllocator(AllocationParams{}))
	inputs := hubBatch(model.Kits{First: 500}, model.Kits{First: 40}, model.Kits{First: 40})
	for i := range inputs {
		inputs[i].Flight.Destination = "DST"
		inputs[i].DestinationCapacity = model.Kits{First: 60}
	}
	out := l.DecideSequential(inputs)
	if out[0].First != 40 || out[1].First != 20 {
		t.Fatalf("expected 40/20 got %v", out)
	}
}
