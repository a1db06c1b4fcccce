package model

import (
	"testing"
	"time"

	"github.com/colonyops/taskcoach/internal/core/clock"
	"github.com/colonyops/taskcoach/internal/core/eventbus/testbus"
)

var testNow = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

type fixture struct {
	reg   *Registry
	bus   *testbus.Bus
	clock *clock.Fake
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	bus := testbus.New(t)
	clk := clock.NewFake(testNow)
	return fixture{
		reg:   NewRegistry(bus.Bus, clk, DefaultSettings()),
		bus:   bus,
		clock: clk,
	}
}

func hours(n int) time.Duration { return time.Duration(n) * time.Hour }

func days(n int) time.Time { return testNow.AddDate(0, 0, n) }
