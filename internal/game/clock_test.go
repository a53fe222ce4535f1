package game

import (
	"math"
	"testing"
	"time"
)

func TestClockAdvancesTimeOfDay(t *testing.T) {
	t.Parallel()

	w := WorldState{GameTime: 0.2, Weather: WeatherSunny}
	c := NewClock(newSeq(0.1), nil)

	for i := 0; i < timeStep-1; i++ {
		c.Tick(&w)
	}
	if w.GameTime != 0.2 {
		t.Fatalf("gameTime moved before a full step: %f", w.GameTime)
	}
	c.Tick(&w)
	if want := 0.2 + float64(timeStep)/DayTicks; math.Abs(w.GameTime-want) > 1e-12 {
		t.Fatalf("gameTime = %f, want %f", w.GameTime, want)
	}
}

func TestClockWrapsDay(t *testing.T) {
	t.Parallel()

	w := WorldState{GameTime: 0.999, Weather: WeatherSunny}
	c := NewClock(newSeq(0.1), nil)
	for i := 0; i < timeStep; i++ {
		c.Tick(&w)
	}
	if w.GameTime != 0 {
		t.Fatalf("gameTime = %f, want wrap to 0", w.GameTime)
	}
}

func TestClockFullDayReturnsToStart(t *testing.T) {
	t.Parallel()

	w := WorldState{GameTime: 0, Weather: WeatherSunny}
	c := NewClock(newSeq(0.1), nil)
	for i := 0; i < DayTicks; i++ {
		c.Tick(&w)
		if w.GameTime < 0 || w.GameTime >= 1 {
			t.Fatalf("tick %d: gameTime %f out of range", i, w.GameTime)
		}
	}
	if w.GameTime > 1e-9 && w.GameTime < 1-1e-9 {
		t.Fatalf("gameTime after one day = %f, want about 0", w.GameTime)
	}
}

func TestClockRollsWeather(t *testing.T) {
	t.Parallel()

	w := WorldState{GameTime: 0.2, Weather: WeatherSunny}
	rec := &recorder{}
	c := NewClock(newSeq(0.95), rec)

	for i := 0; i < WeatherTicks-1; i++ {
		c.Tick(&w)
	}
	if w.Weather != WeatherSunny || rec.count(EventWeather) != 0 {
		t.Fatal("weather changed early")
	}
	c.Tick(&w)
	if w.Weather != WeatherStorm {
		t.Fatalf("weather = %s, want Storm", w.Weather)
	}
	if rec.count(EventWeather) != 1 {
		t.Fatalf("weather events = %d, want 1", rec.count(EventWeather))
	}
	if c.Ticks() != WeatherTicks {
		t.Fatalf("ticks = %d", c.Ticks())
	}
}

func TestClockCreditsIncome(t *testing.T) {
	t.Parallel()

	w := WorldState{GameTime: 0.2, Weather: WeatherSunny, Aquarium: []CaughtFish{newCatch("a", "carp", 100)}}
	rec := &recorder{}
	c := NewClock(newSeq(0.1), rec)

	for i := int64(0); i < IncomeTicks; i++ {
		c.Tick(&w)
	}
	if w.Money != 5 || w.Stats.TotalMoneyEarned != 5 {
		t.Fatalf("money=%d earned=%d, want 5/5", w.Money, w.Stats.TotalMoneyEarned)
	}
	for i := int64(0); i < IncomeTicks; i++ {
		c.Tick(&w)
	}
	if w.Money != 10 || rec.count(EventIncome) != 2 {
		t.Fatalf("money=%d income events=%d, want 10/2", w.Money, rec.count(EventIncome))
	}
}

func TestClockIncomeFollowsPeriod(t *testing.T) {
	t.Parallel()

	w := WorldState{GameTime: 0.2, Weather: WeatherSunny, Aquarium: []CaughtFish{newCatch("a", "carp", 100)}}
	c := NewClock(newSeq(0.1), nil)
	c.SetPeriod(100 * time.Millisecond)

	for i := 0; i < 99; i++ {
		c.Tick(&w)
	}
	if w.Money != 0 {
		t.Fatalf("money = %d before 10s of ticks", w.Money)
	}
	c.Tick(&w)
	if w.Money != 5 {
		t.Fatalf("money = %d after 10s of ticks, want 5", w.Money)
	}
}

func TestIncomeTicksFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period time.Duration
		want   int64
	}{
		{TickInterval, IncomeTicks},
		{100 * time.Millisecond, 100},
		{time.Second, 10},
		{time.Hour, 1},
		{0, IncomeTicks},
	}
	for _, tt := range tests {
		if got := IncomeTicksFor(tt.period); got != tt.want {
			t.Errorf("IncomeTicksFor(%v) = %d, want %d", tt.period, got, tt.want)
		}
	}
}

func TestClockEmptyAquariumIsSilent(t *testing.T) {
	t.Parallel()

	w := WorldState{GameTime: 0.2, Weather: WeatherSunny}
	rec := &recorder{}
	c := NewClock(newSeq(0.1), rec)
	for i := int64(0); i < IncomeTicks; i++ {
		c.Tick(&w)
	}
	if w.Money != 0 || rec.count(EventIncome) != 0 {
		t.Fatalf("money=%d income events=%d", w.Money, rec.count(EventIncome))
	}
}

func TestRollWeather(t *testing.T) {
	t.Parallel()

	tests := []struct {
		roll float64
		want Weather
	}{
		{0.0, WeatherSunny},
		{0.7, WeatherSunny},
		{0.71, WeatherRain},
		{0.9, WeatherRain},
		{0.91, WeatherStorm},
	}
	for _, tt := range tests {
		if got := RollWeather(newSeq(tt.roll)); got != tt.want {
			t.Errorf("RollWeather(%.2f) = %s, want %s", tt.roll, got, tt.want)
		}
	}
}

func TestOfflineCredit(t *testing.T) {
	t.Parallel()

	w := WorldState{
		Aquarium:     []CaughtFish{newCatch("a", "carp", 100)},
		LastSaveTime: testNow.Add(-2 * time.Hour).UnixMilli(),
		Money:        100,
	}
	if got := OfflineCredit(&w, testNow); got != 3600 {
		t.Fatalf("credited %d, want 3600", got)
	}
	if w.Money != 3700 || w.Stats.TotalMoneyEarned != 3600 {
		t.Fatalf("money=%d earned=%d", w.Money, w.Stats.TotalMoneyEarned)
	}
}
