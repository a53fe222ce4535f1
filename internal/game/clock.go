package game

import "time"

// Environmental cadence, in scheduler ticks.
const (
	DayTicks     = 2400 // One in-game day: 2 minutes at TickInterval
	timeStep     = 5    // gameTime advances in steps of this many ticks
	WeatherTicks = 3600 // Weather is re-rolled every 3 minutes
	IncomeTicks  = int64(IncomeTick / TickInterval) // At TickInterval

	rainAbove  = 0.7
	stormAbove = 0.9
)

// Clock advances the time of day, the weather and the aquarium income. It
// shares the scheduler with the Machine but is independent of it.
//
// Day length and weather follow the scheduler, so a faster tick makes game
// time run faster. Income is wall-clock money and stays at one credit per
// IncomeTick whatever the period, matching what offline credit assumes.
type Clock struct {
	ticks       int64
	incomeEvery int64
	rng         RandomSource
	emit        Emitter
}

func NewClock(rng RandomSource, emit Emitter) *Clock {
	if emit == nil {
		emit = Discard
	}
	return &Clock{rng: rng, emit: emit, incomeEvery: IncomeTicks}
}

// SetPeriod tells the clock how long one scheduler tick lasts.
func (c *Clock) SetPeriod(period time.Duration) {
	c.incomeEvery = IncomeTicksFor(period)
}

// IncomeTicksFor is the number of ticks of the given period in one
// IncomeTick, at least 1.
func IncomeTicksFor(period time.Duration) int64 {
	if period <= 0 {
		return IncomeTicks
	}
	return max(1, int64(IncomeTick/period))
}

// Ticks is the number of periods seen so far.
func (c *Clock) Ticks() int64 { return c.ticks }

// Tick advances one scheduler period.
func (c *Clock) Tick(w *WorldState) {
	c.ticks++

	if c.ticks%timeStep == 0 {
		w.GameTime += float64(timeStep) / DayTicks
		if w.GameTime >= 1 {
			w.GameTime = 0
		}
	}

	if c.ticks%WeatherTicks == 0 {
		w.Weather = RollWeather(c.rng)
		c.emit.Emit(Event{Kind: EventWeather, Weather: w.Weather})
	}

	if c.ticks%c.incomeEvery == 0 {
		if amount := CreditIncome(w); amount > 0 {
			c.emit.Emit(Event{Kind: EventIncome, Amount: amount})
		}
	}
}

// RollWeather draws the next weather: 10% storm, 20% rain, otherwise sunny.
func RollWeather(rng RandomSource) Weather {
	roll := rng.Float64()
	switch {
	case roll > stormAbove:
		return WeatherStorm
	case roll > rainAbove:
		return WeatherRain
	}
	return WeatherSunny
}

// CreditIncome adds one income tick of aquarium earnings to the player.
func CreditIncome(w *WorldState) int64 {
	amount := AquariumIncome(w.Aquarium)
	w.Money += amount
	w.Stats.TotalMoneyEarned += amount
	return amount
}

// OfflineCredit credits the earnings owed since the last save.
func OfflineCredit(w *WorldState, now time.Time) int64 {
	amount := OfflineEarnings(fromMillis(w.LastSaveTime), now, w.Aquarium, w.Level(UpgradeOffline))
	w.Money += amount
	w.Stats.TotalMoneyEarned += amount
	return amount
}
