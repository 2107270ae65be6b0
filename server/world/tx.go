package world

// Tx represents a synchronised transaction performed on a World. Most
// operations that mutate a World's level record are performed through a Tx.
// A Tx is only valid inside the ExecFunc it was passed to.
type Tx struct {
	w      *World
	closed bool
}

// World returns the World of the Tx. It panics if the transaction was already
// marked complete.
func (tx *Tx) World() *World {
	if tx.closed {
		panic("world.Tx: use of transaction after transaction finishes is not permitted")
	}
	return tx.w
}

// Weather returns the observable weather of the World.
func (tx *Tx) Weather() Weather {
	return tx.World().Weather()
}

// SetWeather sets the weather of the World to w for the duration passed in
// ticks. Connected clients are notified if the observable weather changes.
func (tx *Tx) SetWeather(w Weather, duration int32) {
	tx.World().setWeather(w, duration, (*WeatherState).Set)
}

// ForceWeather makes w the observable weather of the World for the duration
// passed in ticks, even if clear weather is currently pinned. See
// WeatherState.Force.
func (tx *Tx) ForceWeather(w Weather, duration int32) {
	tx.World().setWeather(w, duration, (*WeatherState).Force)
}

// ClearWeather sets the weather to clear for a random duration.
func (tx *Tx) ClearWeather() {
	w := tx.World()
	w.setWeather(WeatherClear, weatherDuration(w.r, WeatherClear), (*WeatherState).Set)
}

// AdvanceWeather advances the weather of the World by a single tick,
// regardless of whether the weather cycle is enabled.
func (tx *Tx) AdvanceWeather() {
	tx.World().advanceWeather()
}

// SetWeatherCycle specifies if the weather of the World should advance by
// itself every tick.
func (tx *Tx) SetWeatherCycle(v bool) {
	w := tx.World()
	w.set.Lock()
	defer w.set.Unlock()
	w.set.WeatherCycle = v
}

// Save saves the level record of the World to its Provider, unless the World
// is read-only.
func (tx *Tx) Save() {
	tx.World().save()
}

// Tick advances the World by a single tick. It is mostly useful for worlds
// that do not tick by themselves.
func (tx *Tx) Tick() {
	ticker{}.tick(tx)
}

func (tx *Tx) close() {
	tx.closed = true
}
