// Command inspect prints the level record of a world folder. The database is
// opened read-only.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/dm-vev/ember/server/world/mcdb"
)

func main() {
	dir := flag.String("world", "world", "path to the world folder")
	flag.Parse()

	if err := run(*dir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dir string) error {
	db, err := mcdb.Config{LDBOptions: &opt.Options{ReadOnly: true}}.Open(dir)
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.LoadSettings()
	if err != nil {
		return err
	}
	w := s.Weather
	fmt.Printf("name:          %s\n", s.Name)
	fmt.Printf("time:          %d (cycle %v)\n", s.Time, s.TimeCycle)
	fmt.Printf("current tick:  %d\n", s.CurrentTick)
	fmt.Printf("weather:       %s (cycle %v)\n", w.Weather(), s.WeatherCycle)
	fmt.Printf("  raining:     %v, %d ticks\n", w.Raining, w.RainTime)
	fmt.Printf("  thundering:  %v, %d ticks\n", w.Thundering, w.ThunderTime)
	fmt.Printf("  clear for:   %d ticks\n", w.ClearWeatherTime)
	return nil
}
