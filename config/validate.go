package config

import "fmt"

// ValidateConfig rejects policy values that would make the engines misbehave
// at runtime. It is the only place configuration bounds are checked; the
// engines assume validated inputs.
func ValidateConfig(g Global) error {
	pools := map[string]Pool{
		"FastBurn": g.Pools.FastBurn,
		"MidTerm":  g.Pools.MidTerm,
		"LongTerm": g.Pools.LongTerm,
	}
	for name, pool := range pools {
		if err := poolConfig(pool).Validate(); err != nil {
			return fmt.Errorf("pools.%s: %w", name, err)
		}
	}
	ratesCfg, err := g.RatesConfig()
	if err != nil {
		return err
	}
	if err := ratesCfg.Validate(); err != nil {
		return fmt.Errorf("rates: %w", err)
	}
	return nil
}
