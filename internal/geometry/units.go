package geometry

import "fmt"

// unitToFeet 单位换算表（以英尺为基准单位）
// Linear units and area units live in the same table; conversion always goes
// through the canonical base: value_in_feet = value * table[from], then
// result = value_in_feet / table[to].
var unitToFeet = map[string]float64{
	"ft":    1,
	"in":    1.0 / 12.0,
	"m":     3.28084,
	"cm":    0.0328084,
	"sq_ft": 1,
	"sq_m":  10.7639,
}

// KnownUnit reports whether unit appears in the conversion table.
func KnownUnit(unit string) bool {
	_, ok := unitToFeet[unit]
	return ok
}

// ConvertUnits converts value between two units through the feet-canonical
// table. Unknown units are an error, never a silent pass-through.
func ConvertUnits(value float64, fromUnit, toUnit string) (float64, error) {
	from, ok := unitToFeet[fromUnit]
	if !ok {
		return 0, fmt.Errorf("convert units: unknown unit %q", fromUnit)
	}
	to, ok := unitToFeet[toUnit]
	if !ok {
		return 0, fmt.Errorf("convert units: unknown unit %q", toUnit)
	}
	return value * from / to, nil
}
