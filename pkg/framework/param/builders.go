package param

// Choice creates a parameter builder for a list parameter whose plain value
// is the option index.
func Choice(id string, name string, options ...string) *Builder {
	b := New(id, name).
		Range(0, float64(len(options)-1)).
		Steps(int32(len(options) - 1)).
		Default(0).
		Formatter(nil, ChoiceParser(options))

	b.param.Kind = KindChoice
	b.param.Flags |= IsList
	b.param.Options = append([]string(nil), options...)
	return b
}

// Int creates an integer parameter over [min, max].
func Int(id string, name string, min, max, defaultVal int) *Builder {
	return New(id, name).
		Integer(min, max).
		Default(float64(defaultVal))
}

// TimeParameter creates a millisecond parameter
func TimeParameter(id string, name string, minMs, maxMs, defaultMs float64) *Builder {
	return New(id, name).
		Range(minMs, maxMs).
		Default(defaultMs).
		Unit("ms").
		Formatter(TimeFormatter, TimeParser)
}

// PercentParameter creates a 0-100% parameter
func PercentParameter(id string, name string, defaultVal float64) *Builder {
	return New(id, name).
		Range(0, 100).
		Default(defaultVal).
		Unit("%").
		Formatter(PercentFormatter, PercentParser)
}

// DecibelParameter creates a dB parameter
func DecibelParameter(id string, name string, minDb, maxDb, defaultDb float64) *Builder {
	return New(id, name).
		Range(minDb, maxDb).
		Default(defaultDb).
		Unit("dB").
		Formatter(DecibelFormatter, DecibelParser)
}
