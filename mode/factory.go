package mode

import "strconv"

// New constructs the tournament format registered under the given name.
// Unrecognized names are a ConfigError, so a mistyped chat argument comes
// back as a rejected command.
func New(format string, deps Deps, args map[string]string) (GameMode, error) {
	switch format {
	case FormatBestOf, "bestof":
		return NewBestOf(deps, args)
	case FormatRaceTo, "raceto":
		return NewRaceTo(deps, args)
	case FormatRandom:
		return NewRandom(deps, args)
	default:
		return nil, configErrorf("unknown tournament format %q", format)
	}
}

func parseIntArg(args map[string]string, name string, def int) (int, error) {
	raw, ok := args[name]
	if !ok || raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, configErrorf("argument %q must be an integer, got %q", name, raw)
	}
	return value, nil
}
